package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
)

func aliceWithPassword(t *testing.T, password string) user.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return user.User{ID: 1, Username: "alice", PasswordHash: hash}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		users := NewMockUserFinder(gomock.NewController(t))
		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(aliceWithPassword(t, "pw1"), nil)

		id, err := NewService(users).Login(ctx, " alice ", "pw1")
		require.NoError(t, err)
		assert.Equal(t, session.Identity{UserID: 1, Username: "alice"}, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := NewMockUserFinder(gomock.NewController(t))
		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(aliceWithPassword(t, "pw1"), nil)

		id, err := NewService(users).Login(ctx, "alice", "pw2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.False(t, id.Authenticated())
	})

	t.Run("unknown user", func(t *testing.T) {
		users := NewMockUserFinder(gomock.NewController(t))
		users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(user.User{}, user.ErrNotFound)

		_, err := NewService(users).Login(ctx, "ghost", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is not a credential error", func(t *testing.T) {
		users := NewMockUserFinder(gomock.NewController(t))
		users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user.User{}, errors.New("db down"))

		_, err := NewService(users).Login(ctx, "alice", "pw1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
