package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/platform/crypto"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and applies defaults", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			u.ID = 1
			return nil
		})

		got, err := svc.Register(ctx, "  alice ", "pw1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, DefaultBio, got.Bio)
		assert.Equal(t, DefaultAvatarRef, got.AvatarRef)
		assert.NotEqual(t, "pw1", got.PasswordHash)
		assert.True(t, crypto.VerifyPassword(got.PasswordHash, "pw1"))
	})

	t.Run("existing username", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{ID: 1, Username: "alice"}, nil)

		_, err := svc.Register(ctx, "alice", "pw1")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("unique constraint wins the race", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrAlreadyExists)

		_, err := svc.Register(ctx, "alice", "pw1")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("lookup failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)
		boom := errors.New("db down")

		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(User{}, boom)

		_, err := svc.Register(ctx, "alice", "pw1")
		assert.ErrorIs(t, err, boom)
	})
}

func TestUser_HasAvatar(t *testing.T) {
	assert.False(t, User{AvatarRef: DefaultAvatarRef}.HasAvatar())
	assert.False(t, User{}.HasAvatar())
	assert.True(t, User{AvatarRef: "1/abc.png"}.HasAvatar())
}
