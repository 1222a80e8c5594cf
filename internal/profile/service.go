package profile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"bookshelf/internal/platform/blobstore"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/session"
	"bookshelf/internal/user"
)

type Service struct {
	users  UserStore
	books  BookLister
	blobs  blobstore.Store
	policy UploadPolicy
	logger logrus.FieldLogger
}

func NewService(users UserStore, books BookLister, blobs blobstore.Store, policy UploadPolicy, logger logrus.FieldLogger) *Service {
	return &Service{users: users, books: books, blobs: blobs, policy: policy, logger: logger}
}

// GetProfile is public: anyone may see any user's profile and books.
func (s *Service) GetProfile(ctx context.Context, viewer session.Identity, username string) (Profile, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	books, err := s.books.ListByOwner(ctx, u.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Books: books, IsOwner: viewer.Authenticated() && viewer.UserID == u.ID}, nil
}

// Current returns the caller's own user record for the edit form.
func (s *Service) Current(ctx context.Context, id session.Identity) (user.User, error) {
	if err := id.Require(); err != nil {
		return user.User{}, err
	}
	return s.users.GetByID(ctx, id.UserID)
}

// EditProfile applies cmd to the caller's profile. An avatar that fails the
// upload policy is dropped and the previous avatar kept; that is not an error.
func (s *Service) EditProfile(ctx context.Context, id session.Identity, cmd EditCommand) (user.User, error) {
	if err := id.Require(); err != nil {
		return user.User{}, err
	}

	var upd user.ProfileUpdate
	if bio := strings.TrimSpace(cmd.Bio); bio != "" {
		upd.Bio = &bio
	}
	if cmd.Avatar != nil {
		key, err := s.storeAvatar(ctx, id.UserID, *cmd.Avatar)
		if err != nil {
			return user.User{}, err
		}
		if key != "" {
			upd.AvatarRef = &key
		}
	}
	return s.users.UpdateProfile(ctx, id.UserID, upd)
}

// storeAvatar returns the blob key, or "" when the upload was rejected.
func (s *Service) storeAvatar(ctx context.Context, userID int64, up Upload) (string, error) {
	reject := func(reason string) (string, error) {
		metrics.AvatarUploads.WithLabelValues("rejected").Inc()
		s.logger.WithFields(logrus.Fields{"user_id": userID, "filename": up.Filename, "reason": reason}).
			Info("avatar upload ignored")
		return "", nil
	}

	ext, ok := s.policy.Extension(up.Filename)
	if !ok {
		return reject("extension")
	}
	if up.Size > s.policy.MaxBytes {
		return reject("size")
	}

	content, err := io.ReadAll(io.LimitReader(up.Content, s.policy.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(content) == 0 {
		return reject("empty")
	}
	if int64(len(content)) > s.policy.MaxBytes {
		return reject("size")
	}
	contentType := http.DetectContentType(content)
	if !slices.Contains(sniffedTypes[contentType], ext) {
		return reject("content")
	}

	sum := sha256.Sum256(content)
	key := fmt.Sprintf("%d/%s.%s", userID, hex.EncodeToString(sum[:])[:32], ext)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	metrics.AvatarUploads.WithLabelValues("stored").Inc()
	return key, nil
}

// OpenAvatar streams a stored avatar. The default avatar is never stored.
func (s *Service) OpenAvatar(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" || key == user.DefaultAvatarRef {
		return nil, blobstore.ErrNotFound
	}
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}
	return s.blobs.Open(ctx, key)
}
