package blobstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMinIOError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound, Key: "1/abc.png"}
	assert.ErrorIs(t, mapMinIOError(missing), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	err := mapMinIOError(denied)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, denied, err)

	other := errors.New("connection refused")
	assert.Equal(t, other, mapMinIOError(other))
}

func TestMinIO_RejectsInvalidKeysLocally(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	store := &MinIO{client: client, bucket: "avatars"}
	ctx := context.Background()

	for _, key := range []string{"", "../x.png", "/abs.png", "1/../../x.png"} {
		err := store.Put(ctx, key, strings.NewReader("x"), 1, "image/png")
		assert.ErrorIs(t, err, ErrInvalidKey, key)

		rc, err := store.Open(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.Nil(t, rc)
	}
	assert.Zero(t, calls.Load())
}
