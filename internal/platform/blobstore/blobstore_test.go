package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"1/abc.png", "avatar.gif", "7/deadbeef.jpeg"}
	for _, key := range valid {
		assert.NoError(t, ValidateKey(key), key)
	}

	invalid := []string{"", "/etc/passwd", "../x.png", "1/../../x.png", "a//b.png", "a\\b.png", "./a.png"}
	for _, key := range invalid {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}

func TestFS_PutOpen(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "png-bytes"
	require.NoError(t, store.Put(ctx, "1/abc.png", strings.NewReader(content), int64(len(content)), "image/png"))

	rc, err := store.Open(ctx, "1/abc.png")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestFS_Overwrite(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.png", strings.NewReader("one"), 3, "image/png"))
	require.NoError(t, store.Put(ctx, "a.png", strings.NewReader("two"), 3, "image/png"))

	rc, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(got))
}

func TestFS_OpenMissing(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "nope.png")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFS_RejectsTraversal(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
