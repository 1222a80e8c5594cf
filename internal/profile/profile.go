package profile

import (
	"io"
	"path"
	"slices"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

// Profile is the public view of a user and their whole collection.
type Profile struct {
	User    user.User   `json:"user"`
	Books   []book.Book `json:"books"`
	IsOwner bool        `json:"-"`
}

// Upload is an avatar image as received from the client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// EditCommand is a profile edit. An empty Bio keeps the stored bio; a nil
// Avatar keeps the stored avatar.
type EditCommand struct {
	Bio    string
	Avatar *Upload
}

type UploadPolicy struct {
	MaxBytes    int64
	AllowedExts []string
}

// Extension returns the lower-cased extension of filename if the policy
// allows it.
func (p UploadPolicy) Extension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "", false
	}
	return ext, slices.Contains(p.AllowedExts, ext)
}

// sniffedTypes maps detected content types to the extensions they may carry.
var sniffedTypes = map[string][]string{
	"image/png":  {"png"},
	"image/jpeg": {"jpg", "jpeg"},
	"image/gif":  {"gif"},
}
