package session

import (
	"context"
	"errors"
	"strconv"
)

var ErrAuthRequired = errors.New("authentication required")

// Identity is who the current request acts as. The zero value is anonymous.
type Identity struct {
	UserID   int64
	Username string
}

func (i Identity) Authenticated() bool {
	return i.UserID > 0
}

// Require fails with ErrAuthRequired for anonymous callers.
func (i Identity) Require() error {
	if !i.Authenticated() {
		return ErrAuthRequired
	}
	return nil
}

// Label identifies the caller in logs.
func (i Identity) Label() string {
	if !i.Authenticated() {
		return "anonymous"
	}
	return strconv.FormatInt(i.UserID, 10)
}

// Resource is anything owned by a single user.
type Resource interface {
	Owner() int64
}

// Owns reports whether id is the owner of res. Anonymous identities own nothing.
func Owns(id Identity, res Resource) bool {
	return id.Authenticated() && res.Owner() == id.UserID
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}
