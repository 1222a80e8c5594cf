// Package auth logs users in and out of a cookie session.
package auth

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
