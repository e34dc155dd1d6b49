package api

import "errors"

var (
	errUnauthenticated = errors.New("missing authenticated user")
	errInvalidID       = errors.New("invalid id parameter")
)
