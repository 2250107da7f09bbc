package sheets

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already registered")
	ErrNotReady     = errors.New("sheets service not initialized")
)
