package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCollectorNotFound = errors.New("collector not found")
	ErrEmailExists       = errors.New("email already registered")
	ErrNegativeBalance   = errors.New("operation would drive points negative")
)
