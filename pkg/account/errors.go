package account

import "errors"

var (
	ErrDuplicateIdentity  = errors.New("account: username already taken")
	ErrNotFound           = errors.New("account: user not found")
	ErrInvalidCredentials = errors.New("account: invalid username or password")
	ErrInvalidInput       = errors.New("account: invalid input")
	ErrFailedToHash       = errors.New("account: failed to hash password")
	ErrFailedToLoad       = errors.New("account: failed to load users")
	ErrFailedToSave       = errors.New("account: failed to save users")
)
