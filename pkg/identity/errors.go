package identity

import "errors"

var (
	ErrGuestSignIn     = errors.New("identity: cannot sign in as guest")
	ErrFailedToSignIn  = errors.New("identity: failed to store session")
	ErrFailedToSignOut = errors.New("identity: failed to clear session")
	ErrFailedToResolve = errors.New("identity: failed to read session")
)
