package auth

import "errors"

var (
	// ErrUnauthenticated means the request carried no valid session.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrNoCredential means no usable provider access token exists for the
	// user, either because none was linked or because a refresh failed.
	ErrNoCredential = errors.New("no access token")
	// ErrStoreUnavailable wraps credential store failures other than not-found.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
