package store

import "errors"

var (
	// ErrNoCredentials is returned when an operation needs signing but the
	// store configuration carries no access/secret key pair.
	ErrNoCredentials = errors.New("store: no signing credentials configured")
)
