package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrTransport = errors.New("store transport failed")
	ErrStatus    = errors.New("unexpected store status")
	ErrDecode    = errors.New("malformed store payload")
)
