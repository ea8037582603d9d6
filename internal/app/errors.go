package service

import "errors"

// ErrNoStore is returned when the service is used without a backing store.
var ErrNoStore = errors.New("service has no store")
