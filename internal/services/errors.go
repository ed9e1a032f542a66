package services

import "errors"

// ErrBadInput is returned for payloads a service refuses to process, such
// as non-image uploads or files over the size ceiling.
var ErrBadInput = errors.New("bad input")

// ErrForbidden is returned when an authenticated caller does not own the
// resource it is acting on.
var ErrForbidden = errors.New("forbidden")
