package transport

import "errors"

var (
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport: closed")

	// ErrInvalidRank is returned for peers outside the group.
	ErrInvalidRank = errors.New("transport: rank out of range")
)
