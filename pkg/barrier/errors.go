package barrier

import "errors"

var (
	// ErrNotInitialized is raised when Wait is called on a barrier that was
	// not built by its constructor.
	ErrNotInitialized = errors.New("barrier: used before initialization")

	// ErrClosed is raised when Wait or Close is called after Close.
	ErrClosed = errors.New("barrier: used after close")

	// ErrInvalidParticipants is returned for a participant count below one.
	ErrInvalidParticipants = errors.New("barrier: participant count must be greater than zero")

	// ErrNotPowerOfTwo is returned by the butterfly barrier for group sizes
	// that would leave partners out of range.
	ErrNotPowerOfTwo = errors.New("barrier: group size must be a power of two")

	// ErrInsufficientThreadLevel is returned when the transport cannot
	// support funneled calls from a multi-threaded process.
	ErrInsufficientThreadLevel = errors.New("barrier: transport thread support is below funneled")

	// ErrUnknownKind is returned when a barrier kind cannot be resolved.
	ErrUnknownKind = errors.New("barrier: unknown barrier kind")
)
