package memory

import "errors"

var (
	// ErrStorageUnavailable is returned when the backing store cannot be
	// created or opened. It is fatal to the calling session.
	ErrStorageUnavailable = errors.New("memory storage unavailable")

	// ErrStorageWrite is returned when a single append fails. Callers log it
	// and carry on without remembering that turn.
	ErrStorageWrite = errors.New("memory storage write failed")

	// ErrInvalidArgument is returned for arguments outside the accepted range,
	// such as a non-positive limit.
	ErrInvalidArgument = errors.New("invalid argument")
)
