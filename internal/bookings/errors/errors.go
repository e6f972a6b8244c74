package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrOverlap = errors.New("booking dates overlap an existing booking")

	ErrLockHeld = errors.New("cabin is locked by another booking request")

	ErrStaleUpdate = errors.New("booking was modified since it was read")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrInvalidPayment = errors.New("invalid payment")
)
