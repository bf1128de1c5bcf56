package repository

import "errors"

var (
	// ErrStreamNotFound is returned when no live record exists for a creator.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrDuplicateStream is returned when admission is attempted for a creator
	// that is already live. Admission never overwrites an existing record.
	ErrDuplicateStream = errors.New("stream already exists")

	// ErrObjectNotFound is returned when a storage object cannot be found.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
