package file

import "errors"

var (
	// ErrFileNotFound signals that no record exists for the id.
	ErrFileNotFound = errors.New("file not found")
	// ErrBlobNotFound signals that a record exists but its bytes are gone.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrFileExpired signals that the record is past its retention window.
	ErrFileExpired = errors.New("file expired")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
	// ErrMissingFile signals that the upload request carried no file.
	ErrMissingFile = errors.New("missing file payload")
	// ErrCorruptDocument signals that the metadata document could not be decoded.
	ErrCorruptDocument = errors.New("corrupt metadata document")
	// ErrInvalidName signals a blob name that would escape the storage directory.
	ErrInvalidName = errors.New("invalid blob name")
)
