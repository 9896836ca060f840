package document

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotFound means the input path does not resolve to a file.
	// Errors wrapping it also match fs.ErrNotExist.
	ErrNotFound = notFoundError{}

	// ErrMalformed means the file exists but could not be decoded.
	ErrMalformed = errors.New("malformed document")

	// ErrUnsupported means no loader handles the file's extension.
	ErrUnsupported = errors.New("unsupported document format")
)

type notFoundError struct{}

func (notFoundError) Error() string { return "document not found" }

func (notFoundError) Is(target error) bool { return target == fs.ErrNotExist }
