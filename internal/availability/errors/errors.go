package errors

import "errors"

var (
	ErrNotFound = errors.New("calendar not found")

	ErrInvalidID = errors.New("invalid calendar ID format")
)
