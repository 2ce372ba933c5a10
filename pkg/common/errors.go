package common

import "errors"

var (
	ErrSourceNotFound   = errors.New("source path not found")
	ErrNotDirectory     = errors.New("path is not a directory")
	ErrMalformedArchive = errors.New("not a valid zip archive")
	ErrReplaceFailed    = errors.New("unable to replace archive")
)
