package source

import (
	"errors"
	"fmt"
)

var ErrMissingCredentials = errors.New("missing search API credentials")

// SearchError means the remote index rejected the query or was unreachable.
type SearchError struct {
	Source string
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search: %v", e.Source, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// DownloadError is a failure to fetch a single image.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
