package repository

import (
	"errors"
	"fmt"
)

// ErrFetch marks a failed upstream fetch. Callers may retry.
var ErrFetch = errors.New("fetch failed")

// FetchError carries the key and cause of a failed fetch. It matches both
// ErrFetch and the cause with errors.Is.
type FetchError struct {
	Key Key
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrFetch, e.Key, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}
