package logsearch

import (
	"errors"
	"fmt"
)

// ErrMalformedDate is matched by errors describing a date argument that is
// not a valid YYYY-MM-DD day.
var ErrMalformedDate = errors.New("malformed date")

// DateError is returned by ParseDate for input that is not a YYYY-MM-DD day.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed date %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("malformed date %q: expected YYYY-MM-DD", e.Input)
}

// Is makes errors.Is(err, ErrMalformedDate) true for any *DateError.
func (e *DateError) Is(target error) bool {
	return target == ErrMalformedDate
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// FileAccessError is returned when the log file cannot be opened or a read
// fails part way through a search.
type FileAccessError struct {
	Op     string
	Path   string
	Offset int64
	Err    error
}

func (e *FileAccessError) Error() string {
	if e.Op == "read" {
		return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
