package logsearch

import (
	"errors"
	"io/fs"

	"github.com/minuteman3/log-find-date/internal/source"
)

// FindStartOffset opens the log file at path and returns the offset of the
// first line dated target. found is false if the file has no such line.
func FindStartOffset(path string, target Date, opts ...Option) (offset int64, found bool, err error) {
	err = withFile(path, opts, func(s *Searcher) error {
		offset, found, err = s.FindStart(target)
		return err
	})
	return offset, found, err
}

// FindEndOffset opens the log file at path and returns the exclusive end of
// target's block, searching forward from start.
func FindEndOffset(path string, target Date, start int64, opts ...Option) (end int64, err error) {
	err = withFile(path, opts, func(s *Searcher) error {
		end, err = s.FindEnd(target, start)
		return err
	})
	return end, err
}

// withFile opens path for the duration of fn. The file is closed on every
// return path.
func withFile(path string, opts []Option, fn func(*Searcher) error) (err error) {
	f, err := source.OpenFile(path)
	if err != nil {
		return &FileAccessError{Op: "open", Path: path, Err: unwrapPathError(err)}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FileAccessError{Op: "close", Path: path, Err: unwrapPathError(cerr)}
		}
	}()

	return fn(NewSearcher(f, append([]Option{WithName(path)}, opts...)...))
}

func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
