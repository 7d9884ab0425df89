package logsearch

import (
	"errors"
	"io"
)

// DefaultChunkSize is the number of bytes read per step while scanning
// forward for the end of a line.
const DefaultChunkSize = 4096

// Input is a read-only byte sequence of known size, such as a *bytes.Reader
// or an opened log file.
type Input interface {
	io.ReaderAt
	Size() int64
}

// Searcher probes an Input for line boundaries and date prefixes.
//
// A Searcher holds no state between calls, so one value may be reused for
// any number of searches over the same unchanged input.
type Searcher struct {
	in        Input
	name      string
	chunkSize int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithChunkSize sets the size of the reads used to scan for newlines.
// Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithName sets the name used in errors that describe failed reads.
func WithName(name string) Option {
	return func(s *Searcher) {
		s.name = name
	}
}

// NewSearcher returns a Searcher over in.
func NewSearcher(in Input, opts ...Option) *Searcher {
	s := &Searcher{
		in:        in,
		chunkSize: DefaultChunkSize,
	}
	if n, ok := in.(interface{ Name() string }); ok {
		s.name = n.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the size of the input, in bytes.
func (s *Searcher) Size() int64 {
	return s.in.Size()
}

// readAt fills p from off. It returns the number of bytes read, which is
// less than len(p) only when the input ends first.
func (s *Searcher) readAt(p []byte, off int64) (int, error) {
	n, err := s.in.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &FileAccessError{Op: "read", Path: s.name, Offset: off, Err: err}
	}
	return n, nil
}
