package extract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/minuteman3/log-find-date/internal/logsearch"
)

const readBufferSize = 64 * 1024

// CopyRange streams the bytes of rng from r, splits them into lines and writes
// every line that begins with date to w, newline-terminated. Lines that do
// not begin with date are dropped.
//
// If stripCR is true a trailing '\r' is removed from each line. ctx is
// checked between lines so a caller's deadline stops a long copy.
func CopyRange(
	ctx context.Context,
	r io.ReaderAt,
	rng logsearch.Range,
	date logsearch.Date,
	w io.Writer,
	stripCR bool,
) (lines int, written int64, err error) {
	if rng.Empty() {
		return 0, 0, nil
	}

	prefix := []byte(date.String())
	br := bufio.NewReaderSize(io.NewSectionReader(r, rng.Start, rng.Len()), readBufferSize)
	offset := rng.Start

	for {
		if err := ctx.Err(); err != nil {
			return lines, written, err
		}

		line, readErr := br.ReadBytes('\n')
		offset += int64(len(line))
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte("\n"))
			if stripCR {
				line = bytes.TrimSuffix(line, []byte("\r"))
			}

			if bytes.HasPrefix(line, prefix) {
				n, err := w.Write(append(line, '\n'))
				written += int64(n)
				if err != nil {
					return lines, written, err
				}
				lines++
			}
		}

		if errors.Is(readErr, io.EOF) {
			return lines, written, nil
		}
		if readErr != nil {
			return lines, written, &logsearch.FileAccessError{
				Op:     "read",
				Path:   nameOf(r),
				Offset: offset,
				Err:    readErr,
			}
		}
	}
}

func nameOf(r io.ReaderAt) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
