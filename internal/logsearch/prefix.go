package logsearch

import "bytes"

// DatePrefix reads the PrefixLen bytes that begin the line at lineStart.
//
// ok is false if fewer than PrefixLen bytes remain before the end of the
// input, or if the line ends before its prefix does. The bytes are not
// checked for date syntax.
func (s *Searcher) DatePrefix(lineStart int64) (prefix []byte, ok bool, err error) {
	if lineStart < 0 || lineStart+int64(PrefixLen) > s.in.Size() {
		return nil, false, nil
	}

	buf := make([]byte, PrefixLen)
	n, err := s.readAt(buf, lineStart)
	if err != nil {
		return nil, false, err
	}
	if n < PrefixLen {
		return nil, false, nil
	}

	// A short line would otherwise borrow bytes from the line after it.
	if bytes.IndexByte(buf, '\n') >= 0 {
		return nil, false, nil
	}

	return buf, true, nil
}
