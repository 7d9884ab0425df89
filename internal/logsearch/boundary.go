package logsearch

import "bytes"

// LineStart returns the offset of the next complete line at or after offset.
//
// Offset 0 is always a line start. For any other offset the result is the
// byte after the first '\n' at or after offset, or Size() if the input ends
// without one. The scan reads the input in chunks and keeps going across
// chunk boundaries until it finds a newline or reaches the end.
func (s *Searcher) LineStart(offset int64) (int64, error) {
	if offset <= 0 {
		return 0, nil
	}
	return s.nextLine(offset)
}

// nextLine returns the offset just past the first '\n' at or after from.
func (s *Searcher) nextLine(from int64) (int64, error) {
	size := s.in.Size()
	buf := make([]byte, s.chunkSize)

	for pos := from; pos < size; {
		n, err := s.readAt(buf[:min(int64(len(buf)), size-pos)], pos)
		if err != nil {
			return 0, err
		}

		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return pos + int64(i) + 1, nil
		}

		if n == 0 {
			// The input is shorter than it claimed to be.
			break
		}
		pos += int64(n)
	}

	return size, nil
}
