package logsearch

import "bytes"

// Range is the half-open byte range [Start, End) holding the lines of one date.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the range.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// Empty reports whether the range holds no bytes.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// FindStart returns the offset of the first line whose date prefix is target.
// found is false if no line has that prefix.
func (s *Searcher) FindStart(target Date) (offset int64, found bool, err error) {
	key := target.key()

	low, err := s.lowerBound(0, key)
	if err != nil {
		return 0, false, err
	}

	line, err := s.LineStart(low)
	if err != nil {
		return 0, false, err
	}

	size := s.in.Size()
	for line < size {
		prefix, ok, err := s.DatePrefix(line)
		if err != nil {
			return 0, false, err
		}
		if ok {
			if !bytes.Equal(prefix, key) {
				return 0, false, nil
			}
			return line, true, nil
		}

		// Truncated lines sort after every date, so the search may stop on
		// one that sits directly before the block. Step over it.
		line, err = s.nextLine(line)
		if err != nil {
			return 0, false, err
		}
	}

	return 0, false, nil
}

// FindEnd returns the exclusive end of target's block: the offset of the
// first line at or after start whose prefix sorts at or after the next day,
// or Size() if there is none.
//
// start must be the offset returned by FindStart for the same target.
func (s *Searcher) FindEnd(target Date, start int64) (int64, error) {
	next, ok := target.Next()
	if !ok {
		return s.in.Size(), nil
	}

	low, err := s.lowerBound(start, next.key())
	if err != nil {
		return 0, err
	}

	return s.LineStart(low)
}

// FindRange returns the byte range holding every line of target.
// found is false, with an empty range, if no line has that date.
func (s *Searcher) FindRange(target Date) (rng Range, found bool, err error) {
	start, found, err := s.FindStart(target)
	if err != nil || !found {
		return Range{}, false, err
	}

	end, err := s.FindEnd(target, start)
	if err != nil {
		return Range{}, false, err
	}

	return Range{Start: start, End: end}, true, nil
}

// lowerBound returns the smallest offset p in [low, Size()] such that the
// line LineStart(p) does not sort before key. A line with no prefix sorts
// after every key.
func (s *Searcher) lowerBound(low int64, key []byte) (int64, error) {
	high := s.in.Size()

	for low < high {
		mid := low + (high-low)/2

		line, err := s.LineStart(mid)
		if err != nil {
			return 0, err
		}

		prefix, ok, err := s.DatePrefix(line)
		if err != nil {
			return 0, err
		}

		if ok && bytes.Compare(prefix, key) < 0 {
			// Every offset in (mid, line) resolves to the same line, so skip
			// them all. mid+1 keeps the search moving when mid is 0.
			low = min(max(line, mid+1), high)
		} else {
			high = mid
		}
	}

	return low, nil
}
