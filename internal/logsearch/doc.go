// Package logsearch locates the lines of a single calendar date inside a large,
// date-sorted log file.
//
// Every line of the file is expected to begin with a YYYY-MM-DD prefix, and lines
// are expected to be in non-decreasing prefix order. Under that assumption the
// lines for one date form a contiguous byte range, which the package finds with
// two binary searches over raw byte offsets instead of scanning the file.
//
// Binary search lands on arbitrary bytes, so every probe is first resynchronised
// to the start of the next complete line before its date prefix is read.
package logsearch
