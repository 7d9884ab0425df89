// Command log-find-date extracts the lines of a single day from a log file
// whose lines begin with YYYY-MM-DD dates in ascending order.
//
// It binary searches the file's bytes for the first and last lines of the
// requested day and copies that range to an output file, reading only a
// small number of chunks from the input however large it is. Inputs may be
// local files or S3 objects.
//
// Usage:
//
//	log-find-date --input=logs_2024.log --output-dir=output 2024-01-02
package main
