// Package extract copies the lines of one date out of a sorted log file and
// into an output artifact.
package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/minuteman3/log-find-date/internal/logsearch"
	"github.com/minuteman3/log-find-date/internal/source"
)

// Options describes one extraction.
type Options struct {
	// Date is the day whose lines are extracted.
	Date logsearch.Date

	// Input is a local path or s3://bucket/key URL of the log file.
	Input string

	// Output is the path of the artifact. It is truncated on every run.
	Output string

	ChunkSize int
	StripCR   bool

	// Telemetry wraps the source with the global OpenTelemetry providers.
	Telemetry bool

	Source source.Options
	Logger zerolog.Logger
}

// Result describes a completed extraction.
type Result struct {
	Date   logsearch.Date
	Input  string
	Output string
	Range  logsearch.Range
	Found  bool
	Lines  int
	Bytes  int64
}

// OutputPath returns the default artifact path for date inside dir.
func OutputPath(dir string, date logsearch.Date) string {
	return filepath.Join(dir, date.String()+"_logs.txt")
}

// Run finds the lines for opts.Date in opts.Input and writes them to
// opts.Output. A date with no lines is not an error: the artifact is left
// empty and Result.Found is false.
func Run(ctx context.Context, opts Options) (res Result, err error) {
	if opts.Date.IsZero() {
		return Result{}, fmt.Errorf("extract: %w: no date given", logsearch.ErrMalformedDate)
	}
	if opts.Output == "" {
		return Result{}, errors.New("extract: no output path given")
	}

	res = Result{
		Date:   opts.Date,
		Input:  opts.Input,
		Output: opts.Output,
	}
	log := opts.Logger.With().
		Str("date", opts.Date.String()).
		Str("input", opts.Input).
		Logger()

	src, err := openSource(ctx, opts)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("error closing log source")
		}
	}()

	searcher := logsearch.NewSearcher(
		src,
		logsearch.WithName(src.Name()),
		logsearch.WithChunkSize(opts.ChunkSize),
	)

	res.Range, res.Found, err = searcher.FindRange(opts.Date)
	if err != nil {
		return res, err
	}

	if res.Found {
		log.Debug().
			Int64("start", res.Range.Start).
			Int64("end", res.Range.End).
			Int64("size", searcher.Size()).
			Msg("found date range")
	} else {
		log.Info().Msg("no lines matched date")
	}

	res.Lines, res.Bytes, err = writeArtifact(ctx, src, res.Range, opts)
	if err != nil {
		return res, err
	}

	log.Info().
		Str("output", opts.Output).
		Int("lines", res.Lines).
		Int64("bytes", res.Bytes).
		Msg("wrote artifact")

	return res, nil
}

// openSource opens the log file, reporting open failures as
// *logsearch.FileAccessError.
func openSource(ctx context.Context, opts Options) (source.Source, error) {
	src, err := source.Open(ctx, opts.Input, opts.Source)
	if err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &logsearch.FileAccessError{Op: "open", Path: opts.Input, Err: err}
	}

	if !opts.Telemetry {
		return src, nil
	}

	instrumented, err := source.WithTelemetry(ctx, src, otel.GetTracerProvider(), otel.GetMeterProvider())
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to instrument log source: %w", err)
	}
	return instrumented, nil
}

// writeArtifact truncates the output file and copies the matching lines into
// it. The output directory is created if needed.
func writeArtifact(ctx context.Context, src source.Source, rng logsearch.Range, opts Options) (lines int, written int64, err error) {
	if dir := filepath.Dir(opts.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)

	lines, written, err = CopyRange(ctx, src, rng, opts.Date, bw, opts.StripCR)
	if err != nil {
		return lines, written, fmt.Errorf("failed to copy lines: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return lines, written, fmt.Errorf("failed to write output file: %w", err)
	}

	return lines, written, nil
}
