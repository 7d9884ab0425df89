package source

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/minuteman3/log-find-date/internal/source"

// WithTelemetry returns a Source that records a span and read metrics for
// every ReadAt call made against src.
func WithTelemetry(
	ctx context.Context,
	src Source,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (Source, error) {
	meter := mp.Meter(instrumentationName)

	reads, err := meter.Int64Counter(
		"source.reads",
		metric.WithDescription("The number of random-access reads made against a log source."),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	readBytes, err := meter.Int64Counter(
		"source.read.bytes",
		metric.WithDescription("The cumulative number of bytes read from a log source."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	readSize, err := meter.Int64Histogram(
		"source.read.size",
		metric.WithDescription("The sizes of individual reads made against a log source."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &instrumentedSource{
		Source:    src,
		ctx:       ctx,
		tracer:    tp.Tracer(instrumentationName),
		reads:     reads,
		readBytes: readBytes,
		readSize:  readSize,
		attrs: metric.WithAttributes(
			attribute.String("source", src.Name()),
		),
	}, nil
}

// instrumentedSource is a decorator that adds instrumentation to a Source.
type instrumentedSource struct {
	Source

	ctx    context.Context
	tracer trace.Tracer

	reads     metric.Int64Counter
	readBytes metric.Int64Counter
	readSize  metric.Int64Histogram
	attrs     metric.MeasurementOption
}

func (s *instrumentedSource) ReadAt(p []byte, off int64) (int, error) {
	ctx, span := s.tracer.Start(
		s.ctx,
		"source.read_at",
		trace.WithAttributes(
			attribute.String("source", s.Source.Name()),
			attribute.Int64("offset", off),
			attribute.Int("length", len(p)),
		),
	)
	defer span.End()

	n, err := s.Source.ReadAt(p, off)

	span.SetAttributes(attribute.Int("bytes_read", n))
	if err != nil && !errors.Is(err, io.EOF) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not read from log source")
	}

	s.reads.Add(ctx, 1, s.attrs)
	s.readBytes.Add(ctx, int64(n), s.attrs)
	s.readSize.Record(ctx, int64(n), s.attrs)

	return n, err
}
