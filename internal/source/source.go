// Package source provides random-access views of log files, either on local
// disk or stored as S3 objects.
package source

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Source is a read-only, random-access view of a log file whose size is fixed
// for as long as it is open.
type Source interface {
	io.ReaderAt
	io.Closer

	// Size returns the length of the log file, in bytes.
	Size() int64

	// Name returns a human-readable identifier for the log file.
	Name() string
}

// Options configures how remote sources are reached.
type Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
	AccessKey string
	SecretKey string
}

// Open opens the log file at location, which is either a local path or an
// s3://bucket/key URL.
func Open(ctx context.Context, location string, opts Options) (Source, error) {
	if bucket, key, ok := ParseS3URL(location); ok {
		client, err := NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return OpenS3(ctx, client, bucket, key)
	}
	return OpenFile(location)
}

// IsRemote reports whether location names an S3 object rather than a local file.
func IsRemote(location string) bool {
	_, _, ok := ParseS3URL(location)
	return ok
}

// ParseS3URL splits an s3://bucket/key URL into its bucket and key.
func ParseS3URL(location string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(location, "s3://") {
		return "", "", false
	}

	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return "", "", false
	}

	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}

	return u.Host, key, true
}
