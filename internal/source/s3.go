package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrObjectChanged is returned by reads from an S3 object that was replaced
// after it was opened.
var ErrObjectChanged = errors.New("object changed while it was being read")

// S3API is the subset of *s3.Client used to read log objects.
type S3API interface {
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client returns an S3 client configured from the default AWS credential
// chain, overridden by any values set in opts.
func NewS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error

	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	if opts.AccessKey != "" {
		loadOpts = append(
			loadOpts,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
			),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(
		cfg,
		func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
			o.UsePathStyle = opts.PathStyle
		},
	), nil
}

// Object is a Source backed by an S3 object. Each ReadAt is a ranged GET.
//
// Reads are pinned to the object's ETag at open time, so a replaced object
// fails with ErrObjectChanged instead of mixing two versions.
type Object struct {
	// ctx is used for every request, because io.ReaderAt has no context.
	ctx    context.Context
	client S3API
	bucket string
	key    string
	size   int64
	etag   *string
}

// OpenS3 looks up the size of the object at bucket/key.
func OpenS3(ctx context.Context, client S3API, bucket, key string) (*Object, error) {
	o := &Object{
		ctx:    ctx,
		client: client,
		bucket: bucket,
		key:    key,
	}

	res, err := client.HeadObject(
		ctx,
		&s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
	)
	if err != nil {
		return nil, o.wrap("head", err)
	}

	if res.ContentLength != nil {
		o.size = *res.ContentLength
	}
	o.etag = res.ETag

	return o, nil
}

// ReadAt implements io.ReaderAt.
func (o *Object) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("read %s: negative offset %d", o.Name(), off)
	}
	if off >= o.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), o.size)

	res, err := o.client.GetObject(
		o.ctx,
		&s3.GetObjectInput{
			Bucket:  aws.String(o.bucket),
			Key:     aws.String(o.key),
			Range:   aws.String(fmt.Sprintf("bytes=%d-%d", off, end-1)),
			IfMatch: o.etag,
		},
	)
	if err != nil {
		return 0, o.wrap("get", err)
	}
	defer res.Body.Close()

	n, err := io.ReadFull(res.Body, p[:end-off])
	if err != nil {
		return n, fmt.Errorf("read %s at offset %d: %w", o.Name(), off, err)
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the object's content length when it was opened.
func (o *Object) Size() int64 {
	return o.size
}

// Name returns the object's s3:// URL.
func (o *Object) Name() string {
	return "s3://" + o.bucket + "/" + o.key
}

// Close is a no-op; each read releases its own response body.
func (o *Object) Close() error {
	return nil
}

func (o *Object) wrap(op string, err error) error {
	switch {
	case isNotExist(err):
		return fmt.Errorf("%s %s: %w", op, o.Name(), fs.ErrNotExist)
	case hasErrorCode(err, "PreconditionFailed"):
		return fmt.Errorf("%s %s: %w", op, o.Name(), ErrObjectChanged)
	default:
		return fmt.Errorf("%s %s: %w", op, o.Name(), err)
	}
}

// isNotExist returns true if err indicates the bucket or object is missing.
func isNotExist(err error) bool {
	var (
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)

	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return true
	}

	return hasErrorCode(err, "NoSuchKey", "NotFound", "NoSuchBucket")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, c := range codes {
		if apiErr.ErrorCode() == c {
			return true
		}
	}
	return false
}
