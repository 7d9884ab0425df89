package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from memory and honours Range and IfMatch.
type fakeS3 struct {
	objects map[string][]byte
	etag    string
	ranges  []string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(f.etag),
	}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	if in.IfMatch != nil && *in.IfMatch != f.etag {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "etag mismatch"}
	}

	f.ranges = append(f.ranges, *in.Range)

	var start, end int
	if _, err := fmt.Sscanf(*in.Range, "bytes=%d-%d", &start, &end); err != nil {
		return nil, err
	}
	end = min(end, len(data)-1)

	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data[start : end+1])),
	}, nil
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: map[string][]byte{
			"logs/app.log": []byte("2024-01-01 entry 1\n2024-01-02 entry 2\n"),
		},
		etag: `"v1"`,
	}
}

func TestOpenS3_ReadAt(t *testing.T) {
	client := newFakeS3()

	obj, err := OpenS3(context.Background(), client, "logs", "app.log")
	require.NoError(t, err)
	defer obj.Close()

	assert.Equal(t, int64(38), obj.Size())
	assert.Equal(t, "s3://logs/app.log", obj.Name())

	buf := make([]byte, 10)
	n, err := obj.ReadAt(buf, 19)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "2024-01-02", string(buf))
	assert.Equal(t, []string{"bytes=19-28"}, client.ranges)
}

func TestOpenS3_ReadAtEnd(t *testing.T) {
	client := newFakeS3()

	obj, err := OpenS3(context.Background(), client, "logs", "app.log")
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := obj.ReadAt(buf, 30)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 8, n)
	assert.Equal(t, "entry 2\n", string(buf[:n]))
	assert.Equal(t, []string{"bytes=30-37"}, client.ranges)

	n, err = obj.ReadAt(buf, 38)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
	assert.Len(t, client.ranges, 1, "reads past the end must not reach S3")
}

func TestOpenS3_Missing(t *testing.T) {
	_, err := OpenS3(context.Background(), newFakeS3(), "logs", "missing.log")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenS3_ObjectReplaced(t *testing.T) {
	client := newFakeS3()

	obj, err := OpenS3(context.Background(), client, "logs", "app.log")
	require.NoError(t, err)

	client.etag = `"v2"`

	_, err = obj.ReadAt(make([]byte, 10), 0)
	assert.ErrorIs(t, err, ErrObjectChanged)
}
