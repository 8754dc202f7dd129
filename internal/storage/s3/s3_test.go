package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	objects map[string][]byte
	keys    []string
	err     error
}

func (f *fakeAPI) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestBackend_StatGetDelete(t *testing.T) {
	api := &fakeAPI{objects: map[string][]byte{"blobs/a": []byte("hello world")}}
	b := NewWithAPI(api, "bucket", "blobs/")
	ctx := context.Background()

	size, err := b.Stat(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	data, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	require.NoError(t, b.Delete(ctx, "a"))
	_, err = b.Stat(ctx, "a")
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, []string{"blobs/a", "blobs/a", "blobs/a", "blobs/a"}, api.keys)
}

func TestBackend_NotFound(t *testing.T) {
	b := NewWithAPI(&fakeAPI{objects: map[string][]byte{}}, "bucket", "")

	_, err := b.Stat(context.Background(), "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = b.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBackend_OtherErrors(t *testing.T) {
	b := NewWithAPI(&fakeAPI{err: errors.New("throttled")}, "bucket", "")

	_, err := b.Stat(context.Background(), "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
