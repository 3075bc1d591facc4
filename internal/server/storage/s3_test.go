package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		User:         "admin",
		Password:     "secretpassword",
		Bucket:       "mediabox",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	}
}

func newTestStore(t *testing.T) *S3Store {
	t.Helper()
	s, err := NewS3Store(context.Background(), testOptions())
	require.NoError(t, err)
	return s
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config")
}

func TestS3Store_Put(t *testing.T) {
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	var got *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		got = in
		return nil
	}

	s := newTestStore(t)
	body := bytes.NewReader([]byte("png-bytes"))
	require.NoError(t, s.Put(context.Background(), "photos/k.png", "image/png", body, 9))

	require.NotNil(t, got)
	assert.Equal(t, "mediabox", aws.ToString(got.Bucket))
	assert.Equal(t, "photos/k.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(got.ContentLength))
	assert.Same(t, body, got.Body)
}

func TestS3Store_PutAndDeleteErrors(t *testing.T) {
	origPut, origDel := putObject, deleteObject
	t.Cleanup(func() { putObject, deleteObject = origPut, origDel })

	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput) error { return errors.New("put failed") }
	deleteObject = func(*s3.Client, context.Context, *s3.DeleteObjectInput) error { return errors.New("delete failed") }

	s := newTestStore(t)
	err := s.Put(context.Background(), "k", "image/png", bytes.NewReader(nil), 0)
	assert.ErrorContains(t, err, "put failed")
	err = s.Delete(context.Background(), "k")
	assert.ErrorContains(t, err, "delete failed")
}

func TestS3Store_Delete(t *testing.T) {
	orig := deleteObject
	t.Cleanup(func() { deleteObject = orig })

	var key string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		key = aws.ToString(in.Key)
		return nil
	}

	require.NoError(t, newTestStore(t).Delete(context.Background(), "posts/a.gif"))
	assert.Equal(t, "posts/a.gif", key)
}

func TestS3Store_PresignGet(t *testing.T) {
	s := newTestStore(t)

	url, err := s.PresignGet(context.Background(), "photos/2024/01/02/abc.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/mediabox/photos/2024/01/02/abc.png?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestNewObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

	a := NewObjectKey(PrefixPhotos, ".png", now)
	b := NewObjectKey(PrefixPhotos, ".png", now)

	assert.Regexp(t, `^photos/2024/03/07/[0-9a-f-]{36}\.png$`, a)
	assert.NotEqual(t, a, b)
}

func TestDetectImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	gif := []byte("GIF89a....")

	ct, ext, ok := DetectImage(png)
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, ".png", ext)

	_, ext, ok = DetectImage(jpeg)
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	_, ext, ok = DetectImage(gif)
	assert.True(t, ok)
	assert.Equal(t, ".gif", ext)

	_, _, ok = DetectImage([]byte("just some text"))
	assert.False(t, ok)
}
