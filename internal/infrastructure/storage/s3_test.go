package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Upload(t *testing.T) {
	client := &fakeS3{}
	store := NewS3StorageWithClient(client, "plans", "/exports/", zap.NewNop())

	location, err := store.Upload(context.Background(), "user/plan.json", []byte(`{"id":"1"}`), "application/json")
	require.NoError(t, err)

	assert.Equal(t, "s3://plans/exports/user/plan.json", location)
	assert.Equal(t, "plans", aws.StringValue(client.input.Bucket))
	assert.Equal(t, "exports/user/plan.json", aws.StringValue(client.input.Key))
	assert.Equal(t, "application/json", aws.StringValue(client.input.ContentType))
	assert.Equal(t, `{"id":"1"}`, string(client.body))
}

func TestS3Storage_UploadError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	store := NewS3StorageWithClient(client, "plans", "", zap.NewNop())

	_, err := store.Upload(context.Background(), "plan.json", nil, "application/json")
	assert.ErrorContains(t, err, "access denied")
}
