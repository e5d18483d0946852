package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	apperrors "ats-portal/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	lastKey string
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	data, ok := f.objects[f.lastKey]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestGetObject(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"policies/rbac.yaml": []byte("roles: []")}}
	client := NewClientWithAPI(fake, 0)

	data, err := client.GetObject(context.Background(), "policies", "rbac.yaml")
	require.NoError(t, err)
	assert.Equal(t, "roles: []", string(data))
	assert.Equal(t, "policies/rbac.yaml", fake.lastKey)
}

func TestGetObjectNotFound(t *testing.T) {
	client := NewClientWithAPI(&fakeS3{objects: map[string][]byte{}}, 0)

	_, err := client.GetObject(context.Background(), "policies", "missing.yaml")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetObjectTooLarge(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"b/k": bytes.Repeat([]byte("x"), 11)}}
	client := NewClientWithAPI(fake, 10)

	_, err := client.GetObject(context.Background(), "b", "k")
	assert.True(t, errors.Is(err, ErrObjectTooLarge))
}

func TestGetObjectAtLimit(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"b/k": bytes.Repeat([]byte("x"), 10)}}
	client := NewClientWithAPI(fake, 10)

	data, err := client.GetObject(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.Len(t, data, 10)
}
