package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "ats-portal/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	DefaultMaxObjectBytes = 1 << 20

	errGetObjectFmt      = "s3 get %s/%s: %w"
	errObjectTooLargeFmt = "s3 object %s/%s exceeds %d bytes"
)

var ErrObjectTooLarge = errors.New("object too large")

// GetObject reads a whole object into memory, bounded by the client's size limit.
// A missing bucket or key maps to apperrors.ErrNotFound.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf(errGetObjectFmt, bucket, key, mapError(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf(errGetObjectFmt, bucket, key, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: "+errObjectTooLargeFmt, ErrObjectTooLarge, bucket, key, c.maxBytes)
	}
	return data, nil
}

func mapError(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket:
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, aerr.Message())
		}
	}
	return err
}
