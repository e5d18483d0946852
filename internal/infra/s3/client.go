package s3

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Options configures the S3 client. Empty keys fall back to the default credential chain.
type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MaxObjectBytes  int64
}

// Client represents the S3 client wrapper
type Client struct {
	svc      s3iface.S3API
	maxBytes int64
}

// NewClient creates a new S3 client instance
func NewClient(opts Options) (*Client, error) {
	cfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return NewClientWithAPI(s3.New(sess), opts.MaxObjectBytes), nil
}

// NewClientWithAPI wraps an existing S3 API implementation.
func NewClientWithAPI(svc s3iface.S3API, maxObjectBytes int64) *Client {
	if maxObjectBytes <= 0 {
		maxObjectBytes = DefaultMaxObjectBytes
	}
	return &Client{svc: svc, maxBytes: maxObjectBytes}
}
