// Package objectstore uploads cache archives to S3 compatible object storage.
package objectstore

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/errors"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Options configures the S3 client.
type Options struct {
	Endpoint         string
	Port             int
	Insecure         bool
	AccessKey        string
	SecretKey        string
	SessionToken     string
	Region           string
	RetryMaxAttempts int
	HTTPClient       *http.Client
}

// Client uploads files as single objects.
type Client struct {
	uploader *manager.Uploader
}

// New creates a client from the options. Static credentials are used when an
// access key is set, otherwise the default AWS credential chain applies.
func New(ctx context.Context, opts Options) (*Client, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if opts.RetryMaxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(opts.RetryMaxAttempts))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken)))
	}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(opts.HTTPClient))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	endpoint := EndpointURL(opts.Endpoint, opts.Port, opts.Insecure)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Debug("object store client ready", logger.Fields{"region": region, "endpoint": endpoint})
	return &Client{uploader: manager.NewUploader(client)}, nil
}

// Upload stores the file at filePath as bucket/object, replacing any existing
// object with the same name.
func (c *Client) Upload(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(errors.ErrUploadFailed, "open %s: %v", filePath, err)
	}
	defer f.Close()

	out, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
		Body:   f,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrUploadFailed, "put s3://%s/%s: %v", bucket, object, err)
	}

	logger.Debug("object uploaded", logger.Fields{"bucket": bucket, "object": object, "location": out.Location})
	return nil
}

// EndpointURL joins an endpoint host with an optional port and scheme. An
// endpoint that already carries a scheme keeps it. An empty endpoint yields
// an empty string so the SDK resolves the AWS endpoint itself.
func EndpointURL(endpoint string, port int, insecure bool) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	scheme := "https"
	if insecure {
		scheme = "http"
	}
	if s, rest, ok := strings.Cut(endpoint, "://"); ok {
		scheme, endpoint = s, rest
	}
	if port > 0 {
		if _, _, err := net.SplitHostPort(endpoint); err != nil {
			endpoint = net.JoinHostPort(endpoint, strconv.Itoa(port))
		}
	}
	return scheme + "://" + endpoint
}

// Unavailable is a store whose construction failed. Every upload reports the
// construction error so the failure is handled like any other upload error.
type Unavailable struct {
	Err error
}

// Upload implements the store interface.
func (u Unavailable) Upload(_ context.Context, bucket, object, _ string) error {
	return errors.Wrapf(errors.ErrUploadFailed, "s3://%s/%s: client unavailable: %v", bucket, object, u.Err)
}
