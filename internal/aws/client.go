package aws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

// Client wraps AWS SDK clients
type Client struct {
	CloudWatch *cloudwatch.Client
	S3         *s3.Client
	STS        *sts.Client
	profile    string
	region     string
	endpoint   string
	logger     *slog.Logger
}

// ClientOption allows customizing the AWS Client
type ClientOption func(*Client)

// WithProfile sets the AWS profile for the client
func WithProfile(profile string) ClientOption {
	return func(c *Client) {
		c.profile = profile
	}
}

// WithRegion sets the AWS region for the client
func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// WithEndpoint points the S3 client at an S3-compatible endpoint.
// Path-style addressing is used when an endpoint is set.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithLogger sets the logger handed to the bucket sizers
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new AWS Client with the given options
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	// Build config options
	var configOpts []func(*config.LoadOptions) error

	if c.profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(c.profile))
	}

	if c.region != "" {
		configOpts = append(configOpts, config.WithRegion(c.region))
	}

	// Load AWS config
	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	// The shared config may supply the region when no option did
	if c.region == "" {
		c.region = cfg.Region
	}

	c.CloudWatch = cloudwatch.NewFromConfig(cfg)
	c.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
			o.UsePathStyle = true
		}
	})
	c.STS = sts.NewFromConfig(cfg)

	c.logger.Debug("created AWS client",
		"profile", c.profile,
		"region", c.region,
		"endpoint", c.endpoint)

	return c, nil
}

// Region returns the region the client was configured for
func (c *Client) Region() string {
	return c.region
}

// NewBucketSizer returns the BucketSizer for the selected backend.
// An empty cfg.Region defaults to the client's region.
func (c *Client) NewBucketSizer(backend types.Backend, cfg types.SizerConfig) (provider.BucketSizer, error) {
	if cfg.Region == "" {
		cfg.Region = c.region
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("no region configured (use --region or AWS_REGION)")
	}

	switch backend {
	case types.BackendCloudWatch:
		if c.endpoint != "" {
			return nil, fmt.Errorf("custom endpoints are only supported by the s3 backend")
		}
		return NewMetricsSizer(c.CloudWatch, c.S3, cfg, c.logger), nil
	case types.BackendS3:
		return NewObjectSizer(c.S3, cfg, c.logger), nil
	default:
		return nil, fmt.Errorf("%w %q", types.ErrUnknownBackend, backend)
	}
}
