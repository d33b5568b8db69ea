package aws

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
	"github.com/DrSkyle/platform-cli/pkg/version"
)

// STSAPI is the subset of the STS client used to resolve the caller.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// SessionOptions selects the account, region and endpoint of a session.
type SessionOptions struct {
	Region   string
	Profile  string
	Endpoint string // overrides AWS_ENDPOINT_URL, e.g. LocalStack
	Verbose  bool
	Logger   *slog.Logger
}

// Client encapsulates AWS SDK usage, handling authentication, region resolution, and middleware injection.
type Client struct {
	Config   aws.Config
	STS      STSAPI
	endpoint string
}

// NewClient initializes a new authenticated AWS client.
func NewClient(ctx context.Context, o SessionOptions) (*Client, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}
	if o.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(o.Profile))
	}

	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("AWS_ENDPOINT_URL")
	}
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	cfg.APIOptions = append(cfg.APIOptions, userAgentMiddleware(version.UserAgent()))
	if o.Verbose {
		cfg.APIOptions = append(cfg.APIOptions, apiCallLogger(logger))
	}

	return &Client{
		Config:   cfg,
		STS:      sts.NewFromConfig(cfg),
		endpoint: endpoint,
	}, nil
}

// userAgentMiddleware tags every request with the application name and version.
func userAgentMiddleware(ua string) func(*middleware.Stack) error {
	return func(stack *middleware.Stack) error {
		return stack.Build.Add(middleware.BuildMiddlewareFunc("PlatformUserAgent", func(ctx context.Context, input middleware.BuildInput, next middleware.BuildHandler) (
			middleware.BuildOutput, middleware.Metadata, error,
		) {
			if req, ok := input.Request.(*smithyhttp.Request); ok {
				current := req.Header.Get("User-Agent")
				if current == "" {
					req.Header.Set("User-Agent", ua)
				} else {
					req.Header.Set("User-Agent", current+" "+ua)
				}
			}
			return next.HandleBuild(ctx, input)
		}), middleware.After)
	}
}

// apiCallLogger logs each API operation at debug level.
func apiCallLogger(logger *slog.Logger) func(*middleware.Stack) error {
	return func(stack *middleware.Stack) error {
		return stack.Initialize.Add(middleware.InitializeMiddlewareFunc("APICallLogger", func(ctx context.Context, input middleware.InitializeInput, next middleware.InitializeHandler) (
			middleware.InitializeOutput, middleware.Metadata, error,
		) {
			logger.DebugContext(ctx, "AWS API call",
				"service", middleware.GetServiceID(ctx),
				"operation", middleware.GetOperationName(ctx))
			return next.HandleInitialize(ctx, input)
		}), middleware.Before)
	}
}

// EC2 returns an EC2 client bound to the session.
func (c *Client) EC2() *ec2.Client {
	return ec2.NewFromConfig(c.Config)
}

// S3 returns an S3 client. Custom endpoints use path-style addressing.
func (c *Client) S3() *s3.Client {
	return s3.NewFromConfig(c.Config, func(o *s3.Options) {
		o.UsePathStyle = c.endpoint != ""
	})
}

// Route53 returns a Route53 client.
func (c *Client) Route53() *route53.Client {
	return route53.NewFromConfig(c.Config)
}

// Region returns the session region.
func (c *Client) Region() string {
	return c.Config.Region
}

// CallerName resolves the short name of the calling principal: the user name for IAM users,
// the session name for assumed roles and "root" for the account root.
func (c *Client) CallerName(ctx context.Context) (string, error) {
	result, err := c.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", errs.Remote("GetCallerIdentity", err)
	}
	name := PrincipalName(aws.ToString(result.Arn))
	if name == "" {
		return "", fmt.Errorf("cannot derive a principal name from caller ARN %q", aws.ToString(result.Arn))
	}
	return name, nil
}

// PrincipalName returns the last path segment of an IAM/STS principal ARN.
func PrincipalName(arn string) string {
	// arn:partition:service:region:account:resource
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" {
		return ""
	}
	resource := parts[5]
	if i := strings.LastIndex(resource, "/"); i >= 0 {
		return resource[i+1:]
	}
	return resource
}
