// Package aws implements the tenant infrastructure provisioners against
// AWS: EC2 compute, ALB routing, Route 53 DNS and DynamoDB tenant tables.
package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/mausamcrm/platform/internal/config"
)

// LoadConfig resolves the SDK configuration for the platform region.
func LoadConfig(ctx context.Context, cfg config.Config) (awsv2.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
	)
}
