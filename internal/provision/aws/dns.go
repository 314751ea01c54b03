package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/provision/domain"
)

const dnsRecordTTL int64 = 300

// Route53Client defines the Route 53 operations used by the DNS manager.
type Route53Client interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// DNSManager binds tenant hostnames to instance addresses as A records in
// the platform hosted zone.
type DNSManager struct {
	client Route53Client
	cfg    config.AWSConfig
}

func NewDNSManager(awscfg awsv2.Config, cfg config.Config) *DNSManager {
	return &DNSManager{
		client: route53.NewFromConfig(awscfg),
		cfg:    cfg.AWS,
	}
}

// NewDNSManagerWithClient creates a DNS manager with a custom client.
func NewDNSManagerWithClient(client Route53Client, cfg config.AWSConfig) *DNSManager {
	return &DNSManager{client: client, cfg: cfg}
}

func (d *DNSManager) Bind(ctx context.Context, hostname, address string) error {
	return d.change(ctx, r53types.ChangeActionUpsert, hostname, address)
}

func (d *DNSManager) Unbind(ctx context.Context, hostname, address string) error {
	return d.change(ctx, r53types.ChangeActionDelete, hostname, address)
}

func (d *DNSManager) change(ctx context.Context, action r53types.ChangeAction, hostname, address string) error {
	_, err := d.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: awsv2.String(d.cfg.HostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{
				{
					Action: action,
					ResourceRecordSet: &r53types.ResourceRecordSet{
						Name: awsv2.String(hostname),
						Type: r53types.RRTypeA,
						TTL:  awsv2.Int64(dnsRecordTTL),
						ResourceRecords: []r53types.ResourceRecord{
							{Value: awsv2.String(address)},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("route53: %s A record %q: %w", action, hostname, err)
	}
	return nil
}

var _ domain.DNSManager = (*DNSManager)(nil)
