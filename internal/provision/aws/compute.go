package aws

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/provision/domain"
)

// instanceRunningWait bounds the blocking wait for a fresh instance to
// reach the running state. Exceeding it fails the saga step.
const instanceRunningWait = 60 * time.Second

// attemptTagKey marks every resource with the provisioning attempt that
// created it, so compensation and manual reconciliation stay scoped.
const attemptTagKey = "ProvisionAttempt"

// EC2Client defines the EC2 operations used by the compute provisioner.
type EC2Client interface {
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

// ComputeProvisioner launches one dedicated instance per tenant.
type ComputeProvisioner struct {
	client EC2Client
	cfg    config.AWSConfig
}

func NewComputeProvisioner(awscfg awsv2.Config, cfg config.Config) *ComputeProvisioner {
	return &ComputeProvisioner{
		client: ec2.NewFromConfig(awscfg),
		cfg:    cfg.AWS,
	}
}

// NewComputeProvisionerWithClient creates a compute provisioner with a custom client.
func NewComputeProvisionerWithClient(client EC2Client, cfg config.AWSConfig) *ComputeProvisioner {
	return &ComputeProvisioner{client: client, cfg: cfg}
}

func (p *ComputeProvisioner) Launch(ctx context.Context, tenantLabel, attemptID string) (domain.Instance, error) {
	userData := base64.StdEncoding.EncodeToString([]byte(bootstrapScript))

	out, err := p.client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:          awsv2.String(p.cfg.AMIID),
		InstanceType:     ec2types.InstanceType(p.cfg.InstanceType),
		MinCount:         awsv2.Int32(1),
		MaxCount:         awsv2.Int32(1),
		SubnetId:         awsv2.String(p.cfg.SubnetID),
		SecurityGroupIds: []string{p.cfg.SecurityGroupID},
		UserData:         awsv2.String(userData),
		TagSpecifications: []ec2types.TagSpecification{
			{
				ResourceType: ec2types.ResourceTypeInstance,
				Tags: []ec2types.Tag{
					{Key: awsv2.String("Name"), Value: awsv2.String(tenantLabel)},
					{Key: awsv2.String("Owner"), Value: awsv2.String(tenantLabel)},
					{Key: awsv2.String(attemptTagKey), Value: awsv2.String(attemptID)},
				},
			},
		},
	})
	if err != nil {
		return domain.Instance{}, fmt.Errorf("ec2: run instance for %q: %w", tenantLabel, err)
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return domain.Instance{}, fmt.Errorf("ec2: run instance for %q returned no instances", tenantLabel)
	}
	instanceID := *out.Instances[0].InstanceId

	waiter := ec2.NewInstanceRunningWaiter(p.client)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	}, instanceRunningWait); err != nil {
		return domain.Instance{}, fmt.Errorf("ec2: instance %s not running within %s: %w", instanceID, instanceRunningWait, err)
	}

	address, err := p.publicAddress(ctx, instanceID)
	if err != nil {
		return domain.Instance{}, err
	}

	return domain.Instance{InstanceID: instanceID, Address: address}, nil
}

func (p *ComputeProvisioner) publicAddress(ctx context.Context, instanceID string) (string, error) {
	out, err := p.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return "", fmt.Errorf("ec2: describe %s: %w", instanceID, err)
	}
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if instance.PublicIpAddress != nil {
				return *instance.PublicIpAddress, nil
			}
		}
	}
	return "", nil
}

func (p *ComputeProvisioner) Terminate(ctx context.Context, instanceID string) error {
	_, err := p.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("ec2: terminate %s: %w", instanceID, err)
	}
	return nil
}

// bootstrapScript installs and starts the tenant dashboard on first boot.
const bootstrapScript = `#!/bin/bash
set -e
yum install -y git nodejs
cd /home/ec2-user
git clone https://github.com/mausamcrm/dashboard.git
cd dashboard
npm install
nohup npm run start > /home/ec2-user/app.log 2>&1 &
`

var _ domain.ComputeProvisioner = (*ComputeProvisioner)(nil)
