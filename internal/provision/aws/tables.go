package aws

import (
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/provision/domain"
)

// DynamoDBClient defines the DynamoDB operations used by the table provisioner.
type DynamoDBClient interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
}

// TableProvisioner creates the tenant-scoped customer table. Creation and
// deletion are idempotent so compensation retries are safe.
type TableProvisioner struct {
	client DynamoDBClient
	cfg    config.AWSConfig
}

func NewTableProvisioner(awscfg awsv2.Config, cfg config.Config) *TableProvisioner {
	return &TableProvisioner{
		client: dynamodb.NewFromConfig(awscfg),
		cfg:    cfg.AWS,
	}
}

// NewTableProvisionerWithClient creates a table provisioner with a custom client.
func NewTableProvisionerWithClient(client DynamoDBClient, cfg config.AWSConfig) *TableProvisioner {
	return &TableProvisioner{client: client, cfg: cfg}
}

func (t *TableProvisioner) Create(ctx context.Context, tenantLabel string) error {
	name := t.tableName(tenantLabel)

	_, err := t.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   awsv2.String(name),
		BillingMode: dbtypes.BillingModePayPerRequest,
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: awsv2.String("CustomerID"), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: awsv2.String("CustomerID"), KeyType: dbtypes.KeyTypeHash},
		},
	})
	if err != nil {
		var inUse *dbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("dynamodb: create table %q: %w", name, err)
	}
	return nil
}

func (t *TableProvisioner) Drop(ctx context.Context, tenantLabel string) error {
	name := t.tableName(tenantLabel)

	_, err := t.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: awsv2.String(name),
	})
	if err != nil {
		var notFound *dbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("dynamodb: delete table %q: %w", name, err)
	}
	return nil
}

func (t *TableProvisioner) tableName(tenantLabel string) string {
	return fmt.Sprintf("%s-%s-Customer", t.cfg.TablePrefix, tenantLabel)
}

var _ domain.TableProvisioner = (*TableProvisioner)(nil)
