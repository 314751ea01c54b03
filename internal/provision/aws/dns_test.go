package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute53 struct {
	changes []*route53.ChangeResourceRecordSetsInput
}

func (f *fakeRoute53) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.changes = append(f.changes, params)
	return &route53.ChangeResourceRecordSetsOutput{}, nil
}

func TestBindUpsertsARecord(t *testing.T) {
	client := &fakeRoute53{}
	d := NewDNSManagerWithClient(client, config.AWSConfig{HostedZoneID: "Z123"})

	require.NoError(t, d.Bind(context.Background(), "acmeco.mausamcrm.site", "203.0.113.10"))

	require.Len(t, client.changes, 1)
	in := client.changes[0]
	assert.Equal(t, "Z123", *in.HostedZoneId)

	require.Len(t, in.ChangeBatch.Changes, 1)
	change := in.ChangeBatch.Changes[0]
	assert.Equal(t, r53types.ChangeActionUpsert, change.Action)

	record := change.ResourceRecordSet
	assert.Equal(t, "acmeco.mausamcrm.site", *record.Name)
	assert.Equal(t, r53types.RRTypeA, record.Type)
	assert.EqualValues(t, 300, *record.TTL)
	require.Len(t, record.ResourceRecords, 1)
	assert.Equal(t, "203.0.113.10", *record.ResourceRecords[0].Value)
}

func TestUnbindDeletesARecord(t *testing.T) {
	client := &fakeRoute53{}
	d := NewDNSManagerWithClient(client, config.AWSConfig{HostedZoneID: "Z123"})

	require.NoError(t, d.Unbind(context.Background(), "acmeco.mausamcrm.site", "203.0.113.10"))

	require.Len(t, client.changes, 1)
	assert.Equal(t, r53types.ChangeActionDelete, client.changes[0].ChangeBatch.Changes[0].Action)
}
