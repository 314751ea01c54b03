package aws

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/provision/domain"
)

const (
	targetGroupPort        int32 = 3000
	targetGroupNameMax           = 32
	rulePriorityCeiling          = 50000
	priorityRandomAttempts       = 16
)

// ELBv2Client defines the ELBv2 operations used by the routing configurator.
type ELBv2Client interface {
	CreateTargetGroup(ctx context.Context, params *elbv2.CreateTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error)
	RegisterTargets(ctx context.Context, params *elbv2.RegisterTargetsInput, optFns ...func(*elbv2.Options)) (*elbv2.RegisterTargetsOutput, error)
	CreateRule(ctx context.Context, params *elbv2.CreateRuleInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateRuleOutput, error)
	DescribeRules(ctx context.Context, params *elbv2.DescribeRulesInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeRulesOutput, error)
	DeleteRule(ctx context.Context, params *elbv2.DeleteRuleInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteRuleOutput, error)
	DeleteTargetGroup(ctx context.Context, params *elbv2.DeleteTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteTargetGroupOutput, error)
}

// RoutingConfigurator maps tenant hostnames onto per-tenant target groups
// behind the shared application load balancer: a forward rule on the HTTPS
// listener and a redirect rule on the HTTP listener.
type RoutingConfigurator struct {
	client ELBv2Client
	cfg    config.AWSConfig
}

func NewRoutingConfigurator(awscfg awsv2.Config, cfg config.Config) *RoutingConfigurator {
	return &RoutingConfigurator{
		client: elbv2.NewFromConfig(awscfg),
		cfg:    cfg.AWS,
	}
}

// NewRoutingConfiguratorWithClient creates a routing configurator with a custom client.
func NewRoutingConfiguratorWithClient(client ELBv2Client, cfg config.AWSConfig) *RoutingConfigurator {
	return &RoutingConfigurator{client: client, cfg: cfg}
}

func (r *RoutingConfigurator) CreateTarget(ctx context.Context, tenantLabel, instanceID, attemptID string) (string, error) {
	name := targetGroupName(tenantLabel)

	out, err := r.client.CreateTargetGroup(ctx, &elbv2.CreateTargetGroupInput{
		Name:                awsv2.String(name),
		Protocol:            elbtypes.ProtocolEnumHttp,
		Port:                awsv2.Int32(targetGroupPort),
		VpcId:               awsv2.String(r.cfg.VPCID),
		TargetType:          elbtypes.TargetTypeEnumInstance,
		HealthCheckProtocol: elbtypes.ProtocolEnumHttp,
		HealthCheckPath:     awsv2.String("/api/status"),
		HealthCheckPort:     awsv2.String(strconv.Itoa(int(targetGroupPort))),
		Tags: []elbtypes.Tag{
			{Key: awsv2.String(attemptTagKey), Value: awsv2.String(attemptID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("elb: create target group %q: %w", name, err)
	}
	if len(out.TargetGroups) == 0 || out.TargetGroups[0].TargetGroupArn == nil {
		return "", fmt.Errorf("elb: create target group %q returned no ARN", name)
	}
	targetGroupARN := *out.TargetGroups[0].TargetGroupArn

	_, err = r.client.RegisterTargets(ctx, &elbv2.RegisterTargetsInput{
		TargetGroupArn: awsv2.String(targetGroupARN),
		Targets: []elbtypes.TargetDescription{
			{Id: awsv2.String(instanceID), Port: awsv2.Int32(targetGroupPort)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("elb: register %s on %q: %w", instanceID, name, err)
	}

	return targetGroupARN, nil
}

func (r *RoutingConfigurator) CreateRule(ctx context.Context, hostname, targetID string, kind domain.RuleKind) (string, error) {
	listenerARN := r.cfg.HTTPSListenerARN
	action := elbtypes.Action{
		Type:           elbtypes.ActionTypeEnumForward,
		TargetGroupArn: awsv2.String(targetID),
	}
	if kind == domain.RuleRedirect {
		listenerARN = r.cfg.HTTPListenerARN
		action = elbtypes.Action{
			Type: elbtypes.ActionTypeEnumRedirect,
			RedirectConfig: &elbtypes.RedirectActionConfig{
				Protocol:   awsv2.String("HTTPS"),
				Port:       awsv2.String("443"),
				StatusCode: elbtypes.RedirectActionStatusCodeEnumHttp301,
			},
		}
	}

	priority, err := r.freePriority(ctx, listenerARN)
	if err != nil {
		return "", err
	}

	out, err := r.client.CreateRule(ctx, &elbv2.CreateRuleInput{
		ListenerArn: awsv2.String(listenerARN),
		Priority:    awsv2.Int32(priority),
		Conditions: []elbtypes.RuleCondition{
			{
				Field:  awsv2.String("host-header"),
				Values: []string{hostname},
			},
		},
		Actions: []elbtypes.Action{action},
	})
	if err != nil {
		return "", fmt.Errorf("elb: create %s rule for %q: %w", kind, hostname, err)
	}
	if len(out.Rules) == 0 || out.Rules[0].RuleArn == nil {
		return "", fmt.Errorf("elb: create %s rule for %q returned no ARN", kind, hostname)
	}
	return *out.Rules[0].RuleArn, nil
}

// freePriority picks a rule priority not already taken on the listener.
// Uniqueness is what matters, not the numbering scheme.
func (r *RoutingConfigurator) freePriority(ctx context.Context, listenerARN string) (int32, error) {
	out, err := r.client.DescribeRules(ctx, &elbv2.DescribeRulesInput{
		ListenerArn: awsv2.String(listenerARN),
	})
	if err != nil {
		return 0, fmt.Errorf("elb: describe rules on %q: %w", listenerARN, err)
	}

	taken := make(map[int32]struct{}, len(out.Rules))
	for _, rule := range out.Rules {
		if rule.Priority == nil {
			continue
		}
		parsed, err := strconv.ParseInt(*rule.Priority, 10, 32)
		if err != nil {
			continue // "default" rule has no numeric priority
		}
		taken[int32(parsed)] = struct{}{}
	}

	for attempt := 0; attempt < priorityRandomAttempts; attempt++ {
		candidate := int32(rand.Intn(rulePriorityCeiling)) + 1
		if _, exists := taken[candidate]; !exists {
			return candidate, nil
		}
	}

	// Dense listeners defeat random picks; fall back to a linear scan.
	for candidate := int32(1); candidate <= rulePriorityCeiling; candidate++ {
		if _, exists := taken[candidate]; !exists {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("elb: no free rule priority on %q", listenerARN)
}

func (r *RoutingConfigurator) DeleteRule(ctx context.Context, ruleID string) error {
	_, err := r.client.DeleteRule(ctx, &elbv2.DeleteRuleInput{
		RuleArn: awsv2.String(ruleID),
	})
	if err != nil {
		return fmt.Errorf("elb: delete rule %q: %w", ruleID, err)
	}
	return nil
}

func (r *RoutingConfigurator) DeleteTarget(ctx context.Context, targetID string) error {
	_, err := r.client.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
		TargetGroupArn: awsv2.String(targetID),
	})
	if err != nil {
		return fmt.Errorf("elb: delete target group %q: %w", targetID, err)
	}
	return nil
}

func targetGroupName(tenantLabel string) string {
	name := "tg-" + strings.ReplaceAll(tenantLabel, ".", "-")
	if len(name) > targetGroupNameMax {
		name = name[:targetGroupNameMax]
	}
	return name
}

var _ domain.RoutingConfigurator = (*RoutingConfigurator)(nil)
