package aws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// ELBClient is the subset of the ELBv2 API the discoverer calls.
type ELBClient interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error)
	DescribeTargetHealth(ctx context.Context, params *elbv2.DescribeTargetHealthInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetHealthOutput, error)
}

// ELBDiscoverer maps load balancers and their registered targets into
// RoutesTo edges.
type ELBDiscoverer struct {
	Client ELBClient
	Graph  *graph.Graph
	Logger *slog.Logger
}

func NewELBDiscoverer(cfg aws.Config, g *graph.Graph, logger *slog.Logger) *ELBDiscoverer {
	return &ELBDiscoverer{
		Client: elbv2.NewFromConfig(cfg),
		Graph:  g,
		Logger: logger,
	}
}

func (d *ELBDiscoverer) Discover(ctx context.Context) error {
	lbByARN := make(map[string]string)

	paginator := elbv2.NewDescribeLoadBalancersPaginator(d.Client, &elbv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe load balancers: %v", err)
		}

		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)
			name := aws.ToString(lb.LoadBalancerName)
			if arn == "" {
				continue
			}
			lbByARN[arn] = name

			d.Graph.AddResource(arn, name, "aws_lb", "aws", map[string]interface{}{
				"State":              string(lb.State.Code),
				"Type":               string(lb.Type),
				"PubliclyAccessible": string(lb.Scheme) == "internet-facing",
			})
		}
	}

	return d.discoverTargets(ctx, lbByARN)
}

func (d *ELBDiscoverer) discoverTargets(ctx context.Context, lbByARN map[string]string) error {
	tgPaginator := elbv2.NewDescribeTargetGroupsPaginator(d.Client, &elbv2.DescribeTargetGroupsInput{})
	for tgPaginator.HasMorePages() {
		page, err := tgPaginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe target groups: %v", err)
		}

		for _, tg := range page.TargetGroups {
			tgARN := aws.ToString(tg.TargetGroupArn)
			if tgARN == "" {
				continue
			}

			health, err := d.Client.DescribeTargetHealth(ctx, &elbv2.DescribeTargetHealthInput{
				TargetGroupArn: &tgARN,
			})
			if err != nil {
				d.Graph.AddError("elb:target-health", err)
				d.Logger.Warn("target health lookup failed", "target_group", tgARN, "error", err)
				continue
			}

			for _, lbARN := range tg.LoadBalancerArns {
				if _, ok := lbByARN[lbARN]; !ok {
					continue
				}
				for _, desc := range health.TargetHealthDescriptions {
					targetID := aws.ToString(desc.Target.Id)
					if targetID == "" {
						continue
					}
					d.Graph.AddDependency(lbARN, targetID, graph.KindRoutesTo, graph.CategoryNetwork, 1.0)
				}
			}
		}
	}
	return nil
}
