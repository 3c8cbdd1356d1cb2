package aws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

// EC2Client is the subset of the EC2 API the discoverer calls.
type EC2Client interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
}

// EC2Discoverer walks EC2 inventory and writes resources and edges
// into the topology graph.
type EC2Discoverer struct {
	Client EC2Client
	Graph  *graph.Graph
	Logger *slog.Logger
}

func NewEC2Discoverer(cfg aws.Config, g *graph.Graph, logger *slog.Logger) *EC2Discoverer {
	return &EC2Discoverer{
		Client: ec2.NewFromConfig(cfg),
		Graph:  g,
		Logger: logger,
	}
}

// Discover runs all EC2 scans. Failed scopes are recorded on the graph
// rather than aborting discovery.
func (d *EC2Discoverer) Discover(ctx context.Context) error {
	if err := d.scanInstances(ctx); err != nil {
		d.Graph.AddError("ec2:instances", err)
		d.Logger.Warn("ec2 instance scan failed", "error", err)
	}
	if err := d.scanVolumes(ctx); err != nil {
		d.Graph.AddError("ec2:volumes", err)
		d.Logger.Warn("ec2 volume scan failed", "error", err)
	}
	if err := d.scanSecurityGroups(ctx); err != nil {
		d.Graph.AddError("ec2:security-groups", err)
		d.Logger.Warn("ec2 security group scan failed", "error", err)
	}
	return nil
}

func (d *EC2Discoverer) scanInstances(ctx context.Context) error {
	paginator := ec2.NewDescribeInstancesPaginator(d.Client, &ec2.DescribeInstancesInput{})
	count := 0

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe instances: %v", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				id := aws.ToString(instance.InstanceId)
				if id == "" {
					continue
				}
				count++

				props := map[string]interface{}{
					"State":              string(instance.State.Name),
					"InstanceType":       string(instance.InstanceType),
					"PubliclyAccessible": instance.PublicIpAddress != nil,
				}
				if instance.LaunchTime != nil {
					props["LaunchTime"] = *instance.LaunchTime
				}

				d.Graph.AddResource(id, nameFromTags(instance.Tags, id), "aws_instance", "aws", props)

				if instance.VpcId != nil {
					d.Graph.AddResource(*instance.VpcId, *instance.VpcId, "aws_vpc", "aws", nil)
					d.Graph.AddDependency(id, *instance.VpcId, graph.KindContains, graph.CategoryNetwork, 1.0)
				}
				if instance.SubnetId != nil {
					d.Graph.AddResource(*instance.SubnetId, *instance.SubnetId, "aws_subnet", "aws", nil)
					d.Graph.AddDependency(id, *instance.SubnetId, graph.KindContains, graph.CategoryNetwork, 1.0)
				}
				for _, sg := range instance.SecurityGroups {
					sgID := aws.ToString(sg.GroupId)
					if sgID == "" {
						continue
					}
					d.Graph.AddDependency(id, sgID, graph.KindSecuredBy, graph.CategoryConfiguration, 0.8)
				}
			}
		}
	}

	d.Logger.Info("ec2 instances discovered", "count", count)
	return nil
}

func (d *EC2Discoverer) scanVolumes(ctx context.Context) error {
	paginator := ec2.NewDescribeVolumesPaginator(d.Client, &ec2.DescribeVolumesInput{})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe volumes: %v", err)
		}

		for _, vol := range page.Volumes {
			id := aws.ToString(vol.VolumeId)
			if id == "" {
				continue
			}

			props := map[string]interface{}{
				"State": string(vol.State),
				"Size":  aws.ToInt32(vol.Size),
			}

			d.Graph.AddResource(id, nameFromTags(vol.Tags, id), "aws_ebs_volume", "aws", props)

			// An instance with an attached volume depends on it for data.
			for _, att := range vol.Attachments {
				instID := aws.ToString(att.InstanceId)
				if instID == "" {
					continue
				}
				d.Graph.AddDependency(instID, id, graph.KindDependsOn, graph.CategoryData, 0.9)
			}
		}
	}
	return nil
}

func (d *EC2Discoverer) scanSecurityGroups(ctx context.Context) error {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(d.Client, &ec2.DescribeSecurityGroupsInput{})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe security groups: %v", err)
		}

		for _, sg := range page.SecurityGroups {
			id := aws.ToString(sg.GroupId)
			if id == "" {
				continue
			}

			open := false
			for _, perm := range sg.IpPermissions {
				for _, r := range perm.IpRanges {
					if aws.ToString(r.CidrIp) == "0.0.0.0/0" {
						open = true
					}
				}
			}

			d.Graph.AddResource(id, aws.ToString(sg.GroupName), "aws_security_group", "aws", map[string]interface{}{
				"PubliclyAccessible": open,
			})
		}
	}
	return nil
}

func nameFromTags(tags []types.Tag, fallback string) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == "Name" {
			return aws.ToString(t.Value)
		}
	}
	return fallback
}
