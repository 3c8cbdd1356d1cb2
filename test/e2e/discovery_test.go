//go:build e2e

package e2e

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/require"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
	awsprovider "github.com/MattVerwey/TopDeck-sub004/pkg/providers/aws"
)

func TestEC2DiscoveryAgainstLocalStack(t *testing.T) {
	ctx := context.Background()
	client := ec2.NewFromConfig(awsCfg)

	runOut, err := client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String("ami-12345678"),
		InstanceType: types.InstanceTypeT3Micro,
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags: []types.Tag{
					{Key: aws.String("Name"), Value: aws.String("e2e-web")},
				},
			},
		},
	})
	require.NoError(t, err, "provision instance")
	instanceID := *runOut.Instances[0].InstanceId

	g := graph.NewGraph()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := &awsprovider.EC2Discoverer{Client: client, Graph: g, Logger: logger}
	require.NoError(t, d.Discover(ctx))
	g.CloseAndWait()

	res, err := g.GetResource(instanceID)
	require.NoError(t, err, "discovered instance in graph")
	require.Equal(t, "aws_instance", res.Type)
	require.Equal(t, "e2e-web", res.Name)
	require.False(t, g.Metadata.Partial, "discovery should be complete")
}
