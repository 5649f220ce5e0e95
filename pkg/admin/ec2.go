package admin

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
)

// EC2DescribeInstancesAPI is the subset of the EC2 client used to look up broker instances.
type EC2DescribeInstancesAPI interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2.DescribeInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeInstancesOutput, error)
}

// NewEC2Client returns an EC2 client built from the default AWS config chain.
func NewEC2Client(ctx context.Context) (EC2DescribeInstancesAPI, error) {
	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ec2.NewFromConfig(awsConfig), nil
}

// EnrichWithInstances fills in the instance ID, instance type and availability zone of the
// brokers whose host is the private IP of an EC2 instance. Brokers without a matching
// instance are left untouched. If a broker has no rack, its availability zone is used
// instead so that rack-aware costs still see the failure domain.
func EnrichWithInstances(
	ctx context.Context,
	api EC2DescribeInstancesAPI,
	brokers []BrokerInfo,
) error {
	if api == nil || len(brokers) == 0 {
		return nil
	}

	ips := []string{}
	for _, broker := range brokers {
		ips = append(ips, broker.Host)
	}

	instances, err := getInstances(ctx, api, ips)
	if err != nil {
		return err
	}

	for b := range brokers {
		instance, ok := instances[brokers[b].Host]
		if !ok {
			continue
		}

		brokers[b].InstanceID = aws.ToString(instance.InstanceId)
		brokers[b].InstanceType = string(instance.InstanceType)
		if instance.Placement != nil {
			brokers[b].AvailabilityZone = aws.ToString(instance.Placement.AvailabilityZone)
		}
		if brokers[b].Rack == "" {
			brokers[b].Rack = brokers[b].AvailabilityZone
		}
	}

	return nil
}

func getInstances(
	ctx context.Context,
	api EC2DescribeInstancesAPI,
	ips []string,
) (map[string]types.Instance, error) {
	instancesMap := map[string]types.Instance{}

	ipsMap := map[string]struct{}{}
	for _, ip := range ips {
		ipsMap[ip] = struct{}{}
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("private-ip-address"),
				Values: ips,
			},
		},
	}

	for {
		resp, err := api.DescribeInstances(ctx, input)
		if err != nil {
			return instancesMap, err
		}

		for _, reservation := range resp.Reservations {
			for _, instance := range reservation.Instances {
				for _, networkInterface := range instance.NetworkInterfaces {
					privateIP := aws.ToString(networkInterface.PrivateIpAddress)

					if _, ok := ipsMap[privateIP]; ok {
						instancesMap[privateIP] = instance
					}
				}
			}
		}

		if aws.ToString(resp.NextToken) == "" {
			break
		}
		input.NextToken = resp.NextToken
	}

	log.Debugf("Found %d EC2 instances for %d broker hosts", len(instancesMap), len(ips))
	return instancesMap, nil
}
