package cfn

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// NewClient builds a CloudFormation client from the SDK default credential
// and region chain. A non-empty region overrides the chain.
func NewClient(ctx context.Context, region string) (*cloudformation.Client, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	return cloudformation.NewFromConfig(cfg), nil
}
