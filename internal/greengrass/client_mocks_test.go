package greengrass

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/greengrassv2"
	"github.com/aws/aws-sdk-go/service/greengrassv2/greengrassv2iface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/stretchr/testify/mock"
)

// Mock implementations of the SDK service interfaces. Only the methods the
// client calls are overridden; anything else panics through the nil embed.
type mockGreengrassAPI struct {
	greengrassv2iface.GreengrassV2API
	mock.Mock
}

func (m *mockGreengrassAPI) ListComponentVersionsWithContext(ctx aws.Context, in *greengrassv2.ListComponentVersionsInput, _ ...request.Option) (*greengrassv2.ListComponentVersionsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrassv2.ListComponentVersionsOutput), args.Error(1)
}

func (m *mockGreengrassAPI) CreateComponentVersionWithContext(ctx aws.Context, in *greengrassv2.CreateComponentVersionInput, _ ...request.Option) (*greengrassv2.CreateComponentVersionOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrassv2.CreateComponentVersionOutput), args.Error(1)
}

func (m *mockGreengrassAPI) CreateDeploymentWithContext(ctx aws.Context, in *greengrassv2.CreateDeploymentInput, _ ...request.Option) (*greengrassv2.CreateDeploymentOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrassv2.CreateDeploymentOutput), args.Error(1)
}

func (m *mockGreengrassAPI) GetDeploymentWithContext(ctx aws.Context, in *greengrassv2.GetDeploymentInput, _ ...request.Option) (*greengrassv2.GetDeploymentOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrassv2.GetDeploymentOutput), args.Error(1)
}

func (m *mockGreengrassAPI) ListEffectiveDeploymentsWithContext(ctx aws.Context, in *greengrassv2.ListEffectiveDeploymentsInput, _ ...request.Option) (*greengrassv2.ListEffectiveDeploymentsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrassv2.ListEffectiveDeploymentsOutput), args.Error(1)
}

type mockSTSAPI struct {
	stsiface.STSAPI
	mock.Mock
}

func (m *mockSTSAPI) GetCallerIdentityWithContext(ctx aws.Context, in *sts.GetCallerIdentityInput, _ ...request.Option) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sts.GetCallerIdentityOutput), args.Error(1)
}
