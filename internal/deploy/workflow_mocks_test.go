package deploy

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gdk-cli/gdk/internal/greengrass"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) AccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockClient) HighestPublishedVersion(ctx context.Context, componentARN string) (string, bool, error) {
	args := m.Called(ctx, componentARN)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockClient) CreateDeployment(ctx context.Context, req greengrass.DeploymentRequest) (*greengrass.Deployment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrass.Deployment), args.Error(1)
}

func (m *mockClient) DeploymentStatus(ctx context.Context, deploymentID string) (*greengrass.Deployment, error) {
	args := m.Called(ctx, deploymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrass.Deployment), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
