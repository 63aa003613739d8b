package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/greengrass"
)

type mockCloudClient struct {
	mock.Mock
}

func (m *mockCloudClient) AccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockCloudClient) HighestPublishedVersion(ctx context.Context, componentARN string) (string, bool, error) {
	args := m.Called(ctx, componentARN)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockCloudClient) PublishPrivateComponent(ctx context.Context, recipePath string) (*greengrass.ComponentVersion, error) {
	args := m.Called(ctx, recipePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrass.ComponentVersion), args.Error(1)
}

func (m *mockCloudClient) CreateDeployment(ctx context.Context, req greengrass.DeploymentRequest) (*greengrass.Deployment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrass.Deployment), args.Error(1)
}

func (m *mockCloudClient) DeploymentStatus(ctx context.Context, deploymentID string) (*greengrass.Deployment, error) {
	args := m.Called(ctx, deploymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*greengrass.Deployment), args.Error(1)
}

// connectTo returns a Connector that hands out client and records the region.
func connectTo(client CloudClient, regions *[]string) Connector {
	return func(region string, _ zerolog.Logger) (CloudClient, s3manageriface.UploaderAPI, error) {
		*regions = append(*regions, region)
		return client, nil, nil
	}
}

// inProject writes a gdk-config.json holding component and changes into its directory.
func inProject(t *testing.T, name string, component config.ComponentConfig) string {
	t.Helper()
	tmpDir := t.TempDir()

	data, err := json.Marshal(config.Project{Components: map[string]config.ComponentConfig{name: component}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, config.FileName), data, 0644))

	oldPwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldPwd) })
	require.NoError(t, os.Chdir(tmpDir))
	return tmpDir
}

// writeBuiltRecipe stands in for the build step.
func writeBuiltRecipe(t *testing.T, root, name, version string) {
	t.Helper()
	dir := filepath.Join(root, "greengrass-build", "recipes")
	require.NoError(t, os.MkdirAll(dir, 0755))
	recipe := "ComponentName: " + name + "\nComponentVersion: \"" + version + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+"-"+version+".yaml"), []byte(recipe), 0644))
}
