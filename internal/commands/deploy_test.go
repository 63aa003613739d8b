package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/greengrass"
)

// Test plan for Deploy command:
// 1. Test Deploy skips publishing when the version is already published
// 2. Test Deploy publishes first and reports a failed deployment without erroring
// 3. Test command arguments override the config file
// 4. Test configuration errors stop before connecting
// 5. Test connection and creation errors are returned

const testTarget = "arn:aws:iot:us-east-1:123456789012:thing/dev"

func helloComponent() config.ComponentConfig {
	return config.ComponentConfig{
		Author:  "Jane",
		Version: "1.0.0",
		Publish: config.PublishSection{Region: "us-east-1"},
		Deploy:  config.DeploySection{TargetARN: testTarget},
	}
}

func newTestController(client CloudClient, regions *[]string, out *bytes.Buffer) *Controller {
	return &Controller{
		Flags:   &Flags{},
		Connect: connectTo(client, regions),
		Clock:   clockwork.NewFakeClock(),
		Out:     out,
	}
}

func TestController_Deploy_AlreadyPublished(t *testing.T) {
	// Test: a published version goes straight to deployment and monitoring
	inProject(t, "com.example.Hello", helloComponent())

	client := &mockCloudClient{}
	client.On("AccountID", mock.Anything).Return("123456789012", nil)
	client.On("HighestPublishedVersion", mock.Anything, "arn:aws:greengrass:us-east-1:123456789012:components:com.example.Hello").
		Return("1.0.0", true, nil)
	client.On("CreateDeployment", mock.Anything, mock.MatchedBy(func(req greengrass.DeploymentRequest) bool {
		return req.TargetARN == testTarget &&
			req.DeploymentName == "com.example.Hello-1.0.0-deployment" &&
			len(req.Components) == 1 &&
			req.Components["com.example.Hello"].ComponentVersion == "1.0.0"
	})).Return(&greengrass.Deployment{ID: "d-1", Name: "com.example.Hello-1.0.0-deployment"}, nil)
	client.On("DeploymentStatus", mock.Anything, "d-1").
		Return(&greengrass.Deployment{ID: "d-1", Status: greengrass.StatusCompleted}, nil)

	var regions []string
	var out bytes.Buffer
	ctrl := newTestController(client, &regions, &out)

	require.NoError(t, ctrl.Deploy(context.Background(), DeployOptions{}))

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "PublishPrivateComponent", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"us-east-1"}, regions)
	assert.Contains(t, out.String(), "Deploying com.example.Hello 1.0.0 to "+testTarget)
	assert.Contains(t, out.String(), "Deployment com.example.Hello-1.0.0-deployment (d-1) completed")
}

func TestController_Deploy_PublishesFirst(t *testing.T) {
	// Test: an unpublished version is published before the deployment is created
	root := inProject(t, "com.example.Hello", helloComponent())
	writeBuiltRecipe(t, root, "com.example.Hello", "1.0.0")

	var calls []string
	client := &mockCloudClient{}
	client.On("AccountID", mock.Anything).Return("123456789012", nil)
	client.On("HighestPublishedVersion", mock.Anything, mock.Anything).Return("", false, nil)
	client.On("PublishPrivateComponent", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls = append(calls, "publish") }).
		Return(&greengrass.ComponentVersion{Name: "com.example.Hello", Version: "1.0.0"}, nil)
	client.On("CreateDeployment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls = append(calls, "deploy") }).
		Return(&greengrass.Deployment{ID: "d-2", Name: "com.example.Hello-1.0.0-deployment"}, nil)
	client.On("DeploymentStatus", mock.Anything, "d-2").
		Return(&greengrass.Deployment{ID: "d-2", Status: greengrass.StatusFailed, FailureReason: "component crashed"}, nil)

	var regions []string
	var out bytes.Buffer
	ctrl := newTestController(client, &regions, &out)

	require.NoError(t, ctrl.Deploy(context.Background(), DeployOptions{}))

	assert.Equal(t, []string{"publish", "deploy"}, calls)
	client.AssertNumberOfCalls(t, "PublishPrivateComponent", 1)
	assert.Contains(t, out.String(), "ended with status FAILED")
	assert.Contains(t, out.String(), "Reason: component crashed")
}

func TestController_Deploy_ArgumentsOverrideConfig(t *testing.T) {
	// Test: target, name, region and options from the command line win
	inProject(t, "com.example.Hello", helloComponent())
	groupTarget := "arn:aws:iot:eu-west-1:123456789012:thinggroup/fleet"

	client := &mockCloudClient{}
	client.On("AccountID", mock.Anything).Return("123456789012", nil)
	client.On("HighestPublishedVersion", mock.Anything, "arn:aws:greengrass:eu-west-1:123456789012:components:com.example.Hello").
		Return("1.0.0", true, nil)
	client.On("CreateDeployment", mock.Anything, mock.MatchedBy(func(req greengrass.DeploymentRequest) bool {
		return req.TargetARN == groupTarget &&
			req.DeploymentName == "fleet-rollout" &&
			string(req.Policies) == `{"failureHandlingPolicy":"ROLLBACK"}` &&
			req.IoTJobConfiguration == nil &&
			req.ComponentUpdatePolicy == nil
	})).Return(&greengrass.Deployment{ID: "d-3", Name: "fleet-rollout"}, nil)
	client.On("DeploymentStatus", mock.Anything, "d-3").
		Return(&greengrass.Deployment{ID: "d-3", Status: greengrass.StatusCompleted}, nil)

	var regions []string
	var out bytes.Buffer
	ctrl := newTestController(client, &regions, &out)

	err := ctrl.Deploy(context.Background(), DeployOptions{
		DeployArgs: config.DeployArgs{
			TargetARN:      groupTarget,
			DeploymentName: "fleet-rollout",
			Region:         "eu-west-1",
			Options:        `{"deployment_policies": {"failureHandlingPolicy":"ROLLBACK"}}`,
		},
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
	assert.Equal(t, []string{"eu-west-1"}, regions)
}

func TestController_Deploy_ConfigErrors(t *testing.T) {
	t.Run("no project", func(t *testing.T) {
		tmpDir := t.TempDir()
		oldPwd, _ := os.Getwd()
		defer os.Chdir(oldPwd)
		require.NoError(t, os.Chdir(tmpDir))

		var regions []string
		err := newTestController(&mockCloudClient{}, &regions, &bytes.Buffer{}).Deploy(context.Background(), DeployOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrProjectNotFound)
		assert.Contains(t, err.Error(), "gdk init")
		assert.Empty(t, regions)
	})

	t.Run("missing target", func(t *testing.T) {
		component := helloComponent()
		component.Deploy.TargetARN = ""
		inProject(t, "com.example.Hello", component)

		var regions []string
		err := newTestController(&mockCloudClient{}, &regions, &bytes.Buffer{}).Deploy(context.Background(), DeployOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrMissingTarget)

		var cfgErr *config.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "Target ARN", cfgErr.Field)
		assert.Empty(t, regions)
	})
}

func TestController_Deploy_Errors(t *testing.T) {
	t.Run("connect failure", func(t *testing.T) {
		inProject(t, "com.example.Hello", helloComponent())
		ctrl := &Controller{
			Connect: func(region string, _ zerolog.Logger) (CloudClient, s3manageriface.UploaderAPI, error) {
				return nil, nil, errors.New("no credentials")
			},
			Out: &bytes.Buffer{},
		}

		err := ctrl.Deploy(context.Background(), DeployOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to us-east-1")
	})

	t.Run("create deployment failure", func(t *testing.T) {
		inProject(t, "com.example.Hello", helloComponent())

		client := &mockCloudClient{}
		client.On("AccountID", mock.Anything).Return("123456789012", nil)
		client.On("HighestPublishedVersion", mock.Anything, mock.Anything).Return("1.0.0", true, nil)
		client.On("CreateDeployment", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDeniedException"))

		var regions []string
		err := newTestController(client, &regions, &bytes.Buffer{}).Deploy(context.Background(), DeployOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AccessDeniedException")
		client.AssertNotCalled(t, "DeploymentStatus", mock.Anything, mock.Anything)
	})
}
