// Package greengrass wraps the Greengrass V2 and STS APIs used by the deploy workflow.
package greengrass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/greengrassv2"
	"github.com/aws/aws-sdk-go/service/greengrassv2/greengrassv2iface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is a thin call wrapper around the managed service. It never retries;
// every failure is logged with the operation's context and returned.
type Client struct {
	api    greengrassv2iface.GreengrassV2API
	sts    stsiface.STSAPI
	logger zerolog.Logger
}

// NewSession creates an AWS session pinned to region. Credentials come from
// the SDK's default chain, including the shared config file.
func NewSession(region string) (*session.Session, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(region)},
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session for region %s: %w", region, err)
	}
	return sess, nil
}

// NewClient creates a client backed by the real service endpoints of sess.
func NewClient(sess *session.Session, logger zerolog.Logger) *Client {
	return New(greengrassv2.New(sess), sts.New(sess), logger)
}

// New creates a client from explicit service interfaces.
func New(api greengrassv2iface.GreengrassV2API, stsAPI stsiface.STSAPI, logger zerolog.Logger) *Client {
	return &Client{
		api:    api,
		sts:    stsAPI,
		logger: logger.With().Str("client", "greengrassv2").Logger(),
	}
}

// AccountID returns the account of the calling credentials.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to get caller identity")
		return "", fmt.Errorf("failed to get account ID: %w", err)
	}
	return aws.StringValue(out.Account), nil
}

// HighestPublishedVersion returns the first version listed for the component,
// relying on the service ordering newest first. The bool is false when the
// component has no versions.
func (c *Client) HighestPublishedVersion(ctx context.Context, componentARN string) (string, bool, error) {
	if componentARN == "" {
		return "", false, ErrEmptyComponentARN
	}

	out, err := c.api.ListComponentVersionsWithContext(ctx, &greengrassv2.ListComponentVersionsInput{
		Arn: aws.String(componentARN),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("component_arn", componentARN).Msg("error while getting the component versions")
		return "", false, fmt.Errorf("failed to list versions of %s: %w", componentARN, err)
	}

	if len(out.ComponentVersions) == 0 || out.ComponentVersions[0] == nil {
		return "", false, nil
	}
	return aws.StringValue(out.ComponentVersions[0].ComponentVersion), true, nil
}

// PublishPrivateComponent creates a private component version from the
// recipe at recipePath. The file contents are sent unmodified.
func (c *Client) PublishPrivateComponent(ctx context.Context, recipePath string) (*ComponentVersion, error) {
	recipe, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", recipePath, err)
	}
	if len(recipe) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRecipe, recipePath)
	}

	out, err := c.api.CreateComponentVersionWithContext(ctx, &greengrassv2.CreateComponentVersionInput{
		ClientToken:  aws.String(uuid.NewString()),
		InlineRecipe: recipe,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("recipe", recipePath).Msg("failed to create a private version of the component")
		return nil, fmt.Errorf("failed to create component version from %s: %w", recipePath, err)
	}

	cv := &ComponentVersion{
		ARN:     aws.StringValue(out.Arn),
		Name:    aws.StringValue(out.ComponentName),
		Version: aws.StringValue(out.ComponentVersion),
	}
	if out.Status != nil {
		cv.Status = aws.StringValue(out.Status.ComponentState)
	}

	c.logger.Info().
		Str("name", cv.Name).
		Str("version", cv.Version).
		Msg("created private component version")

	return cv, nil
}

// CreateDeployment creates a deployment for req. Optional fields absent from
// req are not sent.
func (c *Client) CreateDeployment(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	input, err := buildDeploymentInput(req)
	if err != nil {
		return nil, err
	}

	out, err := c.api.CreateDeploymentWithContext(ctx, input)
	if err != nil {
		c.logger.Error().Err(err).Str("target", req.TargetARN).Msg("failed to create deployment")
		return nil, fmt.Errorf("failed to create deployment for %s: %w", req.TargetARN, err)
	}

	d := &Deployment{
		ID:        aws.StringValue(out.DeploymentId),
		Name:      req.DeploymentName,
		TargetARN: req.TargetARN,
	}

	name := d.Name
	if name == "" {
		name = "Unnamed"
	}
	c.logger.Info().
		Str("deployment_name", name).
		Str("deployment_id", d.ID).
		Str("target", d.TargetARN).
		Msg("created deployment")

	return d, nil
}

// DeploymentStatus fetches the current state of a deployment. For failed
// deployments to a single core device the failure reason is looked up on a
// best-effort basis.
func (c *Client) DeploymentStatus(ctx context.Context, deploymentID string) (*Deployment, error) {
	if deploymentID == "" {
		return nil, ErrEmptyDeploymentID
	}

	out, err := c.api.GetDeploymentWithContext(ctx, &greengrassv2.GetDeploymentInput{
		DeploymentId: aws.String(deploymentID),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("deployment_id", deploymentID).Msg("failed to get deployment status")
		return nil, fmt.Errorf("failed to get deployment %s: %w", deploymentID, err)
	}

	d := &Deployment{
		ID:        aws.StringValue(out.DeploymentId),
		Name:      aws.StringValue(out.DeploymentName),
		TargetARN: aws.StringValue(out.TargetArn),
		Status:    DeploymentStatus(aws.StringValue(out.DeploymentStatus)),
	}
	if d.ID == "" {
		d.ID = deploymentID
	}

	if d.Status == StatusFailed {
		d.FailureReason = c.failureReason(ctx, d)
	}
	return d, nil
}

func (c *Client) failureReason(ctx context.Context, d *Deployment) string {
	thing, ok := CoreDeviceName(d.TargetARN)
	if !ok {
		return ""
	}

	input := &greengrassv2.ListEffectiveDeploymentsInput{CoreDeviceThingName: aws.String(thing)}
	for {
		out, err := c.api.ListEffectiveDeploymentsWithContext(ctx, input)
		if err != nil {
			c.logger.Debug().Err(err).Str("core_device", thing).Msg("could not look up failure reason")
			return ""
		}
		for _, ed := range out.EffectiveDeployments {
			if ed != nil && aws.StringValue(ed.DeploymentId) == d.ID {
				return aws.StringValue(ed.Reason)
			}
		}
		if aws.StringValue(out.NextToken) == "" {
			return ""
		}
		input.NextToken = out.NextToken
	}
}

func buildDeploymentInput(req DeploymentRequest) (*greengrassv2.CreateDeploymentInput, error) {
	if req.TargetARN == "" {
		return nil, ErrEmptyTarget
	}
	if len(req.Components) == 0 {
		return nil, ErrNoComponents
	}

	components := make(map[string]*greengrassv2.ComponentDeploymentSpecification, len(req.Components))
	for name, spec := range req.Components {
		components[name] = &greengrassv2.ComponentDeploymentSpecification{
			ComponentVersion: aws.String(spec.ComponentVersion),
		}
	}

	input := &greengrassv2.CreateDeploymentInput{
		ClientToken: aws.String(uuid.NewString()),
		TargetArn:   aws.String(req.TargetARN),
		Components:  components,
	}

	if req.DeploymentName != "" {
		input.DeploymentName = aws.String(req.DeploymentName)
	}

	if len(req.Policies) > 0 {
		var policies greengrassv2.DeploymentPolicies
		if err := decodeDocument(req.Policies, &policies); err != nil {
			return nil, fmt.Errorf("invalid deployment policies: %w", err)
		}
		input.DeploymentPolicies = &policies
	}

	// The service nests the component update policy inside the deployment
	// policies; a separately supplied one takes precedence.
	if len(req.ComponentUpdatePolicy) > 0 {
		var update greengrassv2.DeploymentComponentUpdatePolicy
		if err := decodeDocument(req.ComponentUpdatePolicy, &update); err != nil {
			return nil, fmt.Errorf("invalid component update policy: %w", err)
		}
		if input.DeploymentPolicies == nil {
			input.DeploymentPolicies = &greengrassv2.DeploymentPolicies{}
		}
		input.DeploymentPolicies.ComponentUpdatePolicy = &update
	}

	if len(req.IoTJobConfiguration) > 0 {
		var job greengrassv2.DeploymentIoTJobConfiguration
		if err := decodeDocument(req.IoTJobConfiguration, &job); err != nil {
			return nil, fmt.Errorf("invalid IoT job configuration: %w", err)
		}
		input.IotJobConfiguration = &job
	}

	return input, nil
}

// decodeDocument decodes an option document into an SDK struct. Keys the
// struct does not know are an error so that nothing supplied is dropped.
func decodeDocument(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
