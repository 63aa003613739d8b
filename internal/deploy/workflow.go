// Package deploy runs the component deploy workflow: make sure the configured
// version is published, create the deployment, then watch it until it ends.
package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/greengrass"
)

const (
	DefaultPollInterval   = 30 * time.Second
	DefaultMonitorTimeout = 10 * time.Minute
)

// Client is the subset of the cloud API the workflow calls.
type Client interface {
	AccountID(ctx context.Context) (string, error)
	HighestPublishedVersion(ctx context.Context, componentARN string) (string, bool, error)
	CreateDeployment(ctx context.Context, req greengrass.DeploymentRequest) (*greengrass.Deployment, error)
	DeploymentStatus(ctx context.Context, deploymentID string) (*greengrass.Deployment, error)
}

// Publisher publishes the project's component version.
type Publisher interface {
	Publish(ctx context.Context) error
}

// MonitorConfig bounds the status polling loop.
type MonitorConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultMonitorConfig returns the default polling configuration
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval: DefaultPollInterval,
		Timeout:  DefaultMonitorTimeout,
	}
}

// Workflow deploys one component version to one target.
type Workflow struct {
	config    *config.DeployConfig
	client    Client
	publisher Publisher
	clock     clockwork.Clock
	monitor   MonitorConfig
	logger    zerolog.Logger
}

// NewWorkflow creates a workflow for cfg.
func NewWorkflow(cfg *config.DeployConfig, client Client, publisher Publisher, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		config:    cfg,
		client:    client,
		publisher: publisher,
		clock:     clockwork.NewRealClock(),
		monitor:   DefaultMonitorConfig(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().
		Str("component", cfg.ComponentName).
		Str("version", cfg.ComponentVersion).
		Logger()
	return w
}

// Run executes ensure-published, create-deployment and monitor in order.
// Only the first two phases can fail the run; the monitoring outcome is
// carried in the report.
func (w *Workflow) Run(ctx context.Context) (*Report, error) {
	if _, err := w.EnsurePublished(ctx); err != nil {
		return nil, w.fail(err)
	}

	deployment, err := w.CreateDeployment(ctx)
	if err != nil {
		return nil, w.fail(err)
	}

	report := w.Monitor(ctx, deployment.ID)
	if report.DeploymentName == "" {
		report.DeploymentName = deployment.Name
	}
	return report, nil
}

func (w *Workflow) fail(err error) error {
	w.logger.Error().
		Err(err).
		Str("target", w.config.TargetARN).
		Msg("failed to deploy the component")
	return fmt.Errorf("failed to deploy version %s of %s to %s: %w",
		w.config.ComponentVersion, w.config.ComponentName, w.config.TargetARN, err)
}

type lookupKind int

const (
	lookupFound lookupKind = iota
	lookupNotFound
	lookupFailed
)

// lookup is the outcome of asking the cloud which version is published.
type lookup struct {
	kind    lookupKind
	version string
	err     error
}

func (w *Workflow) lookupPublished(ctx context.Context) lookup {
	account, err := w.client.AccountID(ctx)
	if err != nil {
		return lookup{kind: lookupFailed, err: err}
	}

	arn := greengrass.ComponentARN(w.config.Region, account, w.config.ComponentName)
	version, found, err := w.client.HighestPublishedVersion(ctx, arn)
	switch {
	case err != nil:
		return lookup{kind: lookupFailed, err: err}
	case !found:
		return lookup{kind: lookupNotFound}
	default:
		return lookup{kind: lookupFound, version: version}
	}
}

// EnsurePublished publishes the component unless the highest published
// version equals the configured one. A failed lookup counts as unpublished.
// The bool reports whether a publish was attempted.
func (w *Workflow) EnsurePublished(ctx context.Context) (bool, error) {
	w.logger.Debug().Msg("checking if the component version is published")

	l := w.lookupPublished(ctx)
	switch l.kind {
	case lookupFound:
		if l.version == w.config.ComponentVersion {
			w.logger.Info().Msg("component version is already published")
			return false, nil
		}
		w.logger.Warn().
			Str("latest_version", l.version).
			Msg("component version does not match the latest published version, publishing it before deploying")
	case lookupNotFound:
		w.logger.Warn().Msg("component is not published, publishing it before deploying")
	case lookupFailed:
		w.logger.Warn().
			Err(l.err).
			Msg("could not verify if the component version is published, publishing it before deploying")
	}

	if err := w.publisher.Publish(ctx); err != nil {
		return true, fmt.Errorf("failed to publish %s %s: %w", w.config.ComponentName, w.config.ComponentVersion, err)
	}
	return true, nil
}

// CreateDeployment submits a deployment of the single configured component.
func (w *Workflow) CreateDeployment(ctx context.Context) (*greengrass.Deployment, error) {
	cfg := w.config
	w.logger.Info().Str("target", cfg.TargetARN).Msg("deploying component")

	req := greengrass.DeploymentRequest{
		TargetARN: cfg.TargetARN,
		Components: map[string]greengrass.ComponentSpec{
			cfg.ComponentName: {ComponentVersion: cfg.ComponentVersion},
		},
		DeploymentName:        cfg.DeploymentName,
		Policies:              cfg.Options.DeploymentPolicies,
		IoTJobConfiguration:   cfg.Options.IoTJobConfiguration,
		ComponentUpdatePolicy: cfg.Options.ComponentUpdatePolicy,
	}

	deployment, err := w.client.CreateDeployment(ctx, req)
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("target", cfg.TargetARN).
			Str("deployment_name", cfg.DeploymentName).
			Msg("failed to create deployment")
		return nil, fmt.Errorf("failed to create deployment %s: %w", cfg.DeploymentName, err)
	}

	w.logger.Info().
		Str("deployment_name", deployment.Name).
		Str("deployment_id", deployment.ID).
		Msg("successfully created deployment")

	return deployment, nil
}

// Monitor polls the deployment every interval until it reaches a terminal
// state, the timeout elapses, a fetch fails, or ctx is done. None of these
// is an error; the report says which one happened.
func (w *Workflow) Monitor(ctx context.Context, deploymentID string) *Report {
	logger := w.logger.With().Str("deployment_id", deploymentID).Logger()
	logger.Info().Msg("monitoring deployment status")

	report := &Report{DeploymentID: deploymentID}
	start := w.clock.Now()

	for {
		deployment, err := w.client.DeploymentStatus(ctx, deploymentID)
		report.Polls++
		report.Elapsed = w.clock.Since(start)
		if err != nil {
			logger.Error().Err(err).Msg("error monitoring deployment status")
			report.Outcome = OutcomeErrored
			report.Err = err
			return report
		}

		report.Status = deployment.Status
		report.DeploymentName = deployment.Name
		report.FailureReason = deployment.FailureReason
		logger.Info().Str("status", string(deployment.Status)).Msg("deployment status")

		if deployment.Status.Terminal() {
			if deployment.Status == greengrass.StatusCompleted {
				logger.Info().Msg("deployment completed successfully")
				report.Outcome = OutcomeSucceeded
				return report
			}

			event := logger.Error().Str("status", string(deployment.Status))
			if deployment.FailureReason != "" {
				event = event.Str("failure_reason", deployment.FailureReason)
			}
			event.Msg("deployment ended without completing")
			report.Outcome = OutcomeFailed
			return report
		}

		if report.Elapsed > w.monitor.Timeout {
			logger.Warn().
				Dur("timeout", w.monitor.Timeout).
				Msg("deployment monitoring timed out, the deployment may still be in progress; check the console for updates")
			report.Outcome = OutcomeTimedOut
			return report
		}

		select {
		case <-ctx.Done():
			logger.Warn().Err(ctx.Err()).Msg("deployment monitoring interrupted, the deployment may still be in progress")
			report.Outcome = OutcomeInterrupted
			return report
		case <-w.clock.After(w.monitor.Interval):
		}
	}
}
