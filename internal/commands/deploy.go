package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/deploy"
	"github.com/gdk-cli/gdk/internal/publish"
)

// DeployOptions contains options for the deploy command
type DeployOptions struct {
	config.DeployArgs

	// Timeout bounds status monitoring; zero means the default.
	Timeout time.Duration
	// Interval is the status poll interval; zero means the default.
	Interval time.Duration
}

// Deploy deploys the project's component version to the configured target
func (c *Controller) Deploy(ctx context.Context, opts DeployOptions) error {
	project, err := config.LoadProject()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w\n\nRun 'gdk init' to create a project", err)
	}

	cfg, err := config.ResolveDeploy(project, opts.DeployArgs)
	if err != nil {
		return err
	}

	logger := c.logger()
	logger.Debug().
		Str("target", cfg.TargetARN).
		Str("deployment_name", cfg.DeploymentName).
		Str("region", cfg.Region).
		Bool("deployment_policies", cfg.Options.DeploymentPolicies != nil).
		Bool("iot_job_configuration", cfg.Options.IoTJobConfiguration != nil).
		Bool("component_update_policy", cfg.Options.ComponentUpdatePolicy != nil).
		Msg("resolved deploy configuration")

	client, uploader, err := c.connect(cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Region, err)
	}

	publisher := publish.New(cfg.PublishConfig(), client, uploader, logger)
	workflow := deploy.NewWorkflow(cfg, client, publisher,
		deploy.WithLogger(logger),
		deploy.WithClock(c.clock()),
		deploy.WithMonitorConfig(deploy.MonitorConfig{Interval: opts.Interval, Timeout: opts.Timeout}),
	)

	fmt.Fprintf(c.out(), "Deploying %s %s to %s...\n", cfg.ComponentName, cfg.ComponentVersion, cfg.TargetARN)

	report, err := workflow.Run(ctx)
	if err != nil {
		return err
	}

	c.printReport(report)
	return nil
}

func (c *Controller) printReport(r *deploy.Report) {
	out := c.out()
	switch r.Outcome {
	case deploy.OutcomeSucceeded:
		fmt.Fprintf(out, "✅ Deployment %s (%s) completed\n", r.DeploymentName, r.DeploymentID)
	case deploy.OutcomeFailed:
		fmt.Fprintf(out, "❌ Deployment %s (%s) ended with status %s\n", r.DeploymentName, r.DeploymentID, r.Status)
		if r.FailureReason != "" {
			fmt.Fprintf(out, "   Reason: %s\n", r.FailureReason)
		}
	default:
		fmt.Fprintf(out, "⚠️  Deployment %s (%s) is still %s after %s (monitoring %s); check the console for updates\n",
			r.DeploymentName, r.DeploymentID, statusOrUnknown(r), r.Elapsed.Round(time.Second), r.Outcome)
	}
}

func statusOrUnknown(r *deploy.Report) string {
	if r.Status == "" {
		return "unknown"
	}
	return string(r.Status)
}
