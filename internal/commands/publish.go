package commands

import (
	"context"
	"fmt"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/publish"
)

// PublishOptions contains options for the publish command
type PublishOptions struct {
	Region string
}

// Publish creates a private component version from the project's build output
func (c *Controller) Publish(ctx context.Context, opts PublishOptions) error {
	project, err := config.LoadProject()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w\n\nRun 'gdk init' to create a project", err)
	}

	cfg, err := config.ResolvePublish(project, opts.Region)
	if err != nil {
		return err
	}

	client, uploader, err := c.connect(cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Region, err)
	}

	fmt.Fprintf(c.out(), "Publishing %s %s...\n", cfg.ComponentName, cfg.ComponentVersion)
	if err := publish.New(cfg, client, uploader, c.logger()).Publish(ctx); err != nil {
		return err
	}

	fmt.Fprintf(c.out(), "✅ Published %s %s\n", cfg.ComponentName, cfg.ComponentVersion)
	return nil
}
