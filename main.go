package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gdk-cli/gdk/internal/commands"
	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/deploy"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "gdk",
		Usage:   "Create, publish and deploy Greengrass components",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("GDK_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			ctrl.Flags.LogLevel = c.String("log-level")
			level, err := zerolog.ParseLevel(ctrl.Flags.LogLevel)
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a new component project",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:  "component",
				Usage: "Publish and deploy the project's component",
				Commands: []*cli.Command{
					{
						Name:  "publish",
						Usage: "Create a private component version from the build output",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "region",
								Usage: "AWS region, overrides the publish region in " + config.FileName,
							},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							return ctrl.Publish(ctx, commands.PublishOptions{
								Region: c.String("region"),
							})
						},
					},
					{
						Name:  "deploy",
						Usage: "Deploy the component version to a core device or thing group",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "target-arn",
								Aliases: []string{"t"},
								Usage:   "ARN of the core device or thing group to deploy to",
							},
							&cli.StringFlag{
								Name:    "deployment-name",
								Aliases: []string{"n"},
								Usage:   "name of the deployment",
							},
							&cli.StringFlag{
								Name:    "region",
								Aliases: []string{"r"},
								Usage:   "AWS region of the target",
							},
							&cli.StringFlag{
								Name:    "options",
								Aliases: []string{"o"},
								Usage:   "deployment options as a JSON file path or a JSON string",
							},
							&cli.DurationFlag{
								Name:  "timeout",
								Usage: "how long to monitor the deployment status",
								Value: deploy.DefaultMonitorTimeout,
							},
							&cli.DurationFlag{
								Name:  "interval",
								Usage: "time between deployment status checks",
								Value: deploy.DefaultPollInterval,
							},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							return ctrl.Deploy(ctx, commands.DeployOptions{
								DeployArgs: config.DeployArgs{
									TargetARN:      c.String("target-arn"),
									DeploymentName: c.String("deployment-name"),
									Region:         c.String("region"),
									Options:        c.String("options"),
								},
								Timeout:  c.Duration("timeout"),
								Interval: c.Duration("interval"),
							})
						},
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		log.Fatal().Err(err).Msg("failed to run gdk")
	}
}
