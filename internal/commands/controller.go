// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gdk-cli/gdk/internal/deploy"
	"github.com/gdk-cli/gdk/internal/greengrass"
	"github.com/gdk-cli/gdk/internal/publish"
)

type Flags struct {
	LogLevel string
}

// CloudClient is everything the commands call on the cloud adapter.
type CloudClient interface {
	deploy.Client
	PublishPrivateComponent(ctx context.Context, recipePath string) (*greengrass.ComponentVersion, error)
}

// Connector opens the cloud services for a region.
type Connector func(region string, logger zerolog.Logger) (CloudClient, s3manageriface.UploaderAPI, error)

// ConnectAWS connects to the real AWS endpoints using the default credential chain.
func ConnectAWS(region string, logger zerolog.Logger) (CloudClient, s3manageriface.UploaderAPI, error) {
	sess, err := greengrass.NewSession(region)
	if err != nil {
		return nil, nil, err
	}
	return greengrass.NewClient(sess, logger), publish.NewUploader(sess), nil
}

type Controller struct {
	Flags *Flags

	// Connect defaults to ConnectAWS.
	Connect Connector
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Out receives the command summaries; defaults to stdout.
	Out io.Writer
}

func (c *Controller) connect(region string) (CloudClient, s3manageriface.UploaderAPI, error) {
	if c.Connect != nil {
		return c.Connect(region, c.logger())
	}
	return ConnectAWS(region, c.logger())
}

func (c *Controller) clock() clockwork.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return clockwork.NewRealClock()
}

func (c *Controller) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Controller) logger() zerolog.Logger {
	return log.Logger
}
