// Package publish creates a private component version from the build output
// of a project.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gdk-cli/gdk/internal/config"
	"github.com/gdk-cli/gdk/internal/greengrass"
)

// BuildDir is the directory the build step writes recipes and artifacts to.
const BuildDir = "greengrass-build"

var (
	ErrRecipeNotFound = errors.New("no built recipe found")
	ErrRecipeMismatch = errors.New("built recipe does not match the configured component")
)

// Client is the subset of the cloud API publishing needs.
type Client interface {
	AccountID(ctx context.Context) (string, error)
	PublishPrivateComponent(ctx context.Context, recipePath string) (*greengrass.ComponentVersion, error)
}

// Publisher uploads the component's artifacts and creates the component version.
type Publisher struct {
	config   *config.PublishConfig
	client   Client
	uploader s3manageriface.UploaderAPI
	logger   zerolog.Logger
}

// New creates a publisher. uploader may be nil when no bucket is configured.
func New(cfg *config.PublishConfig, client Client, uploader s3manageriface.UploaderAPI, logger zerolog.Logger) *Publisher {
	return &Publisher{
		config:   cfg,
		client:   client,
		uploader: uploader,
		logger: logger.With().
			Str("component", cfg.ComponentName).
			Str("version", cfg.ComponentVersion).
			Logger(),
	}
}

// NewUploader creates an S3 uploader for sess.
func NewUploader(sess *session.Session) s3manageriface.UploaderAPI {
	return s3manager.NewUploader(sess)
}

// Publish implements deploy.Publisher.
func (p *Publisher) Publish(ctx context.Context) error {
	recipe, err := p.findRecipe()
	if err != nil {
		return err
	}
	if err := p.checkRecipe(recipe); err != nil {
		return err
	}

	if p.config.Bucket != "" && p.uploader != nil {
		if err := p.uploadArtifacts(ctx); err != nil {
			return err
		}
	}

	cv, err := p.client.PublishPrivateComponent(ctx, recipe)
	if err != nil {
		return fmt.Errorf("failed to publish component: %w", err)
	}

	p.logger.Info().Str("arn", cv.ARN).Str("state", cv.Status).Msg("published component")
	return nil
}

func (p *Publisher) buildPath(elem ...string) string {
	return filepath.Join(append([]string{p.config.ProjectRoot, BuildDir}, elem...)...)
}

// findRecipe prefers <name>-<version>.{json,yaml,yml} and falls back to the
// only file in the recipes directory.
func (p *Publisher) findRecipe() (string, error) {
	dir := p.buildPath("recipes")
	base := p.config.ComponentName + "-" + p.config.ComponentVersion
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := filepath.Join(dir, base+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w in %s: %v (build the component first)", ErrRecipeNotFound, dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) != 1 {
		return "", fmt.Errorf("%w in %s: expected %s.json or a single recipe, found %d files", ErrRecipeNotFound, dir, base, len(files))
	}
	return files[0], nil
}

type recipeHeader struct {
	ComponentName    string `yaml:"ComponentName"`
	ComponentVersion string `yaml:"ComponentVersion"`
}

func (p *Publisher) checkRecipe(recipePath string) error {
	data, err := os.ReadFile(recipePath)
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}

	var header recipeHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("failed to parse recipe %s: %w", recipePath, err)
	}

	if header.ComponentName != p.config.ComponentName || header.ComponentVersion != p.config.ComponentVersion {
		return fmt.Errorf("%w: %s declares %s %s, want %s %s", ErrRecipeMismatch, recipePath,
			header.ComponentName, header.ComponentVersion, p.config.ComponentName, p.config.ComponentVersion)
	}
	return nil
}

// BucketName returns the account and region scoped artifact bucket.
func BucketName(bucket, region, accountID string) string {
	return fmt.Sprintf("%s-%s-%s", bucket, region, accountID)
}

func (p *Publisher) uploadArtifacts(ctx context.Context) error {
	dir := p.buildPath("artifacts", p.config.ComponentName, p.config.ComponentVersion)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		p.logger.Debug().Str("dir", dir).Msg("no artifacts to upload")
		return nil
	}

	account, err := p.client.AccountID(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve artifact bucket: %w", err)
	}
	bucket := BucketName(p.config.Bucket, p.config.Region, account)
	prefix := path.Join(p.config.ComponentName, p.config.ComponentVersion)

	return filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		key := path.Join(prefix, filepath.ToSlash(rel))

		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open artifact: %w", err)
		}
		defer f.Close()

		if _, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			p.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("failed to upload artifact")
			return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", rel, bucket, key, err)
		}

		p.logger.Info().Str("bucket", bucket).Str("key", key).Msg("uploaded artifact")
		return nil
	})
}
