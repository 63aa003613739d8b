package commands

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/semver/v3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/gdk-cli/gdk/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

const defaultRegion = "us-east-1"

type InitOptions struct {
	ComponentName string
	Author        string
	Version       string
	Bucket        string
	Region        string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

type InitCommand struct {
	filesystem  FileSystem
	templatesFS fs.FS
	out         io.Writer
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem:  &osFileSystem{},
		templatesFS: templatesFS,
		out:         os.Stdout,
	}
}

func (c *Controller) Init(ctx context.Context) error {
	return c.initCommand().Run(ctx)
}

func (c *Controller) initCommand() *InitCommand {
	cmd := NewInitCommand()
	cmd.out = c.out()
	return cmd
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	if err := ic.validateOptions(options); err != nil {
		return err
	}

	dir := options.ComponentName
	if err := ic.filesystem.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := ic.writeConfig(dir, options); err != nil {
		return err
	}
	if err := ic.renderTemplate("recipe.yaml.tmpl", filepath.Join(dir, "recipe.yaml"), options); err != nil {
		return err
	}
	if err := ic.renderTemplate("main.py.tmpl", filepath.Join(dir, "main.py"), options); err != nil {
		return err
	}

	if ic.out != nil {
		fmt.Fprintf(ic.out, "✅ Successfully created component project: %s\n", dir)
	}
	return nil
}

func (ic *InitCommand) validateOptions(options *InitOptions) error {
	if err := validateComponentName(options.ComponentName); err != nil {
		return err
	}
	if _, err := semver.StrictNewVersion(options.Version); err != nil {
		return fmt.Errorf("%w: %q: %v", config.ErrInvalidVersion, options.Version, err)
	}
	if options.Region == "" {
		options.Region = defaultRegion
	}
	if _, err := ic.filesystem.Stat(options.ComponentName); err == nil {
		return fmt.Errorf("directory %s already exists", options.ComponentName)
	}
	return nil
}

func validateComponentName(name string) error {
	if name == "" {
		return errors.New("component name cannot be empty")
	}
	if strings.ContainsAny(name, `/\ `) {
		return fmt.Errorf("component name %q must not contain spaces or path separators", name)
	}
	return nil
}

func (ic *InitCommand) writeConfig(dir string, options *InitOptions) error {
	project := config.Project{
		Components: map[string]config.ComponentConfig{
			options.ComponentName: {
				Author:  options.Author,
				Version: options.Version,
				Build:   config.BuildSection{System: "zip"},
				Publish: config.PublishSection{Bucket: options.Bucket, Region: options.Region},
			},
		},
		GDKVersion: config.DefaultGDKVersion,
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", config.FileName, err)
	}

	if err := ic.filesystem.WriteFile(filepath.Join(dir, config.FileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	return nil
}

func (ic *InitCommand) renderTemplate(name, dest string, options *InitOptions) error {
	data, err := fs.ReadFile(ic.templatesFS, "templates/"+name)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, options); err != nil {
		return fmt.Errorf("failed to render template %s: %w", name, err)
	}

	if err := ic.filesystem.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := &InitOptions{
		Version: "1.0.0",
		Region:  defaultRegion,
	}

	form := ic.createInitForm(options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Component name").
				Description("Name of your new Greengrass component, e.g. com.example.HelloWorld").
				Value(&options.ComponentName).
				Validate(func(s string) error {
					if err := validateComponentName(s); err != nil {
						return err
					}
					if _, err := ic.filesystem.Stat(s); err == nil {
						return fmt.Errorf("directory %s already exists", s)
					}
					return nil
				}),

			huh.NewInput().
				Title("Author").
				Value(&options.Author),

			huh.NewInput().
				Title("Version").
				Description("Semantic version of the first release").
				Value(&options.Version).
				Validate(func(s string) error {
					_, err := semver.StrictNewVersion(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Artifact bucket").
				Description("Bucket name prefix for artifacts; leave empty to skip uploads").
				Value(&options.Bucket),

			huh.NewInput().
				Title("Region").
				Value(&options.Region),
		),
	)
}
