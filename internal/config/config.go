package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the name of the project configuration file.
const FileName = "gdk-config.json"

// DefaultGDKVersion is assumed when the config file does not pin one.
const DefaultGDKVersion = "1.0.0"

// Project represents the gdk-config.json configuration file
type Project struct {
	Components map[string]ComponentConfig `json:"component"`
	GDKVersion string                     `json:"gdk_version"`

	// Path is the file the project was loaded from.
	Path string `json:"-"`
}

// ComponentConfig is the per-component section keyed by component name
type ComponentConfig struct {
	Author  string         `json:"author"`
	Version string         `json:"version"`
	Build   BuildSection   `json:"build"`
	Publish PublishSection `json:"publish"`
	Deploy  DeploySection  `json:"deploy"`
}

// BuildSection contains build-specific configuration
type BuildSection struct {
	System string `json:"build_system"`
}

// PublishSection contains publish-specific configuration
type PublishSection struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
}

// DeploySection contains deploy-specific configuration. Options is either a
// JSON object or a string holding a file path or a JSON document.
type DeploySection struct {
	TargetARN      string          `json:"target_arn,omitempty"`
	DeploymentName string          `json:"deployment_name,omitempty"`
	Region         string          `json:"region,omitempty"`
	Options        json.RawMessage `json:"options,omitempty"`
}

// Root returns the directory holding the config file.
func (p *Project) Root() string {
	return filepath.Dir(p.Path)
}

// Component returns the single component the project describes.
func (p *Project) Component() (string, ComponentConfig, error) {
	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}

	switch len(names) {
	case 0:
		return "", ComponentConfig{}, fmt.Errorf("%w in %s", ErrNoComponent, p.Path)
	case 1:
		return names[0], p.Components[names[0]], nil
	}

	sort.Strings(names)
	return "", ComponentConfig{}, fmt.Errorf("%w in %s: %v", ErrMultipleComponents, p.Path, names)
}

// LoadProject loads gdk-config.json from the current directory or a parent directory
func LoadProject() (*Project, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadProjectFromDir(dir)
}

// LoadProjectFromPath loads the project configuration from a specific path
func LoadProjectFromPath(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	project.Path = abs

	// Set defaults
	if project.GDKVersion == "" {
		project.GDKVersion = DefaultGDKVersion
	}
	for name, c := range project.Components {
		if c.Build.System == "" {
			c.Build.System = "zip"
		}
		project.Components[name] = c
	}

	return &project, nil
}

// loadProjectFromDir searches for gdk-config.json in the given directory and its parents
func loadProjectFromDir(startDir string) (*Project, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return LoadProjectFromPath(configPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, fmt.Errorf("%w: no %s in %s or any parent directory", ErrProjectNotFound, FileName, startDir)
}
