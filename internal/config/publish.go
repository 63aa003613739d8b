package config

import "strings"

// PublishConfig is the resolved configuration for publishing the project's component.
type PublishConfig struct {
	ComponentName    string
	ComponentVersion string
	Region           string
	Bucket           string
	ProjectRoot      string
}

// ResolvePublish reads the publish section. region overrides the configured
// region when non-empty.
func ResolvePublish(project *Project, region string) (*PublishConfig, error) {
	name, component, err := project.Component()
	if err != nil {
		return nil, err
	}

	version, err := validateVersion(component.Version)
	if err != nil {
		return nil, err
	}

	cfg := &PublishConfig{
		ComponentName:    name,
		ComponentVersion: version,
		Region:           firstNonEmpty(region, component.Publish.Region),
		Bucket:           strings.TrimSpace(component.Publish.Bucket),
		ProjectRoot:      project.Root(),
	}
	if cfg.Region == "" {
		return nil, &ConfigError{Field: "Region", Hint: "AWS region", ConfigFile: project.Path, Op: "publishing", err: ErrMissingRegion}
	}
	return cfg, nil
}

// PublishConfig returns the publish settings matching a resolved deployment,
// so a publish triggered by deploy targets the deployment's region.
func (c *DeployConfig) PublishConfig() *PublishConfig {
	return &PublishConfig{
		ComponentName:    c.ComponentName,
		ComponentVersion: c.ComponentVersion,
		Region:           c.Region,
		Bucket:           c.PublishBucket,
		ProjectRoot:      c.ProjectRoot,
	}
}
