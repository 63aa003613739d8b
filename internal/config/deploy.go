package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aws/aws-sdk-go/aws/arn"
)

// NextPatch is the build-time placeholder that asks for the next patch version.
const NextPatch = "NEXT_PATCH"

// DeployArgs are the command-line overrides for a deployment. Empty values
// fall back to the config file.
type DeployArgs struct {
	TargetARN      string
	DeploymentName string
	Region         string
	// Options is a path to a JSON file or a literal JSON document.
	Options string
}

// Options are the optional deployment documents, each kept as raw JSON and
// forwarded to the service as given. A nil field was not supplied.
type Options struct {
	DeploymentPolicies    json.RawMessage `json:"deployment_policies,omitempty"`
	IoTJobConfiguration   json.RawMessage `json:"iot_job_configuration,omitempty"`
	ComponentUpdatePolicy json.RawMessage `json:"component_update_policy,omitempty"`
}

// DeployConfig is the resolved configuration of a single deploy invocation.
type DeployConfig struct {
	ComponentName    string
	ComponentVersion string
	TargetARN        string
	Region           string
	DeploymentName   string
	Options          Options

	// ConfigFile is the project file the values were read from.
	ConfigFile  string
	ProjectRoot string
	// PublishBucket is carried for the publish step.
	PublishBucket string
}

// DefaultDeploymentName derives the deployment name used when none is configured.
func DefaultDeploymentName(componentName, componentVersion string) string {
	return fmt.Sprintf("%s-%s-deployment", componentName, componentVersion)
}

// ResolveDeploy merges args over the project's deploy section. An argument
// wins when it is non-empty. Region falls back to the publish section.
func ResolveDeploy(project *Project, args DeployArgs) (*DeployConfig, error) {
	name, component, err := project.Component()
	if err != nil {
		return nil, err
	}

	version, err := validateVersion(component.Version)
	if err != nil {
		return nil, err
	}

	deploy := component.Deploy
	cfg := &DeployConfig{
		ComponentName:    name,
		ComponentVersion: version,
		TargetARN:        firstNonEmpty(args.TargetARN, deploy.TargetARN),
		DeploymentName:   firstNonEmpty(args.DeploymentName, deploy.DeploymentName),
		Region:           firstNonEmpty(args.Region, deploy.Region),
		ConfigFile:       project.Path,
		ProjectRoot:      project.Root(),
		PublishBucket:    component.Publish.Bucket,
	}

	if strings.TrimSpace(args.Options) != "" {
		cfg.Options, err = parseOptionsString(args.Options)
	} else {
		cfg.Options, err = parseOptionsValue(deploy.Options, project.Root())
	}
	if err != nil {
		return nil, err
	}

	if cfg.TargetARN == "" {
		return nil, &ConfigError{Field: "Target ARN", Hint: "target ARN", ConfigFile: project.Path, Op: "deployment", err: ErrMissingTarget}
	}
	if _, err := arn.Parse(cfg.TargetARN); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTarget, cfg.TargetARN, err)
	}

	if cfg.Region == "" {
		cfg.Region = component.Publish.Region
	}
	if cfg.Region == "" {
		return nil, &ConfigError{Field: "Region", Hint: "AWS region", ConfigFile: project.Path, Op: "deployment", err: ErrMissingRegion}
	}

	if cfg.DeploymentName == "" {
		cfg.DeploymentName = DefaultDeploymentName(cfg.ComponentName, cfg.ComponentVersion)
	}

	return cfg, nil
}

func validateVersion(version string) (string, error) {
	switch version {
	case "":
		return "", fmt.Errorf("%w: version is empty", ErrInvalidVersion)
	case NextPatch:
		return "", fmt.Errorf("%w: %s is only resolved at build time; set the version to deploy in %s", ErrUnresolvedVersion, NextPatch, FileName)
	}
	if _, err := semver.StrictNewVersion(version); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidVersion, version, err)
	}
	return version, nil
}

// parseOptionsValue decodes the options value from the config file. A JSON
// string is treated like a command-line value; relative paths resolve
// against the project root.
func parseOptionsValue(raw json.RawMessage, root string) (Options, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Options{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		if s != "" && !filepath.IsAbs(s) && !looksLikeJSON(s) {
			s = filepath.Join(root, s)
		}
		return parseOptionsString(s)
	}

	return decodeOptions(raw)
}

// parseOptionsString reads s as a file path when such a file exists and as a
// literal JSON document otherwise.
func parseOptionsString(s string) (Options, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Options{}, nil
	}

	if !looksLikeJSON(s) {
		data, err := os.ReadFile(s)
		if err != nil {
			return Options{}, fmt.Errorf("%w: %q is neither a readable file nor a JSON document: %v", ErrInvalidOptions, s, err)
		}
		return decodeOptions(data)
	}

	return decodeOptions([]byte(s))
}

func decodeOptions(data []byte) (Options, error) {
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	for key, doc := range map[string]*json.RawMessage{
		"deployment_policies":     &opts.DeploymentPolicies,
		"iot_job_configuration":   &opts.IoTJobConfiguration,
		"component_update_policy": &opts.ComponentUpdatePolicy,
	} {
		trimmed := bytes.TrimSpace(*doc)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			*doc = nil
			continue
		}
		if trimmed[0] != '{' {
			return Options{}, fmt.Errorf("%w: %s must be a JSON object", ErrInvalidOptions, key)
		}
	}

	return opts, nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
