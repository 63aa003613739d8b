package config

import (
	"errors"
	"fmt"
)

var (
	// Project file errors
	ErrProjectNotFound    = errors.New("project configuration not found")
	ErrNoComponent        = errors.New("no component configured")
	ErrMultipleComponents = errors.New("exactly one component must be configured")

	// Deploy resolution errors
	ErrMissingTarget     = errors.New("target ARN is not specified")
	ErrMissingRegion     = errors.New("region is not specified")
	ErrInvalidTarget     = errors.New("target ARN is invalid")
	ErrInvalidVersion    = errors.New("component version is invalid")
	ErrUnresolvedVersion = errors.New("component version must be explicit")
	ErrInvalidOptions    = errors.New("deployment options are invalid")
)

// ConfigError reports a required deploy setting that neither the config file
// nor the command arguments supplied.
type ConfigError struct {
	// Field is the human name of the missing setting, e.g. "Target ARN".
	Field string
	// Hint completes "Please specify the ..." in the message.
	Hint       string
	ConfigFile string
	// Op names the operation needing the setting; empty means "deployment".
	Op string

	err error
}

func (e *ConfigError) Error() string {
	op := e.Op
	if op == "" {
		op = "deployment"
	}
	return fmt.Sprintf(
		"%s is not specified in the gdk config file '%s' or as a command argument. Please specify the %s for %s.",
		e.Field, e.ConfigFile, e.Hint, op,
	)
}

func (e *ConfigError) Unwrap() error {
	return e.err
}
