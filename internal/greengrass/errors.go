package greengrass

import "errors"

var (
	ErrEmptyComponentARN = errors.New("component ARN cannot be empty")
	ErrEmptyTarget       = errors.New("deployment target ARN cannot be empty")
	ErrNoComponents      = errors.New("deployment must contain at least one component")
	ErrEmptyDeploymentID = errors.New("deployment ID cannot be empty")
	ErrEmptyRecipe       = errors.New("recipe file is empty")
)
