package greengrass

import "encoding/json"

// DeploymentStatus is the lifecycle state the service reports for a deployment.
type DeploymentStatus string

const (
	StatusActive     DeploymentStatus = "ACTIVE"
	StatusInProgress DeploymentStatus = "IN_PROGRESS"
	StatusCompleted  DeploymentStatus = "COMPLETED"
	StatusFailed     DeploymentStatus = "FAILED"
	StatusCanceled   DeploymentStatus = "CANCELED"
	StatusInactive   DeploymentStatus = "INACTIVE"
)

// Terminal reports whether no further transitions are expected.
// The set is closed: COMPLETED, FAILED and CANCELED.
func (s DeploymentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// ComponentSpec is the per-component entry of a deployment.
type ComponentSpec struct {
	ComponentVersion string `json:"componentVersion"`
}

// DeploymentRequest describes a deployment to create. Optional documents are
// forwarded as given; a nil document is left out of the request entirely.
type DeploymentRequest struct {
	TargetARN             string
	Components            map[string]ComponentSpec
	DeploymentName        string
	Policies              json.RawMessage
	IoTJobConfiguration   json.RawMessage
	ComponentUpdatePolicy json.RawMessage
}

// Deployment is a point-in-time view of a cloud deployment.
type Deployment struct {
	ID            string
	Name          string
	TargetARN     string
	Status        DeploymentStatus
	FailureReason string
}

// ComponentVersion identifies a private component version created in the account.
type ComponentVersion struct {
	ARN     string
	Name    string
	Version string
	Status  string
}
