package deploy

import (
	"time"

	"github.com/gdk-cli/gdk/internal/greengrass"
)

// Outcome is how monitoring of a deployment ended.
type Outcome int

const (
	// OutcomeSucceeded means the deployment reached COMPLETED.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means the deployment reached FAILED or CANCELED.
	OutcomeFailed
	// OutcomeTimedOut means no terminal state was observed before the timeout.
	OutcomeTimedOut
	// OutcomeErrored means a status fetch failed and polling stopped.
	OutcomeErrored
	// OutcomeInterrupted means the context was cancelled while waiting.
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeErrored:
		return "errored"
	case OutcomeInterrupted:
		return "interrupted"
	}
	return "unknown"
}

// Conclusive reports whether the deployment's final state is known.
func (o Outcome) Conclusive() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// Report summarizes a monitored deployment.
type Report struct {
	DeploymentID   string
	DeploymentName string
	Status         greengrass.DeploymentStatus
	FailureReason  string
	Outcome        Outcome
	// Polls counts status fetches, including a failed one.
	Polls   int
	Elapsed time.Duration
	// Err is the fetch error that ended an OutcomeErrored run.
	Err error
}
