// Package job tracks a submitted transcription through its status polls.
package job

import (
	"fmt"

	"github.com/jwulff/recite/internal/api"
)

// State is the lifecycle position of a transcription job.
type State int

const (
	Idle State = iota
	Processing
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Display messages.
const (
	MsgProcessing = "Processing..."
	MsgComplete   = "Transcription complete!"
	MsgFailed     = "Error fetching status"
)

// Job is an immutable snapshot; transitions return a new value.
type Job struct {
	OrderID   string
	State     State
	Estimated string // seconds as reported by the service, "" if unknown
}

// Start returns a job entering Processing for orderID.
func Start(orderID string) Job {
	return Job{OrderID: orderID, State: Processing}
}

// Terminal reports whether no further polls should be issued.
func (j Job) Terminal() bool {
	return j.State == Complete || j.State == Failed
}

// Apply folds a status response into the job. Terminal jobs are unchanged.
func (j Job) Apply(resp api.StatusResponse) Job {
	if j.State != Processing {
		return j
	}
	if resp.Completed() {
		j.State = Complete
		j.Estimated = ""
		return j
	}
	j.Estimated = resp.EstimatedSeconds()
	return j
}

// Fail moves a processing job to Failed.
func (j Job) Fail() Job {
	if j.State != Processing {
		return j
	}
	j.State = Failed
	j.Estimated = ""
	return j
}

// Message is the status line shown for the job.
func (j Job) Message() string {
	switch j.State {
	case Processing:
		if j.Estimated == "" {
			return MsgProcessing
		}
		return fmt.Sprintf("%s Estimated time remaining: %s seconds", MsgProcessing, j.Estimated)
	case Complete:
		return MsgComplete
	case Failed:
		return MsgFailed
	}
	return ""
}
