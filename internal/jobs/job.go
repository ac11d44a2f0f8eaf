package jobs

// Status is the local lifecycle state of a job.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPolling   Status = "polling"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further polling happens in this state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Job is the persisted view of one key.
type Job struct {
	RemoteID string `json:"remoteId,omitempty"`
	Status   Status `json:"status"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OrphanedMessage is recorded on jobs whose poller did not survive a restart.
const OrphanedMessage = "polling was interrupted before the job finished; start it again"

// Orphaned converts a polling job into a failed one. Other states are returned
// unchanged.
func (j Job) Orphaned() Job {
	if j.Status != StatusPolling {
		return j
	}
	j.Status = StatusFailed
	j.Result = ""
	j.Error = OrphanedMessage
	return j
}
