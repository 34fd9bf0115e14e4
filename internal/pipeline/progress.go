package pipeline

// Run states, in the order a run passes through them.
const (
	StateStart        = "start"
	StateSegmented    = "segmented"
	StateScored       = "scored"
	StateStage        = "stage"
	StateRatioChecked = "ratio_checked"
	StateRetry        = "retry"
	StateValidated    = "validated"
	StateRestored     = "restored"
	StateRolledBack   = "rolled_back"
	StateDone         = "done"
)

// ProgressEvent represents a state transition during a run
type ProgressEvent struct {
	State   string `json:"state"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called on every state transition of a run
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func (r *run) emitProgress(state, stage, message string, content any) {
	if r.onProgress == nil {
		return
	}
	r.onProgress(ProgressEvent{
		State:   state,
		Stage:   stage,
		Message: message,
		RunID:   r.id,
		Content: content,
	})
}
