//nolint:revive // types is a standard Go package name pattern
package types

// Document is the immutable input of a run: the original text plus its language code.
type Document struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ChangeEntry is one append-only change log record.
type ChangeEntry struct {
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Change kinds recorded by the orchestrator itself
const (
	KindReplace    = "replace"
	KindRemove     = "remove"
	KindSplit      = "split"
	KindMerge      = "merge"
	KindTypography = "typography"
	KindHook       = "hook"
	KindRetry      = "retry"
	KindRollback   = "rollback"
)
