package keepsake

// Status is the terminal state of an assertion.
type Status string

const (
	// StatusPassed means the rendering matched the accepted baseline.
	StatusPassed Status = "passed"
	// StatusFailed means the rendering diverged (or no baseline exists)
	// and a pending snapshot was written for review.
	StatusFailed Status = "failed"
	// StatusUpdated means update mode replaced the baseline directly.
	StatusUpdated Status = "updated"
)

// Outcome reports how an assertion terminated and which files it touched.
type Outcome struct {
	Status     Status
	Identity   Identity
	Expression string

	// BaselinePath is the accepted snapshot location for this identity,
	// whether or not a file exists there yet.
	BaselinePath string

	// PendingPath and Diff are set when Status is StatusFailed. Diff is a
	// unified diff from the baseline body to the fresh rendering; against
	// a missing baseline every line is an addition.
	PendingPath string
	Diff        string
}
