package scheduler

// Status is the execution state of one node during a run.
type Status int

const (
	Pending Status = iota
	Ready
	Running
	Succeeded
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the node will not change state again.
func (s Status) IsTerminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}
