package worker

import (
	"errors"
	"fmt"

	"github.com/vk/gridflow/internal/report"
)

var (
	// ErrGraphNotFound is returned for a handle that is not loaded.
	ErrGraphNotFound = errors.New("worker: graph not found")
	// ErrGraphBusy is returned when a handle is already executing.
	ErrGraphBusy = errors.New("worker: graph is already executing")
	// ErrNodeNotFound is returned when a run is started from a node the
	// graph does not contain.
	ErrNodeNotFound = errors.New("worker: node not found in graph")
)

// CompileError is returned by LoadGraph when the graph did not compile.
type CompileError struct {
	Report report.Bundle
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("graph failed to compile with %d error(s)", len(e.Report.Errors()))
}
