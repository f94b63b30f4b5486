package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
	"github.com/vk/gridflow/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// ExecutionRecord holds the start and end times for a single node's execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// MockSleeper is a dispatcher for concurrency tests. Every request sleeps
// for a fixed time and is recorded by node id. Requests for tasks listed in
// Fail return an error instead of sleeping.
type MockSleeper struct {
	ExecutionTimes map[nodeid.NodeID]*ExecutionRecord
	Order          []nodeid.NodeID
	Inputs         map[nodeid.NodeID]fields.Fields
	Fail           map[string]error
	mu             sync.Mutex
	sleepDuration  time.Duration
	workers        int
}

var _ dispatch.Dispatcher = (*MockSleeper)(nil)

// NewMockSleeper creates a sleeper advertising the given worker count.
func NewMockSleeper(sleep time.Duration, workers int) *MockSleeper {
	return &MockSleeper{
		ExecutionTimes: make(map[nodeid.NodeID]*ExecutionRecord),
		Inputs:         make(map[nodeid.NodeID]fields.Fields),
		Fail:           make(map[string]error),
		sleepDuration:  sleep,
		workers:        workers,
	}
}

// Capacity implements dispatch.Sized.
func (m *MockSleeper) Capacity() int { return m.workers }

// Dispatch implements dispatch.Dispatcher. The outputs echo the inputs plus
// a "task" field naming the task that ran.
func (m *MockSleeper) Dispatch(ctx context.Context, req dispatch.Request) (fields.Fields, error) {
	m.mu.Lock()
	m.Order = append(m.Order, req.Node)
	m.Inputs[req.Node] = req.Inputs.Clone()
	failure := m.Fail[req.Task]
	m.mu.Unlock()

	if failure != nil {
		return nil, failure
	}

	startTime := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	endTime := time.Now()

	m.mu.Lock()
	m.ExecutionTimes[req.Node] = &ExecutionRecord{Start: startTime, End: endTime}
	m.mu.Unlock()

	out := req.Inputs.Clone().Merge(fields.Fields{"task": cty.StringVal(req.Task)})
	return out, nil
}

// Record returns the execution record for a node, or nil.
func (m *MockSleeper) Record(id nodeid.NodeID) *ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecutionTimes[id]
}

// Dispatched returns the node ids in the order their requests arrived.
func (m *MockSleeper) Dispatched() []nodeid.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]nodeid.NodeID(nil), m.Order...)
}
