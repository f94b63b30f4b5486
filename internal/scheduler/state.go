package scheduler

import (
	"fmt"
	"sort"

	"github.com/vk/gridflow/internal/dag"
)

// State is the scheduling state of one run over a compiled graph.
type State struct {
	g       *dag.Graph
	status  []Status
	waiting []int
}

// New creates the state for a run. Nodes without incoming edges start Ready.
func New(g *dag.Graph) *State {
	n := g.NodeCount()
	s := &State{
		g:       g,
		status:  make([]Status, n),
		waiting: make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.waiting[i] = len(g.Incoming(i))
		if s.waiting[i] == 0 {
			s.status[i] = Ready
		}
	}
	return s
}

// NextBatch returns every Ready node ordered by ascending priority, then by
// index, and marks them Running. It returns nil when nothing is ready.
func (s *State) NextBatch() []int {
	var batch []int
	for i, st := range s.status {
		if st == Ready {
			batch = append(batch, i)
		}
	}
	sort.SliceStable(batch, func(a, b int) bool {
		return s.g.Node(batch[a]).Priority < s.g.Node(batch[b]).Priority
	})
	for _, i := range batch {
		s.status[i] = Running
	}
	return batch
}

// MarkSucceeded completes a Running node and returns the children that
// became Ready as a result.
func (s *State) MarkSucceeded(i int) ([]int, error) {
	if err := s.expectRunning(i); err != nil {
		return nil, err
	}
	s.status[i] = Succeeded

	var ready []int
	for _, e := range s.g.Outgoing(i) {
		head := s.g.Edge(e).Head
		s.waiting[head]--
		if s.waiting[head] == 0 && s.status[head] == Pending {
			s.status[head] = Ready
			ready = append(ready, head)
		}
	}
	return ready, nil
}

// MarkFailed fails a Running node and skips every descendant that has not
// run yet. It returns the skipped nodes in the order they were reached.
func (s *State) MarkFailed(i int) ([]int, error) {
	if err := s.expectRunning(i); err != nil {
		return nil, err
	}
	s.status[i] = Failed

	var skipped []int
	queue := s.g.Children(i)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if s.status[n] != Pending && s.status[n] != Ready {
			continue
		}
		s.status[n] = Skipped
		skipped = append(skipped, n)
		queue = append(queue, s.g.Children(n)...)
	}
	return skipped, nil
}

// Status returns the state of node i.
func (s *State) Status(i int) Status { return s.status[i] }

// Done reports whether no node is Ready or Running.
func (s *State) Done() bool {
	for _, st := range s.status {
		if st == Ready || st == Running {
			return false
		}
	}
	return true
}

// Pending returns the nodes still waiting on parents. After Done, a
// non-empty result means the graph had a cycle.
func (s *State) Pending() []int {
	var out []int
	for i, st := range s.status {
		if st == Pending {
			out = append(out, i)
		}
	}
	return out
}

// Counts tallies nodes by status.
func (s *State) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, st := range s.status {
		out[st]++
	}
	return out
}

func (s *State) expectRunning(i int) error {
	if i < 0 || i >= len(s.status) {
		return fmt.Errorf("%w: %d", dag.ErrNodeOutOfRange, i)
	}
	if s.status[i] != Running {
		return fmt.Errorf("scheduler: node %d is %s, not running", i, s.status[i])
	}
	return nil
}
