package dispatch

import (
	"context"
	"fmt"

	"github.com/vk/gridflow/internal/fields"
)

// Router forwards each request to the dispatcher registered for the
// request's service, or to the fallback when none is.
type Router struct {
	services map[string]Dispatcher
	fallback Dispatcher
}

// NewRouter creates a router. fallback may be nil.
func NewRouter(fallback Dispatcher) *Router {
	return &Router{services: make(map[string]Dispatcher), fallback: fallback}
}

// Route registers d for service and returns the router for chaining.
func (r *Router) Route(service string, d Dispatcher) *Router {
	r.services[service] = d
	return r
}

// Dispatch implements Dispatcher.
func (r *Router) Dispatch(ctx context.Context, req Request) (fields.Fields, error) {
	d, ok := r.services[req.Service]
	if !ok {
		d = r.fallback
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %q (task %s)", ErrNoRoute, req.Service, req.Task)
	}
	return d.Dispatch(ctx, req)
}

// Capacity implements Sized as the total capacity of all distinct sized
// targets.
func (r *Router) Capacity() int {
	seen := make(map[Sized]struct{})
	total := 0
	add := func(d Dispatcher) {
		s, ok := d.(Sized)
		if !ok {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		total += s.Capacity()
	}
	add(r.fallback)
	for _, d := range r.services {
		add(d)
	}
	return total
}
