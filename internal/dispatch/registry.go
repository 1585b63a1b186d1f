// Package dispatch owns the method API pipeline: envelope validation,
// authentication, method lookup, per-method argument validation and the
// handler invocation, in that fixed order.
package dispatch

import (
	"context"
	"sort"

	"github.com/scoring-lab/project-scoring/internal/schema"
)

// AuthContext is derived once per request right after envelope validation and
// passed to the selected handler. It is never persisted.
type AuthContext struct {
	Login      string
	Privileged bool
}

// Handler is the capability every business method implements: validate its
// own argument schema, then run the computation over the typed values.
type Handler interface {
	Validate(args map[string]any) (schema.Values, []string)
	Run(ctx context.Context, args schema.Values, auth AuthContext) (any, error)
}

// Registry maps method names to handlers. Populated at startup, read-only
// afterwards.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Methods returns the registered method names in sorted order.
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
