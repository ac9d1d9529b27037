package service

import (
	"sort"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
)

// Registry implements ports.ActionRegistry. Adding a new action type to the
// platform means registering one more handler here; the workflow engine
// itself never changes.
type Registry struct {
	handlers map[domain.ActionType]ports.ActionHandler
}

// NewRegistry creates a registry from the given handlers.
func NewRegistry(handlers ...ports.ActionHandler) *Registry {
	m := make(map[domain.ActionType]ports.ActionHandler, len(handlers))
	for _, h := range handlers {
		m[h.Type()] = h
	}
	return &Registry{handlers: m}
}

// Handler returns the handler registered for actionType.
func (r *Registry) Handler(actionType domain.ActionType) (ports.ActionHandler, bool) {
	h, ok := r.handlers[actionType]
	return h, ok
}

// Types lists the registered action types, sorted for stable output.
func (r *Registry) Types() []domain.ActionType {
	types := make([]domain.ActionType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
