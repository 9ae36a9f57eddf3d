package accumulator

import (
	"log/slog"
	"sort"
	"sync"

	"probecov/internal/slogutil"
)

// Registry owns one accumulator per service group. It is created per server
// instance; groups are dropped when their agents disconnect.
type Registry struct {
	mu     sync.Mutex
	groups map[string]*Accumulator
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Registry{groups: make(map[string]*Accumulator), logger: logger}
}

// For returns the accumulator of a group, creating it on first use.
func (r *Registry) For(group string) *Accumulator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.groups[group]; ok {
		return a
	}
	a := New(r.logger.With("group", group))
	r.groups[group] = a
	return a
}

// Drop discards the accumulator of a group. It reports whether the group existed.
func (r *Registry) Drop(group string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[group]; !ok {
		return false
	}
	delete(r.groups, group)
	r.logger.Info("Dropped accumulator", "group", group)
	return true
}

// Groups lists the known groups in order.
func (r *Registry) Groups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := make([]string, 0, len(r.groups))
	for g := range r.groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
