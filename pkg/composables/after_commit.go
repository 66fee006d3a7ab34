package composables

import (
	"context"
	"sync"

	"github.com/iota-uz/fieldops/pkg/constants"
)

// CommitHooks collects callbacks that must only run once the transaction is durable.
type CommitHooks struct {
	mu    sync.Mutex
	funcs []func()
}

func (h *CommitHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.funcs = append(h.funcs, fn)
}

// Run executes the registered callbacks in registration order and empties the list.
func (h *CommitHooks) Run() {
	h.mu.Lock()
	funcs := h.funcs
	h.funcs = nil
	h.mu.Unlock()
	for _, fn := range funcs {
		fn()
	}
}

func (h *CommitHooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.funcs)
}

func WithCommitHooks(ctx context.Context, hooks *CommitHooks) context.Context {
	return context.WithValue(ctx, constants.AfterCommitKey, hooks)
}

// AfterCommit schedules fn to run after the surrounding transaction commits. Without a
// transaction in scope fn is dropped, and on rollback it never runs.
func AfterCommit(ctx context.Context, fn func()) bool {
	hooks, ok := ctx.Value(constants.AfterCommitKey).(*CommitHooks)
	if !ok || hooks == nil {
		return false
	}
	hooks.add(fn)
	return true
}
