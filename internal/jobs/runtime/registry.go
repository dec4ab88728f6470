package runtime

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/pension-pipeline/internal/data/txn"
)

// Handler is one pipeline stage. Run returns the number of rows written.
type Handler interface {
	Type() string
	Run(ctx *Context) (int64, error)
}

// TableHandler is implemented by stages that materialize a table.
type TableHandler interface {
	Handler
	OutputTable() string
}

// Registry holds stages in registration order, which is also execution order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for stage=%s", t)
	}
	r.handlers[t] = h
	r.order = append(r.order, t)
	return nil
}

func (r *Registry) Get(stage string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[stage]
	return h, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Resolve picks the requested stages in registration order. No stages means all.
func (r *Registry) Resolve(stages []string) ([]Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := map[string]bool{}
	for _, s := range stages {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := r.handlers[s]; !ok {
			return nil, txn.ValidationError(fmt.Sprintf("unknown stage %q (known: %s)", s, strings.Join(r.order, ", ")))
		}
		want[s] = true
	}
	out := make([]Handler, 0, len(r.order))
	for _, t := range r.order {
		if len(want) == 0 || want[t] {
			out = append(out, r.handlers[t])
		}
	}
	return out, nil
}
