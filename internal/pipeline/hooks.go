package pipeline

import (
	"fmt"
	"sync"

	"github.com/jonathan/prose-humanizer/internal/stages"
)

// Position selects whether a hook runs before or after its stage.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// HookFunc transforms the in-flight (placeholder-masked) text around a stage. It receives the
// resolved language, profile name and effective intensity of the run.
type HookFunc func(text, language, profile string, intensity float64) string

// Hooks is a stage-keyed registry of caller-supplied text transforms. One registry belongs to one
// Pipeline; it is safe for concurrent use.
type Hooks struct {
	mu     sync.RWMutex
	before map[string][]HookFunc
	after  map[string][]HookFunc
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{
		before: make(map[string][]HookFunc),
		after:  make(map[string][]HookFunc),
	}
}

// NoopHooks returns an empty registry; running it leaves text untouched.
func NoopHooks() *Hooks {
	return NewHooks()
}

// Register appends fn to the hooks of stage at position. Hooks run in registration order.
func (h *Hooks) Register(stage string, position Position, fn HookFunc) error {
	if _, ok := stages.ByName(stage); !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if fn == nil {
		return fmt.Errorf("nil hook for stage %q", stage)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch position {
	case Before:
		h.before[stage] = append(h.before[stage], fn)
	case After:
		h.after[stage] = append(h.after[stage], fn)
	default:
		return fmt.Errorf("unknown hook position %q", position)
	}
	return nil
}

// Clear removes every registered hook.
func (h *Hooks) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = make(map[string][]HookFunc)
	h.after = make(map[string][]HookFunc)
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, fns := range h.before {
		n += len(fns)
	}
	for _, fns := range h.after {
		n += len(fns)
	}
	return n
}

// run applies the hooks of stage at position and returns the new text and how many hooks changed it.
func (h *Hooks) run(stage string, position Position, text, language, profile string, intensity float64) (string, int) {
	h.mu.RLock()
	var fns []HookFunc
	if position == Before {
		fns = append(fns, h.before[stage]...)
	} else {
		fns = append(fns, h.after[stage]...)
	}
	h.mu.RUnlock()

	changed := 0
	for _, fn := range fns {
		next := fn(text, language, profile, intensity)
		if next != text {
			changed++
		}
		text = next
	}
	return text, changed
}
