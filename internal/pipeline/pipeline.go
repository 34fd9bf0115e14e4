// Package pipeline orchestrates a humanizer run: it protects spans, scores the input, scales the
// intensity, runs the stage sequence with hooks, retries once when the text drifted too far and
// falls back to a typography-only rollback when validation fails.
package pipeline

import (
	"log"
	"strings"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/metrics"
	"github.com/jonathan/prose-humanizer/internal/stages"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Pipeline holds the read-only language data, the stage sequence and the hook registry shared by
// its runs. A Pipeline is safe for concurrent use; each run owns its own generator and change log.
type Pipeline struct {
	registry          *langdata.Registry
	stages            []stages.Stage
	hooks             *Hooks
	rollbackThreshold int
	verbose           bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry sets the language and profile registry. Defaults to langdata.Default().
func WithRegistry(r *langdata.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithStages replaces the stage sequence.
func WithStages(seq ...stages.Stage) Option {
	return func(p *Pipeline) { p.stages = append([]stages.Stage(nil), seq...) }
}

// WithHooks injects a hook registry, e.g. one shared between pipelines on purpose.
func WithHooks(h *Hooks) Option {
	return func(p *Pipeline) { p.hooks = h }
}

// WithRollbackThreshold sets how many validation errors trigger a rollback.
func WithRollbackThreshold(n int) Option {
	return func(p *Pipeline) { p.rollbackThreshold = n }
}

// WithVerbose enables [pipeline] log lines.
func WithVerbose(v bool) Option {
	return func(p *Pipeline) { p.verbose = v }
}

// New builds a pipeline with the default stage sequence and an empty hook registry.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = langdata.Default()
	}
	if p.stages == nil {
		p.stages = stages.Default()
	}
	if p.hooks == nil {
		p.hooks = NoopHooks()
	}
	return p
}

// Hooks returns the pipeline's hook registry.
func (p *Pipeline) Hooks() *Hooks {
	return p.hooks
}

// RegisterHook adds a hook to the pipeline's registry.
func (p *Pipeline) RegisterHook(stage string, position Position, fn HookFunc) error {
	return p.hooks.Register(stage, position, fn)
}

// ClearHooks removes every hook from the pipeline's registry.
func (p *Pipeline) ClearHooks() {
	p.hooks.Clear()
}

// Registry returns the language and profile registry.
func (p *Pipeline) Registry() *langdata.Registry {
	return p.registry
}

// Detect scores text for machine-like style. An empty or "auto" language is detected from text.
func (p *Pipeline) Detect(text, language string) types.Detection {
	pack, code, _ := p.resolveLanguage(language, text)
	d := metrics.Detect(text, pack)
	d.Language = code
	return d
}

// resolveLanguage returns the pack for language, the code to report and a warning when the language
// has no deep pack.
func (p *Pipeline) resolveLanguage(language, text string) (*langdata.Pack, string, string) {
	if language == "" || language == types.LanguageAuto {
		language = langdata.DetectLanguage(text)
	}
	pack, err := p.registry.Lookup(language)
	if err != nil {
		return pack, strings.ToLower(language), err.Error()
	}
	return pack, pack.Code(), ""
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.verbose {
		log.Printf("[pipeline] "+format, args...)
	}
}
