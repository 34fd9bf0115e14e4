package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/prose-humanizer/internal/langdata"
	"github.com/jonathan/prose-humanizer/internal/metrics"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/segment"
	"github.com/jonathan/prose-humanizer/internal/stages"
	"github.com/jonathan/prose-humanizer/internal/types"
	"github.com/jonathan/prose-humanizer/internal/validation"
)

// Pseudo stage name for entries the orchestrator itself records.
const stagePipeline = "pipeline"

// run is the state of one Transform call.
type run struct {
	p          *Pipeline
	id         string
	cfg        types.PipelineConfig
	pack       *langdata.Pack
	language   string
	profile    langdata.Profile
	gen        *rng.Generator
	onProgress ProgressCallback
	warnings   []string
}

// attempt is the outcome of one pass over the stage sequence.
type attempt struct {
	masked   string
	restored string
	changes  []types.ChangeEntry
	ratio    float64
}

// Transform humanizes text under cfg. It never fails: problems surface in the validation report
// and the change log, and the worst outcome is the original text with typography normalized.
func (p *Pipeline) Transform(text string, cfg types.PipelineConfig) types.PipelineResult {
	return p.TransformWithProgress(text, cfg, nil)
}

// TransformWithProgress is Transform with a callback for every state transition.
func (p *Pipeline) TransformWithProgress(text string, cfg types.PipelineConfig, onProgress ProgressCallback) types.PipelineResult {
	cfg = cfg.Normalized()
	seed := rng.ClockSeed()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	r := &run{
		p:          p,
		id:         uuid.NewString(),
		cfg:        cfg,
		gen:        rng.New(seed),
		onProgress: onProgress,
	}
	var warning string
	r.pack, r.language, warning = p.resolveLanguage(cfg.Language, text)
	if warning != "" {
		r.warnings = append(r.warnings, warning)
		p.logf("%s", warning)
	}
	var known bool
	r.profile, known = p.registry.Profile(cfg.Profile)
	if !known {
		r.warnings = append(r.warnings, fmt.Sprintf("unknown profile %q; using %q", cfg.Profile, r.profile.Name))
	}

	result := types.PipelineResult{
		RunID:     r.id,
		Text:      text,
		Language:  r.language,
		Profile:   r.profile.Name,
		Seed:      seed,
		Intensity: cfg.Intensity,
		Changes:   []types.ChangeEntry{},
	}
	r.emitProgress(StateStart, "", fmt.Sprintf("language %s, profile %s, intensity %d", r.language, r.profile.Name, cfg.Intensity), nil)

	if strings.TrimSpace(text) == "" {
		result.MetricsBefore = metrics.Score(text, r.pack)
		result.MetricsAfter = result.MetricsBefore
		result.Validation = types.ValidationReport{
			IsValid:     true,
			Errors:      []string{},
			Warnings:    append([]string{}, r.warnings...),
			LengthRatio: 1,
		}
		result.QualityScore = QualityScore(result.MetricsAfter.Artificiality, result.Validation)
		r.emitProgress(StateDone, "", "empty input returned unchanged", nil)
		return result
	}

	masked, placeholders := segment.Protect(text, segment.OptionsFromConfig(cfg))
	r.emitProgress(StateSegmented, "", fmt.Sprintf("protected %d spans", placeholders.Len()), nil)

	result.MetricsBefore = metrics.Score(masked, r.pack)
	effective, natural := EffectiveIntensity(cfg.Intensity, result.MetricsBefore.Artificiality)
	result.EffectiveIntensity = effective
	result.ShortCircuited = natural
	r.emitProgress(StateScored, "", fmt.Sprintf("artificiality %.1f, effective intensity %.1f", result.MetricsBefore.Artificiality, effective), result.MetricsBefore)
	p.logf("run %s: artificiality %.1f, effective intensity %.1f, near-natural %t", r.id, result.MetricsBefore.Artificiality, effective, natural)

	seq := p.stages
	if natural {
		seq = typographyOnly(seq)
	}

	first := r.pass(text, masked, placeholders, seq, effective)
	chosen := first
	r.emitProgress(StateRatioChecked, "", fmt.Sprintf("change ratio %.3f (max %.2f)", first.ratio, cfg.Constraints.MaxChangeRatio), nil)

	if !natural && first.ratio > cfg.Constraints.MaxChangeRatio {
		retryIntensity := effective * RetryFactor
		r.emitProgress(StateRetry, "", fmt.Sprintf("retrying at intensity %.1f", retryIntensity), nil)
		second := r.pass(text, masked, placeholders, seq, retryIntensity)
		r.emitProgress(StateRatioChecked, "", fmt.Sprintf("retry change ratio %.3f", second.ratio), nil)
		if second.ratio <= cfg.Constraints.MaxChangeRatio {
			chosen = second
			chosen.changes = append(chosen.changes, types.ChangeEntry{
				Stage:  stagePipeline,
				Kind:   types.KindRetry,
				Before: fmt.Sprintf("%.3f", first.ratio),
				After:  fmt.Sprintf("%.3f", second.ratio),
			})
			result.Retried = true
			result.EffectiveIntensity = retryIntensity
		} else {
			r.warnings = append(r.warnings, fmt.Sprintf(
				"retry at intensity %.1f still changed %.3f of words; kept first attempt", retryIntensity, second.ratio))
		}
		p.logf("run %s: retry ratio %.3f, accepted %t", r.id, second.ratio, result.Retried)
	}

	report := validation.Validate(text, chosen.restored, cfg, r.validationOptions(placeholders))
	r.emitProgress(StateValidated, "", fmt.Sprintf("%d errors, %d warnings", len(report.Errors), len(report.Warnings)), report)

	if report.ShouldRollback {
		p.logf("run %s: rolling back: %s", r.id, strings.Join(report.Errors, "; "))
		chosen, report = r.rollback(text, report)
		result.RolledBack = true
		result.Retried = false
		result.EffectiveIntensity = 0
		r.emitProgress(StateRolledBack, "", "content stages discarded", nil)
	} else {
		r.emitProgress(StateRestored, "", fmt.Sprintf("restored %d spans", placeholders.Len()), nil)
	}
	report.Warnings = append(report.Warnings, r.warnings...)

	result.Text = chosen.restored
	result.Changes = append(result.Changes, chosen.changes...)
	result.ChangeRatio = report.ChangeRatio
	result.Validation = report
	result.MetricsAfter = metrics.Score(chosen.masked, r.pack)
	result.QualityScore = QualityScore(result.MetricsAfter.Artificiality, report)

	r.emitProgress(StateDone, "", fmt.Sprintf("quality %.1f", result.QualityScore), nil)
	return result
}

// pass runs seq over the masked text and restores the result.
func (r *run) pass(original, masked string, placeholders *segment.Map, seq []stages.Stage, intensity float64) attempt {
	text, changes := r.runStages(masked, seq, intensity)
	restored := segment.Restore(text, placeholders)
	return attempt{
		masked:   text,
		restored: restored,
		changes:  changes,
		ratio:    validation.ChangeRatio(original, restored),
	}
}

// runStages applies seq with hooks. Stages that cannot run for the pack are skipped together with
// their hooks.
func (r *run) runStages(text string, seq []stages.Stage, intensity float64) (string, []types.ChangeEntry) {
	changes := []types.ChangeEntry{}
	for _, stage := range seq {
		name := stage.Name()
		if !r.pack.Deep() && !stage.Universal() {
			r.p.logf("run %s: %s skipped for %s", r.id, name, r.pack.Code())
			continue
		}

		text = r.hook(name, Before, text, intensity, &changes)
		next, entries := stage.Apply(text, r.pack, r.profile, intensity, r.gen)
		if len(entries) == 0 {
			r.p.logf("run %s: %s made no edits", r.id, name)
		}
		text = next
		changes = append(changes, entries...)
		text = r.hook(name, After, text, intensity, &changes)

		r.emitProgress(StateStage, name, fmt.Sprintf("%d edits", len(entries)), nil)
	}
	return text, changes
}

func (r *run) hook(stage string, position Position, text string, intensity float64, changes *[]types.ChangeEntry) string {
	out, changed := r.p.hooks.run(stage, position, text, r.language, r.profile.Name, intensity)
	if changed > 0 {
		*changes = append(*changes, types.ChangeEntry{Stage: stage, Kind: types.KindHook, Before: string(position)})
	}
	return out
}

// rollback discards the content stages and returns the original with typography applied. The
// original errors are carried over as warnings.
func (r *run) rollback(original string, failed types.ValidationReport) (attempt, types.ValidationReport) {
	masked, placeholders := segment.Protect(original, segment.OptionsFromConfig(r.cfg))
	text, entries := stages.Typography{}.Apply(masked, r.pack, r.profile, 0, r.gen)
	restored := segment.Restore(text, placeholders)

	changes := append([]types.ChangeEntry{}, entries...)
	changes = append(changes, types.ChangeEntry{
		Stage:  stagePipeline,
		Kind:   types.KindRollback,
		Before: strings.Join(failed.Errors, "; "),
	})

	report := validation.Validate(original, restored, r.cfg, r.validationOptions(placeholders))
	for _, e := range failed.Errors {
		report.Warnings = append(report.Warnings, "rolled back: "+e)
	}
	return attempt{masked: text, restored: restored, changes: changes, ratio: report.ChangeRatio}, report
}

func (r *run) validationOptions(placeholders *segment.Map) *validation.Options {
	return &validation.Options{
		RollbackThreshold: r.p.rollbackThreshold,
		Placeholders:      placeholders,
	}
}

func typographyOnly(seq []stages.Stage) []stages.Stage {
	out := make([]stages.Stage, 0, 1)
	for _, s := range seq {
		if s.Name() == stages.NameTypography {
			out = append(out, s)
		}
	}
	return out
}
