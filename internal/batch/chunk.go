package batch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prose-humanizer/internal/metrics"
	"github.com/jonathan/prose-humanizer/internal/pipeline"
	"github.com/jonathan/prose-humanizer/internal/rng"
	"github.com/jonathan/prose-humanizer/internal/segment"
	"github.com/jonathan/prose-humanizer/internal/types"
	"github.com/jonathan/prose-humanizer/internal/validation"
)

// DefaultChunkSize is used when the caller passes a non-positive chunk size.
const DefaultChunkSize = 4000

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

// Chunk is a run of whole paragraphs. Body is transformed; Separator is the blank-line break that
// followed it in the input and is copied through unchanged.
type Chunk struct {
	Body      string
	Separator string
}

// Split packs the paragraphs of text into chunks of at most size bytes. A paragraph longer than size
// becomes its own chunk. Breaks inside protected spans are ignored, so a code block is never cut.
// Concatenating Body+Separator over the result reproduces text.
func Split(text string, size int, opts segment.Options) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	spans := segment.Spans(text, opts)

	var paragraphs []Chunk
	start := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		if segment.Inside(spans, loc[0]) {
			continue
		}
		paragraphs = append(paragraphs, Chunk{Body: text[start:loc[0]], Separator: text[loc[0]:loc[1]]})
		start = loc[1]
	}
	if start < len(text) || len(paragraphs) == 0 {
		paragraphs = append(paragraphs, Chunk{Body: text[start:]})
	}

	var chunks []Chunk
	var cur Chunk
	for _, p := range paragraphs {
		if cur.Body != "" && len(cur.Body)+len(cur.Separator)+len(p.Body) > size {
			chunks = append(chunks, cur)
			cur = Chunk{}
		}
		if cur.Body == "" && cur.Separator == "" {
			cur = p
			continue
		}
		cur.Body += cur.Separator + p.Body
		cur.Separator = p.Separator
	}
	return append(chunks, cur)
}

// TransformChunked splits text at paragraph breaks, transforms the chunks in parallel with seed
// DeriveSeed(base, chunkIndex) and reassembles them in order. Change logs are concatenated; metrics,
// change ratio and validation are recomputed over the whole document.
func (r *Runner) TransformChunked(ctx context.Context, text string, chunkSize int, cfg types.PipelineConfig) (types.PipelineResult, error) {
	cfg = cfg.Normalized()
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	base := baseSeed(cfg)
	chunks := Split(text, chunkSize, segment.OptionsFromConfig(cfg))
	parts := make([]types.PipelineResult, len(chunks))
	r.logf("split %d bytes into %d chunks", len(text), len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = r.pipeline.Transform(c.Body, chunkConfig(cfg, c.Body, rng.DeriveSeed(base, i)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.PipelineResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.PipelineResult{}, err
	}
	merged := r.merge(text, chunks, parts, cfg, base)
	merged.ChunkSize = chunkSize
	return merged, nil
}

// chunkConfig seeds cfg for one chunk and keeps only the keywords that chunk contains. The merged
// document is still validated against the full keyword list.
func chunkConfig(cfg types.PipelineConfig, body string, seed int64) types.PipelineConfig {
	out := cfg.WithSeed(seed)
	out.Constraints.Keywords = validation.KeywordsIn(body, cfg.Constraints.Keywords)
	return out
}

func (r *Runner) merge(original string, chunks []Chunk, parts []types.PipelineResult, cfg types.PipelineConfig, base int64) types.PipelineResult {
	var sb strings.Builder
	merged := types.PipelineResult{
		RunID:          uuid.NewString(),
		Profile:        parts[0].Profile,
		Language:       parts[0].Language,
		Seed:           base,
		Intensity:      cfg.Intensity,
		Changes:        []types.ChangeEntry{},
		ShortCircuited: true,
	}

	var chunkWarnings []string
	var intensity float64
	for i, part := range parts {
		sb.WriteString(part.Text)
		sb.WriteString(chunks[i].Separator)
		merged.Changes = append(merged.Changes, part.Changes...)
		intensity += part.EffectiveIntensity
		merged.ShortCircuited = merged.ShortCircuited && part.ShortCircuited
		merged.Retried = merged.Retried || part.Retried
		merged.RolledBack = merged.RolledBack || part.RolledBack
		for _, w := range part.Validation.Warnings {
			chunkWarnings = append(chunkWarnings, fmt.Sprintf("chunk %d: %s", i, w))
		}
		for _, e := range part.Validation.Errors {
			chunkWarnings = append(chunkWarnings, fmt.Sprintf("chunk %d: %s", i, e))
		}
	}
	merged.Text = sb.String()
	merged.EffectiveIntensity = intensity / float64(len(parts))

	pack := r.pipeline.Registry().Resolve(cfg.Language, original)
	maskedBefore, _ := segment.Protect(original, segment.OptionsFromConfig(cfg))
	maskedAfter, _ := segment.Protect(merged.Text, segment.OptionsFromConfig(cfg))
	merged.MetricsBefore = metrics.Score(maskedBefore, pack)
	merged.MetricsAfter = metrics.Score(maskedAfter, pack)

	report := validation.Validate(original, merged.Text, cfg, nil)
	report.Warnings = append(report.Warnings, chunkWarnings...)
	merged.Validation = report
	merged.ChangeRatio = report.ChangeRatio
	merged.QualityScore = pipeline.QualityScore(merged.MetricsAfter.Artificiality, report)
	return merged
}
