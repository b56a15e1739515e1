// Package pipeline wires the adaptation stages together: context + draft
// guidance through the sensitivity analyzer and adaptation engine, then
// optionally through the communication style selector applied to the
// adapted text.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/accord/internal/adaptation"
	"github.com/kalambet/accord/internal/guidance"
	"github.com/kalambet/accord/internal/style"
)

const defaultBatchConcurrency = 4

// Request is one adaptation job.
type Request struct {
	Context         adaptation.Context     `json:"context"`
	Guidance        guidance.LegalGuidance `json:"guidance"`
	ApplyStyle      bool                   `json:"apply_style,omitempty"`
	StylePreference string                 `json:"style_preference,omitempty"` // "formal" or "casual"
}

// Result carries the adapted document and, when style application was
// requested, the selected style adaptation.
type Result struct {
	Adapted adaptation.AdaptedGuidance `json:"adapted"`
	Style   *style.Adaptation          `json:"style,omitempty"`
}

// Adapter orchestrates the engine and the style selector. All stages are
// pure, so an Adapter is safe for concurrent use.
type Adapter struct {
	engine      *adaptation.Engine
	selector    *style.Selector
	concurrency int
}

// NewAdapter creates an Adapter. batchConcurrency bounds AdaptBatch
// fan-out; values <= 0 use the default.
func NewAdapter(engine *adaptation.Engine, selector *style.Selector, batchConcurrency int) *Adapter {
	if engine == nil {
		engine = adaptation.NewEngine(nil)
	}
	if selector == nil {
		selector = style.NewSelector()
	}
	if batchConcurrency <= 0 {
		batchConcurrency = defaultBatchConcurrency
	}
	return &Adapter{engine: engine, selector: selector, concurrency: batchConcurrency}
}

// Adapt runs one request through the pipeline. When style application is
// requested, the selector's substitution patterns are applied to each
// adapted step description; the cultural-nuance block is returned on the
// Result for the renderer to place once, rather than repeated per step.
func (a *Adapter) Adapt(req Request) Result {
	res := Result{Adapted: a.engine.Adapt(req.Guidance, req.Context)}
	if !req.ApplyStyle {
		return res
	}

	sa := a.selector.Select(style.Context{
		Background:     req.Context.UserBackground,
		LegalCategory:  req.Context.LegalCategory,
		Urgency:        req.Context.Urgency,
		Language:       req.Context.Language,
		UserPreference: req.StylePreference,
		Jurisdiction:   req.Context.Jurisdiction,
	})

	patternsOnly := sa
	patternsOnly.CulturalNuances = nil
	for i := range res.Adapted.Steps {
		res.Adapted.Steps[i].Description = style.Apply(res.Adapted.Steps[i].Description, patternsOnly)
	}

	res.Style = &sa
	return res
}

// AdaptBatch fans a batch out over a bounded errgroup. Results are
// positional. The only possible error is context cancellation — the
// pipeline stages themselves cannot fail.
func (a *Adapter) AdaptBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Adapt(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
