// Package pipeline drives one PHP file through locate, synthesize and merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aschepis/backscratcher/docblock/merge"
	"github.com/aschepis/backscratcher/docblock/phpdoc"
	"github.com/aschepis/backscratcher/docblock/synth"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous outbound requests.
const DefaultConcurrency = 4

// Synthesizer produces a candidate for one method.
type Synthesizer interface {
	Synthesize(ctx context.Context, rec phpdoc.MethodRecord, body string) (phpdoc.Candidate, error)
}

// VisibilityPolicy says what to do with non-public methods.
type VisibilityPolicy string

const (
	// PolicyHide leaves the method out of the run and the report.
	PolicyHide VisibilityPolicy = "hide"
	// PolicyReport lists the method as skipped.
	PolicyReport VisibilityPolicy = "report"
	// PolicyDocument treats the method like a public one.
	PolicyDocument VisibilityPolicy = "document"
)

// Valid reports whether p is a known policy.
func (p VisibilityPolicy) Valid() bool {
	switch p {
	case PolicyHide, PolicyReport, PolicyDocument:
		return true
	}
	return false
}

// Options configures a Pipeline.
type Options struct {
	Concurrency int
	// Timeout bounds the whole synthesis phase. Zero means no limit.
	Timeout   time.Duration
	Protected VisibilityPolicy
	Private   VisibilityPolicy
}

// Outcome is the per-method result.
type Outcome string

const (
	OutcomeInserted          Outcome = "inserted"
	OutcomeUpdated           Outcome = "updated"
	OutcomeSkippedSufficient Outcome = "skipped-sufficient"
	OutcomeSkippedVisibility Outcome = "skipped-visibility"
	OutcomeFailed            Outcome = "failed"
)

// Entry is one line of the report.
type Entry struct {
	Method     string            `json:"method" yaml:"method"`
	Line       int               `json:"line" yaml:"line"`
	Visibility phpdoc.Visibility `json:"visibility" yaml:"visibility"`
	Outcome    Outcome           `json:"outcome" yaml:"outcome"`
	Reason     string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	Attempts   int               `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Result is the output of one run.
type Result struct {
	File     string           `json:"file" yaml:"file"`
	Text     string           `json:"-" yaml:"-"`
	Changed  bool             `json:"changed" yaml:"changed"`
	Entries  []Entry          `json:"entries" yaml:"entries"`
	Warnings []phpdoc.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Count returns how many entries have the given outcome.
func (r *Result) Count(o Outcome) int {
	return lo.CountBy(r.Entries, func(e Entry) bool { return e.Outcome == o })
}

// Failed reports whether any method failed.
func (r *Result) Failed() bool {
	return r.Count(OutcomeFailed) > 0
}

// Pipeline processes one file at a time. It holds no per-file state and may
// be reused.
type Pipeline struct {
	locator phpdoc.Locator
	synth   Synthesizer
	opts    Options
	logger  zerolog.Logger
}

// New creates a Pipeline.
func New(locator phpdoc.Locator, synth Synthesizer, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if !opts.Protected.Valid() {
		opts.Protected = PolicyHide
	}
	if !opts.Private.Valid() {
		opts.Private = PolicyHide
	}
	return &Pipeline{
		locator: locator,
		synth:   synth,
		opts:    opts,
		logger:  logger.With().Str("component", "pipeline").Logger(),
	}
}

func (p *Pipeline) policyFor(v phpdoc.Visibility) VisibilityPolicy {
	switch v {
	case phpdoc.Protected:
		return p.opts.Protected
	case phpdoc.Private:
		return p.opts.Private
	default:
		return PolicyDocument
	}
}

type job struct {
	entry int // index into Result.Entries
	rec   phpdoc.MethodRecord
}

type outcome struct {
	cand phpdoc.Candidate
	err  error
}

// Run documents the methods of src. It never fails: per-method problems are
// reported in the result and src is returned unchanged when nothing applies.
func (p *Pipeline) Run(ctx context.Context, file, src string) *Result {
	logger := p.logger.With().Str("file", file).Logger()
	result := &Result{File: file, Text: src}

	records, warnings := p.locator.Locate(src)
	result.Warnings = warnings
	for _, w := range warnings {
		logger.Warn().Int("line", w.Line).Msg(w.Message)
	}

	var jobs []job
	for _, rec := range records {
		entry := Entry{Method: rec.Name, Line: rec.Line, Visibility: rec.Visibility}
		switch p.policyFor(rec.Visibility) {
		case PolicyHide:
			continue
		case PolicyReport:
			entry.Outcome = OutcomeSkippedVisibility
			entry.Reason = rec.Visibility.String() + " method"
			result.Entries = append(result.Entries, entry)
			continue
		}
		result.Entries = append(result.Entries, entry)
		jobs = append(jobs, job{entry: len(result.Entries) - 1, rec: rec})
	}
	logger.Info().Int("methods", len(records)).Int("eligible", len(jobs)).Msg("located methods")

	outcomes := p.synthesizeAll(ctx, src, jobs)

	var edits []merge.Edit
	var editJobs []job
	for i, j := range jobs {
		o := outcomes[i]
		if o.err != nil {
			result.Entries[j.entry].Outcome = OutcomeFailed
			result.Entries[j.entry].Reason = failureReason(o.err)
			var genErr *synth.GenerationError
			if errors.As(o.err, &genErr) {
				result.Entries[j.entry].Attempts = genErr.Attempts
			}
			continue
		}
		edits = append(edits, merge.Edit{Record: j.rec, Candidate: o.cand})
		editJobs = append(editJobs, j)
	}

	text, decisions := merge.ApplyAll(src, edits)
	for i, d := range decisions {
		e := &result.Entries[editJobs[i].entry]
		switch d {
		case merge.Inserted:
			e.Outcome = OutcomeInserted
		case merge.Updated:
			e.Outcome = OutcomeUpdated
		default:
			e.Outcome = OutcomeSkippedSufficient
		}
	}

	result.Text = text
	result.Changed = text != src
	logger.Info().
		Int("inserted", result.Count(OutcomeInserted)).
		Int("updated", result.Count(OutcomeUpdated)).
		Int("sufficient", result.Count(OutcomeSkippedSufficient)).
		Int("failed", result.Count(OutcomeFailed)).
		Msg("file processed")
	return result
}

// synthesizeAll runs the synthesizer for every job with bounded concurrency.
// Each worker writes only its own slot; failures never cancel siblings.
func (p *Pipeline) synthesizeAll(ctx context.Context, src string, jobs []job) []outcome {
	outcomes := make([]outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{err: &synth.GenerationError{Kind: synth.KindCancelled, Method: j.rec.Name, Err: err}}
				return nil
			}
			cand, err := p.synth.Synthesize(ctx, j.rec, j.rec.Body(src))
			outcomes[i] = outcome{cand: cand, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func failureReason(err error) string {
	var genErr *synth.GenerationError
	if errors.As(err, &genErr) {
		if genErr.Err != nil {
			return fmt.Sprintf("%s: %v", genErr.Kind, genErr.Err)
		}
		return string(genErr.Kind)
	}
	return err.Error()
}
