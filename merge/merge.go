// Package merge splices generated docblocks into PHP source text.
package merge

import (
	"sort"

	"github.com/aschepis/backscratcher/docblock/phpdoc"
)

// Decision is what the merger did for one method.
type Decision string

const (
	Inserted  Decision = "inserted"
	Updated   Decision = "updated"
	Unchanged Decision = "unchanged"
)

// Splice replaces Span in the source with Text.
type Splice struct {
	Span phpdoc.Span
	Text string
}

// Plan decides how cand applies to rec without touching src. The returned
// splice is meaningful only when the decision is Inserted or Updated.
//
// An existing docblock is replaced only when the candidate judged it vague or
// incomplete. A missing assessment keeps the existing block.
func Plan(src string, rec phpdoc.MethodRecord, cand phpdoc.Candidate) (Splice, Decision) {
	eol := phpdoc.DetectEOL(src)

	if rec.Existing == nil {
		block := phpdoc.Render(cand, phpdoc.RenderOptions{Indent: rec.Indent, EOL: eol})
		return Splice{
			Span: phpdoc.Span{Start: rec.InsertionPoint, End: rec.InsertionPoint},
			Text: block + eol + rec.Indent,
		}, Inserted
	}

	switch cand.Assessment {
	case phpdoc.AssessmentVague, phpdoc.AssessmentIncomplete:
	default:
		return Splice{}, Unchanged
	}

	existing := phpdoc.ParseDocblock(rec.Existing.Text)
	block := phpdoc.Render(cand, phpdoc.RenderOptions{
		Indent: rec.Indent,
		EOL:    eol,
		Extra:  existing.Extra,
	})
	return Splice{Span: rec.Existing.Span, Text: block}, Updated
}

// Merge applies cand for rec to src.
func Merge(src string, rec phpdoc.MethodRecord, cand phpdoc.Candidate) (string, Decision) {
	splice, decision := Plan(src, rec, cand)
	if decision == Unchanged {
		return src, decision
	}
	return apply(src, splice), decision
}

// Edit pairs a located method with its generated candidate.
type Edit struct {
	Record    phpdoc.MethodRecord
	Candidate phpdoc.Candidate
}

// ApplyAll merges every edit into src. Splices are applied from the highest
// offset down so earlier offsets stay valid. Decisions are returned in the
// order of edits.
func ApplyAll(src string, edits []Edit) (string, []Decision) {
	decisions := make([]Decision, len(edits))
	splices := make([]Splice, len(edits))
	for i, e := range edits {
		splices[i], decisions[i] = Plan(src, e.Record, e.Candidate)
	}

	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return edits[order[a]].Record.InsertionPoint > edits[order[b]].Record.InsertionPoint
	})

	out := src
	for _, i := range order {
		if decisions[i] == Unchanged {
			continue
		}
		out = apply(out, splices[i])
	}
	return out, decisions
}

func apply(src string, s Splice) string {
	return src[:s.Span.Start] + s.Text + src[s.Span.End:]
}
