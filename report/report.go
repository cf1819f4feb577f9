// Package report renders pipeline results for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aschepis/backscratcher/docblock/phpdoc"
	"github.com/aschepis/backscratcher/docblock/pipeline"
	"gopkg.in/yaml.v3"
)

// Format selects the report encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Summary counts entries per outcome.
type Summary struct {
	Inserted          int `json:"inserted" yaml:"inserted"`
	Updated           int `json:"updated" yaml:"updated"`
	SkippedSufficient int `json:"skipped_sufficient" yaml:"skipped_sufficient"`
	SkippedVisibility int `json:"skipped_visibility" yaml:"skipped_visibility"`
	Failed            int `json:"failed" yaml:"failed"`
}

// Document is the structured form of a report.
type Document struct {
	File     string           `json:"file" yaml:"file"`
	Changed  bool             `json:"changed" yaml:"changed"`
	Summary  Summary          `json:"summary" yaml:"summary"`
	Methods  []pipeline.Entry `json:"methods" yaml:"methods"`
	Warnings []phpdoc.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewDocument builds the structured report for r.
func NewDocument(r *pipeline.Result) Document {
	methods := r.Entries
	if methods == nil {
		methods = []pipeline.Entry{}
	}
	return Document{
		File:    r.File,
		Changed: r.Changed,
		Summary: Summary{
			Inserted:          r.Count(pipeline.OutcomeInserted),
			Updated:           r.Count(pipeline.OutcomeUpdated),
			SkippedSufficient: r.Count(pipeline.OutcomeSkippedSufficient),
			SkippedVisibility: r.Count(pipeline.OutcomeSkippedVisibility),
			Failed:            r.Count(pipeline.OutcomeFailed),
		},
		Methods:  methods,
		Warnings: r.Warnings,
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *pipeline.Result, format Format) error {
	doc := NewDocument(r)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatMarkdown, "":
		_, err := io.WriteString(w, Markdown(doc))
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Markdown renders doc as a Markdown document.
func Markdown(doc Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Docblock report: %s\n\n", doc.File)
	if doc.Changed {
		b.WriteString("The file was updated.\n\n")
	} else {
		b.WriteString("No changes were made.\n\n")
	}

	b.WriteString("| Outcome | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Inserted | %d |\n", doc.Summary.Inserted)
	fmt.Fprintf(&b, "| Updated | %d |\n", doc.Summary.Updated)
	fmt.Fprintf(&b, "| Skipped (sufficient) | %d |\n", doc.Summary.SkippedSufficient)
	if doc.Summary.SkippedVisibility > 0 {
		fmt.Fprintf(&b, "| Skipped (visibility) | %d |\n", doc.Summary.SkippedVisibility)
	}
	fmt.Fprintf(&b, "| Failed | %d |\n", doc.Summary.Failed)

	b.WriteString("\n## Methods\n\n")
	if len(doc.Methods) == 0 {
		b.WriteString("No eligible methods found.\n")
	} else {
		b.WriteString("| Method | Line | Visibility | Outcome | Reason |\n|---|---|---|---|---|\n")
		for _, e := range doc.Methods {
			fmt.Fprintf(&b, "| `%s` | %d | %s | %s | %s |\n", e.Method, e.Line, e.Visibility, e.Outcome, escapeCell(e.Reason))
		}
	}

	if len(doc.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
