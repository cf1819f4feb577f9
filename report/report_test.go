package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aschepis/backscratcher/docblock/phpdoc"
	"github.com/aschepis/backscratcher/docblock/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		File:    "src/Account.php",
		Changed: true,
		Entries: []pipeline.Entry{
			{Method: "deposit", Line: 4, Visibility: phpdoc.Public, Outcome: pipeline.OutcomeInserted},
			{Method: "audit", Line: 6, Visibility: phpdoc.Protected, Outcome: pipeline.OutcomeSkippedVisibility, Reason: "protected method"},
			{Method: "close", Line: 15, Visibility: phpdoc.Public, Outcome: pipeline.OutcomeFailed, Reason: "exhausted: a | b", Attempts: 3},
		},
		Warnings: []phpdoc.Warning{{Offset: 10, Line: 20, Message: "unterminated body for broken"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatMarkdown,
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"yml":      FormatYAML,
		"json":     FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatMarkdown))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Docblock report: src/Account.php\n"))
	assert.Contains(t, out, "The file was updated.")
	assert.Contains(t, out, "| Inserted | 1 |")
	assert.Contains(t, out, "| Skipped (visibility) | 1 |")
	assert.Contains(t, out, "| Failed | 1 |")
	assert.Contains(t, out, "| `deposit` | 4 | public | inserted |  |")
	assert.Contains(t, out, "| `close` | 15 | public | failed | exhausted: a \\| b |")
	assert.Contains(t, out, "## Warnings\n\n- line 20: unterminated body for broken\n")

	// method rows follow file order
	assert.Less(t, strings.Index(out, "`deposit`"), strings.Index(out, "`audit`"))
	assert.Less(t, strings.Index(out, "`audit`"), strings.Index(out, "`close`"))
}

func TestMarkdown_Empty(t *testing.T) {
	out := Markdown(NewDocument(&pipeline.Result{File: "a.php"}))
	assert.Contains(t, out, "No changes were made.")
	assert.Contains(t, out, "No eligible methods found.")
	assert.NotContains(t, out, "Skipped (visibility)")
	assert.NotContains(t, out, "## Warnings")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "src/Account.php", decoded["file"])

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["inserted"])
	assert.Equal(t, float64(1), summary["failed"])

	methods := decoded["methods"].([]any)
	require.Len(t, methods, 3)
	audit := methods[1].(map[string]any)
	assert.Equal(t, "protected", audit["visibility"])
	assert.Equal(t, "skipped-visibility", audit["outcome"])
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatYAML))

	var decoded struct {
		File    string `yaml:"file"`
		Summary struct {
			SkippedVisibility int `yaml:"skipped_visibility"`
		} `yaml:"summary"`
		Methods []struct {
			Method     string `yaml:"method"`
			Visibility string `yaml:"visibility"`
			Attempts   int    `yaml:"attempts"`
		} `yaml:"methods"`
		Warnings []struct {
			Line int `yaml:"line"`
		} `yaml:"warnings"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "src/Account.php", decoded.File)
	assert.Equal(t, 1, decoded.Summary.SkippedVisibility)
	require.Len(t, decoded.Methods, 3)
	assert.Equal(t, "close", decoded.Methods[2].Method)
	assert.Equal(t, "public", decoded.Methods[2].Visibility)
	assert.Equal(t, 3, decoded.Methods[2].Attempts)
	require.Len(t, decoded.Warnings, 1)
	assert.Equal(t, 20, decoded.Warnings[0].Line)
}
