package phpdoc

import (
	"fmt"
	"strings"
)

// Visibility is the declared access level of a method.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// String returns the PHP keyword for v.
func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// MarshalText implements encoding.TextMarshaler so reports render the keyword.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVisibility maps a modifier keyword onto a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(s) {
	case "public", "":
		return Public, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	default:
		return Public, fmt.Errorf("unknown visibility %q", s)
	}
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Param is one declared parameter.
type Param struct {
	Name       string // without the leading '$'
	Type       string // empty when untyped
	Default    string // raw default expression, empty when absent
	HasDefault bool
	ByRef      bool
	Variadic   bool
}

// Signature is a method's parameter list and return hint.
type Signature struct {
	Params     []Param
	ReturnType string // empty when no hint is declared
}

// Docblock is a /** */ comment found directly above a declaration.
type Docblock struct {
	Span Span
	Text string
}

// MethodRecord describes one located method. Records are immutable once
// returned by a Locator.
type MethodRecord struct {
	Name       string
	Visibility Visibility
	Modifiers  []string // lowercased, in source order
	Signature  Signature

	// DeclSpan covers the first attribute or modifier through the end of the body.
	DeclSpan Span
	// BodySpan covers the braces of the body. Abstract methods have an empty
	// span positioned at the terminating ';'.
	BodySpan Span
	Existing *Docblock

	// InsertionPoint is Existing.Span.Start when a docblock exists, otherwise
	// the start of the declaration.
	InsertionPoint int
	// Indent is the leading whitespace of the line holding InsertionPoint.
	Indent string
	Line   int // 1-based line of the declaration
}

// Body returns the body text of r within src.
func (r MethodRecord) Body(src string) string {
	if r.BodySpan.Start < 0 || r.BodySpan.End > len(src) || r.BodySpan.Start > r.BodySpan.End {
		return ""
	}
	return src[r.BodySpan.Start:r.BodySpan.End]
}

// HasModifier reports whether the declaration carries the given keyword.
func (r MethodRecord) HasModifier(mod string) bool {
	for _, m := range r.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// SignatureText renders the parameter list and return hint as PHP source.
func (r MethodRecord) SignatureText() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('(')
	for i, p := range r.Signature.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if r.Signature.ReturnType != "" {
		b.WriteString(": ")
		b.WriteString(r.Signature.ReturnType)
	}
	return b.String()
}

// String renders p as it would appear in a parameter list.
func (p Param) String() string {
	var b strings.Builder
	if p.Type != "" {
		b.WriteString(p.Type)
		b.WriteByte(' ')
	}
	if p.ByRef {
		b.WriteByte('&')
	}
	if p.Variadic {
		b.WriteString("...")
	}
	b.WriteByte('$')
	b.WriteString(p.Name)
	if p.HasDefault {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
	return b.String()
}

// Warning is a non-fatal problem found while scanning. The affected region
// is skipped.
type Warning struct {
	Offset  int    `json:"offset" yaml:"offset"`
	Line    int    `json:"line" yaml:"line"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Locator extracts method records from PHP source text. Implementations never
// fail: unparseable regions are reported as warnings and skipped.
type Locator interface {
	Locate(src string) ([]MethodRecord, []Warning)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(src string) ([]MethodRecord, []Warning)

// Locate calls f.
func (f LocatorFunc) Locate(src string) ([]MethodRecord, []Warning) { return f(src) }

// lineOf returns the 1-based line number of offset in src.
func lineOf(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}

// indentAt returns the leading whitespace of the line containing offset.
func indentAt(src string, offset int) string {
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	end := lineStart
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[lineStart:end]
}
