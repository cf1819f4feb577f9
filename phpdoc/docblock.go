package phpdoc

import (
	"strings"
)

// Assessment is the verdict on an existing docblock.
type Assessment string

const (
	AssessmentNone       Assessment = ""
	AssessmentSufficient Assessment = "sufficient"
	AssessmentVague      Assessment = "vague"
	AssessmentIncomplete Assessment = "incomplete"
)

// Valid reports whether a is one of the known verdicts.
func (a Assessment) Valid() bool {
	switch a {
	case AssessmentSufficient, AssessmentVague, AssessmentIncomplete:
		return true
	}
	return false
}

// ParamTag is one @param line.
type ParamTag struct {
	Name        string // without '$'
	Type        string
	Description string
	Variadic    bool
	ByRef       bool
}

// ReturnTag is the @return line.
type ReturnTag struct {
	Type        string
	Description string
}

// Candidate is a generated docblock for one method.
type Candidate struct {
	Summary    string
	Params     []ParamTag
	Return     *ReturnTag
	Assessment Assessment
}

// ParsedDocblock is the structured content of an existing docblock.
type ParsedDocblock struct {
	Summary string
	Params  []ParamTag
	Return  *ReturnTag
	// Extra holds every other tag verbatim, continuation lines included.
	Extra []string
}

// ParseDocblock reads a /** */ comment. Text outside the delimiters is ignored.
func ParseDocblock(text string) ParsedDocblock {
	var out ParsedDocblock
	var summary []string

	// current tag being accumulated, as raw text
	var tag []string
	flush := func() {
		if len(tag) == 0 {
			return
		}
		raw := strings.Join(tag, "\n")
		tag = nil
		name, rest, _ := strings.Cut(raw, " ")
		switch strings.TrimRight(name, "\n") {
		case "@param":
			out.Params = append(out.Params, parseParamTag(rest))
		case "@return", "@returns":
			typ, desc := splitTypeToken(strings.TrimSpace(rest))
			out.Return = &ReturnTag{Type: typ, Description: desc}
		default:
			out.Extra = append(out.Extra, raw)
		}
	}

	for _, line := range docLines(text) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			flush()
			tag = append(tag, trimmed)
		case len(tag) > 0:
			if trimmed != "" {
				tag = append(tag, trimmed)
			}
		default:
			summary = append(summary, trimmed)
		}
	}
	flush()

	out.Summary = strings.TrimSpace(strings.Join(summary, "\n"))
	return out
}

// docLines strips the comment delimiters and leading asterisks.
func docLines(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, " ")
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

func parseParamTag(rest string) ParamTag {
	rest = strings.TrimSpace(rest)
	var tag ParamTag
	if !strings.HasPrefix(rest, "$") && !strings.HasPrefix(rest, "...") && !strings.HasPrefix(rest, "&") {
		tag.Type, rest = splitTypeToken(rest)
	}
	name, desc, _ := strings.Cut(rest, " ")
	if strings.HasPrefix(name, "&") {
		tag.ByRef = true
		name = name[1:]
	}
	if strings.HasPrefix(name, "...") {
		tag.Variadic = true
		name = name[3:]
	}
	tag.Name = strings.TrimPrefix(name, "$")
	tag.Description = strings.TrimSpace(desc)
	return tag
}

// splitTypeToken splits a leading type expression, which may contain spaces
// inside generics or shapes, from the rest of the line.
func splitTypeToken(s string) (typ, rest string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n':
			if depth == 0 {
				return s[:i], strings.TrimSpace(s[i+1:])
			}
		}
	}
	return s, ""
}

// RenderOptions controls the layout of a rendered docblock.
type RenderOptions struct {
	Indent string // prefix for every line after the first
	EOL    string // "\n" when empty
	Extra  []string
}

// Render formats c as a docblock. The first line carries no indentation so
// the result can be spliced at an indented insertion point.
func Render(c Candidate, opts RenderOptions) string {
	eol := opts.EOL
	if eol == "" {
		eol = "\n"
	}

	lines := []string{"/**"}
	for _, line := range strings.Split(sanitize(strings.TrimSpace(c.Summary)), "\n") {
		lines = append(lines, star(strings.TrimSpace(line)))
	}

	var tags []string
	for _, p := range c.Params {
		tags = append(tags, joinNonEmpty("@param", typeOrMixed(p.Type), paramName(p), sanitize(p.Description)))
	}
	if c.Return != nil {
		tags = append(tags, joinNonEmpty("@return", typeOrMixed(c.Return.Type), sanitize(c.Return.Description)))
	}
	for _, extra := range opts.Extra {
		tags = append(tags, sanitize(extra))
	}
	if len(tags) > 0 {
		lines = append(lines, star(""))
		for _, t := range tags {
			for _, line := range strings.Split(t, "\n") {
				lines = append(lines, star(strings.TrimSpace(line)))
			}
		}
	}
	lines = append(lines, " */")

	for i := 1; i < len(lines); i++ {
		lines[i] = opts.Indent + lines[i]
	}
	return strings.Join(lines, eol)
}

// DetectEOL returns "\r\n" when src uses Windows line endings, else "\n".
func DetectEOL(src string) string {
	if strings.Contains(src, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func star(s string) string {
	if s == "" {
		return " *"
	}
	return " * " + s
}

func typeOrMixed(t string) string {
	if strings.TrimSpace(t) == "" {
		return "mixed"
	}
	return strings.TrimSpace(t)
}

func paramName(p ParamTag) string {
	name := "$" + p.Name
	if p.Variadic {
		name = "..." + name
	}
	if p.ByRef {
		name = "&" + name
	}
	return name
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// sanitize keeps generated prose from closing the comment early.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "*/", "*\\/")
}
