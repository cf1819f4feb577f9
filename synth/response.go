package synth

import (
	"encoding/json"
	"strings"

	"github.com/aschepis/backscratcher/docblock/phpdoc"
)

type responsePayload struct {
	Summary string `json:"summary"`
	Params  []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"params"`
	Return *struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"return"`
	Assessment *string `json:"assessment"`
}

// ParseCandidate decodes a service reply into a candidate for rec. Parameter
// names, by-reference and variadic flags come from the signature by position.
// Declared type hints win over the model's types.
func ParseCandidate(rec phpdoc.MethodRecord, text string) (phpdoc.Candidate, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return phpdoc.Candidate{}, invalidf("response is not a JSON object")
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return phpdoc.Candidate{}, invalidf("decode response: %v", err)
	}

	cand := phpdoc.Candidate{Summary: strings.TrimSpace(payload.Summary)}
	if cand.Summary == "" {
		return phpdoc.Candidate{}, invalidf("summary is empty")
	}

	declared := rec.Signature.Params
	if len(payload.Params) != len(declared) {
		return phpdoc.Candidate{}, invalidf("expected %d param tags, got %d", len(declared), len(payload.Params))
	}
	for i, p := range declared {
		typ := p.Type
		if typ == "" {
			typ = strings.TrimSpace(payload.Params[i].Type)
		}
		cand.Params = append(cand.Params, phpdoc.ParamTag{
			Name:        p.Name,
			Type:        typ,
			Description: strings.TrimSpace(payload.Params[i].Description),
			Variadic:    p.Variadic,
			ByRef:       p.ByRef,
		})
	}

	hint := rec.Signature.ReturnType
	switch {
	case returnsNothing(hint) || strings.EqualFold(rec.Name, "__construct"):
		// no return tag
	case hint != "":
		if payload.Return == nil {
			return phpdoc.Candidate{}, invalidf("missing return tag for declared return type %s", hint)
		}
		cand.Return = &phpdoc.ReturnTag{Type: hint, Description: strings.TrimSpace(payload.Return.Description)}
	case payload.Return != nil && !returnsNothing(payload.Return.Type):
		cand.Return = &phpdoc.ReturnTag{
			Type:        strings.TrimSpace(payload.Return.Type),
			Description: strings.TrimSpace(payload.Return.Description),
		}
	}

	if rec.Existing != nil {
		if payload.Assessment == nil {
			return phpdoc.Candidate{}, invalidf("missing assessment of the existing docblock")
		}
		cand.Assessment = phpdoc.Assessment(strings.ToLower(strings.TrimSpace(*payload.Assessment)))
		if !cand.Assessment.Valid() {
			return phpdoc.Candidate{}, invalidf("unknown assessment %q", *payload.Assessment)
		}
	}
	return cand, nil
}

func returnsNothing(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "void", "never":
		return true
	}
	return false
}

// extractJSON tolerates code fences and prose around the object.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
