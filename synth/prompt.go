package synth

import (
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/docblock/phpdoc"
)

const systemPrompt = `You write PHPDoc comments for PHP methods.

Reply with a single JSON object and nothing else:
{
  "summary": "one to three sentences describing what the method does",
  "params": [{"name": "parameter name without $", "type": "PHP type", "description": "what the parameter is"}],
  "return": {"type": "PHP type", "description": "what is returned"} or null,
  "assessment": "sufficient" | "vague" | "incomplete" | null
}

Rules:
- "params" has exactly one entry per declared parameter, in declaration order.
- Use declared type hints when present. Otherwise infer a type from the body, or use "mixed".
- "return" is null when the method returns nothing.
- "assessment" is only set when an existing docblock is supplied.`

// BuildPrompt renders the user message for rec.
func BuildPrompt(rec phpdoc.MethodRecord, body string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Method: %s\n", rec.Name)
	fmt.Fprintf(&b, "Visibility: %s\n", rec.Visibility)
	if mods := strings.Join(rec.Modifiers, " "); mods != "" {
		fmt.Fprintf(&b, "Modifiers: %s\n", mods)
	}
	fmt.Fprintf(&b, "Signature: %s\n", rec.SignatureText())

	if len(rec.Signature.Params) == 0 {
		b.WriteString("Parameters: none\n")
	} else {
		fmt.Fprintf(&b, "Parameters (%d, in order):\n", len(rec.Signature.Params))
		for i, p := range rec.Signature.Params {
			typ := p.Type
			if typ == "" {
				typ = "untyped"
			}
			fmt.Fprintf(&b, "%d. $%s (type: %s", i+1, p.Name, typ)
			if p.HasDefault {
				fmt.Fprintf(&b, ", default: %s", p.Default)
			}
			if p.Variadic {
				b.WriteString(", variadic")
			}
			if p.ByRef {
				b.WriteString(", by reference")
			}
			b.WriteString(")\n")
		}
	}

	if rec.Signature.ReturnType != "" {
		fmt.Fprintf(&b, "Return type hint: %s\n", rec.Signature.ReturnType)
	} else {
		b.WriteString("Return type hint: none declared\n")
	}

	if strings.TrimSpace(body) == "" {
		b.WriteString("\nThe method is abstract and has no body.\n")
	} else {
		fmt.Fprintf(&b, "\nBody:\n```php\n%s\n```\n", body)
	}

	if rec.Existing != nil {
		fmt.Fprintf(&b, "\nExisting docblock:\n%s\n", rec.Existing.Text)
		b.WriteString("\nAssess the existing docblock against the code. Set \"assessment\" to " +
			"\"sufficient\" if it already describes the method and every parameter accurately, " +
			"\"vague\" if it is too generic to be useful, or \"incomplete\" if it misses parameters, " +
			"the return value or important behaviour. Always return an improved docblock in the other fields.\n")
	}
	return b.String()
}
