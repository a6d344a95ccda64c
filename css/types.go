package css

import "strings"

// Style is a single stylesheet rule: selector text and its declarations
// serialized as "name: value; name: value".
type Style struct {
	Selector string `yaml:"selector"`
	Props    string `yaml:"props"`
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Stylesheet is the ordered list of rules produced by Parser.
type Stylesheet struct {
	Styles   []Style  // plain rules in source order
	Warnings []string // skipped or unsupported constructs
}

// Selectors splits grouped selector text ("th, td") into its parts.
func (s Style) Selectors() []string {
	var out []string
	for part := range strings.SplitSeq(s.Selector, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Declarations parses Props back into ordered declarations.
func (s Style) Declarations() []Declaration {
	return ParseDeclarations(s.Props)
}

// String returns stylesheet text, one rule per line.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	for _, st := range s.Styles {
		sb.WriteString(st.Selector)
		sb.WriteString(" { ")
		sb.WriteString(st.Props)
		sb.WriteString(" }\n")
	}
	return sb.String()
}

func formatDeclarations(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}
