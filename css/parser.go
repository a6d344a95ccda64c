package css

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into ordered selector/declaration pairs.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// LoadStyles reads stylesheet file and returns its rules in source order.
func LoadStyles(path string, log *zap.Logger) ([]Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	p := NewParser(log)
	sheet := p.Parse(data, path)
	if ce := p.log.Check(zap.DebugLevel, "Stylesheet loaded"); ce != nil {
		ce.Write(zap.String("path", path), zap.Strings("warnings", sheet.Warnings), zap.Stringer("rules", sheet))
	}
	return sheet.Styles, nil
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what is being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Styles:   make([]Style, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(parser.Err()))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "skipped block at-rule: "+atRule)
			p.log.Debug("Skipping @-rule block", zap.String("rule", atRule))
			p.skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "skipped at-rule: "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.BeginRulesetGrammar:
			selector := normalizeSelector(data, parser.Values())
			decls := parseDeclarations(parser)
			sheet.Styles = append(sheet.Styles, Style{Selector: selector, Props: formatDeclarations(decls)})

		case css.QualifiedRuleGrammar:
			// selector without a block, e.g. "a, b" followed by garbage
			sheet.Warnings = append(sheet.Warnings, "qualified rule without block: "+normalizeSelector(data, parser.Values()))
		}
	}
}

// ParseDeclarations parses inline declaration text ("color: red; padding: 2px")
// into ordered declarations. Later duplicates are kept, consumers apply them
// in order.
func ParseDeclarations(text string) []Declaration {
	parser := css.NewParser(parse.NewInputString(text), true)

	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls
		case css.DeclarationGrammar:
			if value := joinTokens(parser.Values()); value != "" {
				decls = append(decls, Declaration{Property: strings.ToLower(string(data)), Value: value})
			}
		}
	}
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			if value := joinTokens(parser.Values()); value != "" {
				decls = append(decls, Declaration{Property: strings.ToLower(string(data)), Value: value})
			}

		case css.BeginRulesetGrammar:
			// nested ruleset, not supported - drop it with its content
			skipRuleset(parser)
		}
	}
}

// normalizeSelector builds selector text from token data collapsing
// whitespace, grouped selectors are joined with ", ".
func normalizeSelector(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var parts []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// joinTokens builds value text: runs of whitespace become single space and
// every comma is followed by exactly one space, "rgb(1,2,3)" gives
// "rgb(1, 2, 3)".
func joinTokens(tokens []css.Token) string {
	var (
		sb      strings.Builder
		pending bool // whitespace seen after last emitted token
	)
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			pending = sb.Len() > 0
			continue
		case css.CommaToken:
			sb.WriteString(", ")
			pending = false
			continue
		}
		if pending && t.TokenType != css.RightParenthesisToken && !strings.HasSuffix(sb.String(), " ") && !strings.HasSuffix(sb.String(), "(") {
			sb.WriteByte(' ')
		}
		pending = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func skipRuleset(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginRulesetGrammar:
			depth++
		case css.EndRulesetGrammar:
			depth--
		}
	}
}
