// Package transform turns classified source units into complete,
// compilable programs. Programs pass through untouched; fragments and
// expressions are wrapped in a synthesized entry point.
package transform

import (
	"fmt"
	"strings"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

// wrapHeader silences the lints that wrapped one-off snippets trip
// constantly. It is only emitted for synthesized wrappers, never for
// complete programs.
const wrapHeader = "#![allow(unused_imports, unused_macros, unused_variables, dead_code)]"

// Transformer produces the final source text handed to the toolchain.
type Transformer struct {
	logger ports.Logger
}

func New(logger ports.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform returns the compilable source for the unit. The unit itself
// is never mutated, so transforming twice yields the same output.
func (t *Transformer) Transform(unit *domain.SourceUnit) (string, error) {
	switch unit.Kind {
	case domain.KindProgram:
		return ensureTrailingNewline(unit.Source), nil

	case domain.KindFragment, domain.KindExpression:
		if unit.EntryPoints > 0 {
			return "", zerr.With(
				zerr.Wrap(domain.ErrTransform, "cannot wrap source that already declares an entry point"),
				"file", unit.Name.String(),
			)
		}
		return t.wrap(unit), nil

	default:
		return "", zerr.With(
			zerr.Wrap(domain.ErrTransform, "unknown source kind"),
			"kind", int(unit.Kind),
		)
	}
}

// wrap synthesizes the entry point around a fragment or expression.
// Inner attributes only apply at the crate root, so they are promoted
// out of the body and into the file header.
func (t *Transformer) wrap(unit *domain.SourceUnit) string {
	var b strings.Builder
	b.WriteString(wrapHeader)
	b.WriteByte('\n')
	for _, attr := range unit.InnerAttributes {
		b.WriteString(attr)
		b.WriteByte('\n')
	}
	b.WriteString("use std::error::Error;\n\n")
	b.WriteString("fn main() -> Result<(), Box<dyn Error>> {\n")
	b.WriteString(indent(t.body(unit)))
	b.WriteString("    Ok(())\n}\n")

	t.logger.Debug(fmt.Sprintf("wrapped %s as %s", unit.Name, kindName(unit.Kind)))
	return b.String()
}

// body returns the unindented wrapper body. For expression units the
// statements before the trailing expression stay verbatim; the tail is
// rendered through the debug formatter unless it is unit-typed, in
// which case it runs as a plain statement.
func (t *Transformer) body(unit *domain.SourceUnit) string {
	if unit.Kind == domain.KindFragment {
		return stripInnerAttributes(unit.Source)
	}

	prefix := stripInnerAttributes(unit.Source[:unit.TailStart])
	tail := unit.Source[unit.TailStart:unit.TailEnd]
	rest := unit.Source[unit.TailEnd:]

	var rendered string
	switch {
	case unit.Value == domain.ValueUnit:
		rendered = tail + ";"
	case strings.Contains(tail, "\n"):
		// Keep the closing parenthesis off the expression's last line so
		// a trailing line comment cannot swallow it.
		rendered = "println!(\"{:?}\",\n" + tail + "\n);"
	default:
		rendered = fmt.Sprintf("println!(\"{:?}\", %s);", tail)
	}
	return prefix + rendered + rest
}

func kindName(kind domain.SourceKind) string {
	if kind == domain.KindExpression {
		return "expression"
	}
	return "fragment"
}

// stripInnerAttributes removes crate-level attribute lines from the
// body text; Transform re-emits them at the top of the file.
func stripInnerAttributes(source string) string {
	lines := strings.Split(source, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#![") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func indent(body string) string {
	body = strings.TrimRight(body, "\n \t")
	if body == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
