package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gburgyan/go-depgraph/ast"
)

// Status is a diagnostic tool that returns a string describing the resolved
// graph. Each scope lists every binding as the consumed dependency, the
// consuming declaration and where the value comes from, followed by the
// scope's exposed dependencies. Diagnostics come last.
//
// The output is deterministic, so two resolutions of the same project produce
// the same string.
func (g *ResolvedGraph) Status() string {
	result := strings.Builder{}
	for i, s := range g.Scopes {
		if i > 0 {
			result.WriteString("\n----\n")
		}
		result.WriteString(s.Status())
	}

	if len(g.Errors) > 0 {
		if result.Len() > 0 {
			result.WriteString("\n----\n")
		}
		result.WriteString("errors:")
		for _, err := range g.Errors {
			result.WriteString("\n")
			result.WriteString(err.Error())
		}
	}
	return result.String()
}

// Status describes a single resolved scope.
func (s *ResolvedScope) Status() string {
	var lines []string
	for _, b := range s.Bindings {
		lines = append(lines, fmt.Sprintf("%v - consumed by %s - %s", b.Consumer.Dependency, b.Consumer.Method, formatProducer(b)))
	}
	sort.Strings(lines)

	result := strings.Builder{}
	result.WriteString("scope ")
	result.WriteString(s.Name())
	if s.Scope.IsRoot() {
		result.WriteString(" (root)")
	}
	for _, line := range lines {
		result.WriteString("\n")
		result.WriteString(line)
	}
	if exposed := s.Exposed(); len(exposed) > 0 {
		names := make([]string, len(exposed))
		for i, d := range exposed {
			names[i] = d.String()
		}
		result.WriteString("\nexposed: ")
		result.WriteString(strings.Join(names, ", "))
	}
	return result.String()
}

func formatProducer(b Binding) string {
	p := b.Producer
	var from string
	switch p.Kind {
	case ProducerFactoryMethod:
		from = fmt.Sprintf("%s %s: %s", p.FactoryMethod.Kind, p.FactoryMethod.Method.Name(), formatSignature(p.FactoryMethod))
	case ProducerSpread:
		from = fmt.Sprintf("spread %s.%s()", p.FactoryMethod.Method.Name(), p.SpreadMethod.Method.Name())
	case ProducerRequired:
		from = "required " + p.Required.Method.Name() + "()"
	case ProducerChildParameter:
		from = "parameter of " + p.ChildMethod.Method.String()
	}
	if b.Depth == 0 {
		return from
	}
	return fmt.Sprintf("%s from %s (depth %d)", from, p.Scope.Name(), b.Depth)
}

// formatSignature renders a factory method as "(consumed, ...) provided". This
// is used instead of the method's own String so the output does not depend on
// parameter names.
func formatSignature(fm *FactoryMethod) string {
	if fm == nil {
		return "-"
	}
	builder := strings.Builder{}
	builder.WriteString("(")
	for i, d := range fm.Consumed {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(d.String())
	}
	builder.WriteString(") ")
	builder.WriteString(fm.Provided.String())
	return builder.String()
}

// elementNames renders elements for log fields.
func elementNames(elements []ast.Element) []string {
	names := make([]string, len(elements))
	for i, el := range elements {
		names[i] = el.String()
	}
	return names
}
