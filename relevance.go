package depgraph

import (
	"sort"
	"sync"

	"github.com/gburgyan/go-depgraph/ast"
)

// Invalidator decides whether a changed declaration can affect a resolved graph.
//
// The relevant types are every scope class, objects class, spread class and
// constructed class of the graph, each with all of its supertypes except
// ast.RootTypeName. A spread of an undeclared type makes the type name
// relevant. The set is computed on first use and never changes, so an
// Invalidator may be shared between goroutines.
type Invalidator struct {
	graph *ResolvedGraph

	once     sync.Once
	relevant map[string]bool
}

// NewInvalidator returns the invalidator for g.
func NewInvalidator(g *ResolvedGraph) *Invalidator {
	return &Invalidator{graph: g}
}

func (v *Invalidator) types() map[string]bool {
	v.once.Do(func() {
		relevant := map[string]bool{}
		var add func(c ast.Class)
		add = func(c ast.Class) {
			if c == nil {
				return
			}
			name := c.QualifiedName()
			if name == ast.RootTypeName || relevant[name] {
				return
			}
			relevant[name] = true
			for _, super := range c.Supertypes() {
				add(super)
			}
		}

		for _, s := range v.graph.Scopes {
			add(s.Scope.Class)
			if s.Scope.Objects == nil {
				continue
			}
			add(s.Scope.Objects.Class)
			for _, fm := range s.Scope.Objects.FactoryMethods {
				switch {
				case fm.Spread != nil && fm.Spread.Class != nil:
					add(fm.Spread.Class)
				case fm.Spread != nil:
					// Declaring the type later changes what the spread provides.
					relevant[fm.Provided.Type] = true
				}
				if fm.Kind == KindConstructor {
					add(fm.Method.ReturnType().ResolveClass())
				}
			}
		}
		v.relevant = relevant
	})
	return v.relevant
}

// RelevantTypes returns the qualified names of the relevant types, sorted.
func (v *Invalidator) RelevantTypes() []string {
	relevant := v.types()
	names := make([]string, 0, len(relevant))
	for name := range relevant {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRelevant reports whether the named type is relevant.
func (v *Invalidator) IsRelevant(qualifiedName string) bool {
	return v.types()[qualifiedName]
}

// ShouldInvalidate reports whether a change to the given element requires the
// graph to be resolved again. The element and each of its lexical parents are
// checked; a change anywhere inside a relevant class counts.
func (v *Invalidator) ShouldInvalidate(changed ast.Element) bool {
	result := false
	for el := changed; el != nil; el = el.Parent() {
		if c, ok := el.(ast.Class); ok && v.IsRelevant(c.QualifiedName()) {
			result = true
			break
		}
	}
	if result {
		invalidationChecksTotal.WithLabelValues("invalidate").Inc()
	} else {
		invalidationChecksTotal.WithLabelValues("ignore").Inc()
	}
	return result
}
