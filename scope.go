package depgraph

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/gburgyan/go-depgraph/ast"
)

// RequiredDependency is a dependency a scope expects its parent (or, for a root
// scope, the caller) to supply. It is declared as a method of the scope's nested
// Dependencies interface.
type RequiredDependency struct {
	Dependency Dependency
	Method     ast.Method
}

// AccessMethod is a scope method that hands a dependency out of the scope. It is
// a consumer of that dependency.
type AccessMethod struct {
	Dependency Dependency
	Method     ast.Method
}

// ChildMethod is a scope method that creates a child scope. Its parameters are
// available to satisfy the child's required dependencies.
type ChildMethod struct {
	Method     ast.Method
	Child      *Scope
	Parameters []Dependency
}

// Scope is one node of the scope hierarchy.
type Scope struct {
	Class         ast.Class
	Objects       *ObjectsModel
	Dependencies  ast.Class
	Required      []RequiredDependency
	AccessMethods []AccessMethod
	ChildMethods  []ChildMethod
	// Parents are the scopes with a child method returning this scope, ordered by name.
	Parents []*Scope
}

// Name returns the qualified name of the scope class.
func (s *Scope) Name() string {
	return s.Class.QualifiedName()
}

// IsRoot reports whether no other scope creates this one.
func (s *Scope) IsRoot() bool {
	return len(s.Parents) == 0
}

// FactoryMethods returns the scope's factory methods, or nil without objects.
func (s *Scope) FactoryMethods() []*FactoryMethod {
	if s.Objects == nil {
		return nil
	}
	return s.Objects.FactoryMethods
}

// ScopeGraph is the unresolved scope hierarchy.
type ScopeGraph struct {
	// Scopes are ordered by qualified name.
	Scopes []*Scope
	// Errors holds scope cycles and, in interactive mode, extraction errors.
	Errors []*CompilerError

	byName map[string]*Scope
}

// Scope returns the scope with the given qualified name, or nil.
func (g *ScopeGraph) Scope(name string) *Scope {
	return g.byName[name]
}

// Roots returns the scopes without parents.
func (g *ScopeGraph) Roots() []*Scope {
	var roots []*Scope
	for _, s := range g.Scopes {
		if s.IsRoot() {
			roots = append(roots, s)
		}
	}
	return roots
}

// BuildScopes discovers every scope of the project and links the hierarchy. The
// first malformed declaration is returned as an error.
func BuildScopes(project ast.Project) (*ScopeGraph, error) {
	return buildScopes(project, true)
}

func buildScopes(project ast.Project, failFast bool) (*ScopeGraph, error) {
	g := &ScopeGraph{byName: map[string]*Scope{}}

	for _, class := range project.ScopeClasses() {
		if _, found := g.byName[class.QualifiedName()]; found {
			continue
		}
		s := &Scope{Class: class}
		g.byName[class.QualifiedName()] = s
		g.Scopes = append(g.Scopes, s)
	}
	// Discovery order only matters for diagnostics; resolution works on sorted scopes.
	sort.Slice(g.Scopes, func(i, j int) bool {
		return g.Scopes[i].Name() < g.Scopes[j].Name()
	})

	report := func(err *CompilerError) error {
		if failFast {
			return err
		}
		g.Errors = append(g.Errors, err)
		return nil
	}

	for _, s := range g.Scopes {
		objects, diagnostics, err := extractObjects(s.Class, failFast)
		if err != nil {
			return nil, err
		}
		s.Objects = objects
		g.Errors = append(g.Errors, diagnostics...)

		if err := g.readDependencies(s, report); err != nil {
			return nil, err
		}
		if err := g.readScopeMethods(s, report); err != nil {
			return nil, err
		}
	}

	g.link()
	return g, nil
}

func (g *ScopeGraph) readDependencies(s *Scope, report func(*CompilerError) error) error {
	s.Dependencies = annotatedNestedClass(s.Class, ast.MarkerDependencies)
	if s.Dependencies == nil {
		return nil
	}
	for _, m := range s.Dependencies.Methods() {
		if m.ReturnType().IsVoid() || len(m.Parameters()) != 0 {
			if err := report(newError(ErrInvalidDependencyMethod, m)); err != nil {
				return err
			}
			continue
		}
		s.Required = append(s.Required, RequiredDependency{
			Dependency: returnedDependency(m),
			Method:     m,
		})
	}
	return nil
}

func (g *ScopeGraph) readScopeMethods(s *Scope, report func(*CompilerError) error) error {
	for _, m := range s.Class.Methods() {
		if child := g.Scope(m.ReturnType().QualifiedName()); child != nil {
			s.ChildMethods = append(s.ChildMethods, ChildMethod{
				Method:     m,
				Child:      child,
				Parameters: parameterDependencies(m.Parameters()),
			})
			continue
		}
		if m.ReturnType().IsVoid() || len(m.Parameters()) != 0 {
			if err := report(newError(ErrInvalidAccessMethod, m)); err != nil {
				return err
			}
			continue
		}
		s.AccessMethods = append(s.AccessMethods, AccessMethod{
			Dependency: returnedDependency(m),
			Method:     m,
		})
	}
	return nil
}

// link fills in Parents from the child methods. A child method that would make
// the hierarchy cyclic is reported and dropped.
func (g *ScopeGraph) link() {
	hierarchy := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, s := range g.Scopes {
		_ = hierarchy.AddVertex(s.Name())
	}

	for _, s := range g.Scopes {
		kept := s.ChildMethods[:0]
		for _, cm := range s.ChildMethods {
			var err error
			if cm.Child == s {
				err = graph.ErrEdgeCreatesCycle
			} else {
				err = hierarchy.AddEdge(s.Name(), cm.Child.Name())
			}
			switch {
			case err == nil:
				cm.Child.Parents = append(cm.Child.Parents, s)
			case errors.Is(err, graph.ErrEdgeAlreadyExists):
				// Another child method of the same parent already linked them.
			default:
				g.Errors = append(g.Errors, newError(ErrScopeCycle, cm.Method).
					withMessage("%s is already an ancestor of %s", cm.Child.Name(), s.Name()))
				continue
			}
			kept = append(kept, cm)
		}
		s.ChildMethods = kept
	}
}
