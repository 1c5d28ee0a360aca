package depgraph

import "github.com/gburgyan/go-depgraph/ast"

// Dependency identifies a value flowing through the graph. Two dependencies are
// the same slot iff they are equal.
type Dependency struct {
	Qualifier string
	Type      string
}

// NewDependency returns the dependency for the given type and qualifier.
func NewDependency(t ast.Type, qualifier string) Dependency {
	return Dependency{Qualifier: qualifier, Type: t.QualifiedName()}
}

func (d Dependency) String() string {
	if d.Qualifier == "" {
		return d.Type
	}
	return "@" + d.Qualifier + " " + d.Type
}

func returnedDependency(m ast.Method) Dependency {
	return NewDependency(m.ReturnType(), m.Qualifier())
}

func parameterDependencies(params []ast.Parameter) []Dependency {
	result := make([]Dependency, 0, len(params))
	for _, p := range params {
		result = append(result, NewDependency(p.Type(), p.Qualifier()))
	}
	return result
}
