package depgraph

import (
	"fmt"
	"strings"

	"github.com/gburgyan/go-depgraph/ast"
)

// Test declarations are built from small helpers so each test reads like the
// source it models.

func scopeClass(name string, methods []ast.MethodSpec, nested ...ast.ClassSpec) ast.ClassSpec {
	return ast.ClassSpec{
		Name:      name,
		Interface: true,
		Markers:   []ast.Marker{ast.MarkerScope},
		Methods:   methods,
		Nested:    nested,
	}
}

func objectsClass(methods ...ast.MethodSpec) ast.ClassSpec {
	return ast.ClassSpec{
		Name:    "Objects",
		Markers: []ast.Marker{ast.MarkerObjects},
		Methods: methods,
	}
}

func dependenciesClass(methods ...ast.MethodSpec) ast.ClassSpec {
	return ast.ClassSpec{
		Name:      "Dependencies",
		Interface: true,
		Markers:   []ast.Marker{ast.MarkerDependencies},
		Methods:   methods,
	}
}

// basic is a factory method with a body.
func basic(name, returns string, params ...string) ast.MethodSpec {
	return ast.MethodSpec{Name: name, Returns: returns, Params: paramSpecs(params)}
}

// abstract is a method without a body.
func abstract(name, returns string, params ...string) ast.MethodSpec {
	return ast.MethodSpec{Name: name, Returns: returns, Params: paramSpecs(params), Abstract: true}
}

func marked(m ast.MethodSpec, markers ...ast.Marker) ast.MethodSpec {
	m.Markers = append(m.Markers, markers...)
	return m
}

func qualified(m ast.MethodSpec, qualifier string) ast.MethodSpec {
	m.Qualifier = qualifier
	return m
}

func paramSpecs(types []string) []ast.ParamSpec {
	result := make([]ast.ParamSpec, len(types))
	for i, t := range types {
		result[i] = ast.ParamSpec{Name: fmt.Sprintf("p%d", i), Type: t}
	}
	return result
}

// methodOf returns the named method of the named class.
func methodOf(u *ast.Universe, class, name string) ast.Method {
	c := u.Lookup(class)
	if c == nil {
		panic("no class " + class)
	}
	for _, m := range c.Methods() {
		if m.Name() == name {
			return m
		}
	}
	panic("no method " + name + " in " + class)
}

func resolveUniverse(u *ast.Universe) *ResolvedGraph {
	g, err := buildScopes(u, false)
	if err != nil {
		panic(err)
	}
	return Resolve(g)
}

func errorStrings(errs []*CompilerError) []string {
	result := make([]string, len(errs))
	for i, e := range errs {
		result[i] = e.Error()
	}
	return result
}

func bindingFor(rs *ResolvedScope, consumer string, dep Dependency) *Binding {
	for i, b := range rs.Bindings {
		if b.Consumer.Dependency == dep && strings.HasSuffix(b.Consumer.Method.String(), consumer) {
			return &rs.Bindings[i]
		}
	}
	return nil
}
