package declfile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	depgraph "github.com/gburgyan/go-depgraph"
	"github.com/gburgyan/go-depgraph/ast"
)

var (
	scopesFile    = filepath.Join("testdata", "scopes.yaml")
	unrelatedFile = filepath.Join("testdata", "unrelated.yaml")
)

func TestLoad_Positions(t *testing.T) {
	u, err := Load(scopesFile, unrelatedFile)
	require.NoError(t, err)

	root := u.Lookup("com.example.RootScope")
	require.NotNil(t, root)
	assert.Equal(t, ast.Position{File: scopesFile, Line: 2, Column: 5}, root.Position())
	assert.True(t, root.HasMarker(ast.MarkerScope))
	assert.True(t, root.IsInterface())

	child := root.Methods()[0]
	assert.Equal(t, ast.Position{File: scopesFile, Line: 6, Column: 9}, child.Position())
	assert.True(t, child.IsAbstract())

	deps := u.Lookup("com.example.RootScope.Dependencies")
	require.NotNil(t, deps)
	assert.Equal(t, root, deps.Parent())

	trim := u.Lookup("com.example.util.Strings").Methods()[0]
	assert.Equal(t, ast.VisibilityPackage, trim.Visibility())
	assert.Equal(t, unrelatedFile, trim.Position().File)

	greeter := u.Lookup("com.example.Greeter")
	require.Len(t, greeter.Constructors(), 1)
	assert.Equal(t, "com.example.Greeter(Int)", greeter.Constructors()[0].String())

	assert.Len(t, u.ClassesInFile(unrelatedFile), 1)
}

func TestLoad_Compiles(t *testing.T) {
	u, err := Load(scopesFile, unrelatedFile)
	require.NoError(t, err)

	g, err := depgraph.NewCompiler().Compile(context.Background(), u)
	require.NoError(t, err)

	child := g.Scope("com.example.ChildScope")
	require.NotNil(t, child)
	p, depth := child.Producer(depgraph.Dependency{Type: "String"})
	require.NotNil(t, p)
	assert.Equal(t, depgraph.ProducerRequired, p.Kind)
	assert.Equal(t, 1, depth)

	greeter := child.Scope.FactoryMethods()[1]
	assert.Equal(t, depgraph.KindConstructor, greeter.Kind)
	assert.False(t, greeter.IsCached)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown marker", "classes:\n  - name: a.A\n    markers: [Bogus]\n", `unknown marker "Bogus" at x.yaml:2:5`},
		{"unknown visibility", "classes:\n  - name: a.A\n    methods:\n      - {name: m, visibility: secret}\n", `unknown visibility "secret"`},
		{"missing class name", "classes:\n  - interface: true\n", "class without a name at line 2"},
		{"missing method name", "classes:\n  - name: a.A\n    methods:\n      - returns: X\n", "method without a name"},
		{"unknown field", "clases: []\n", "field clases not found"},
		{"not yaml", "classes: [\n", "x.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.yaml", strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	specs, err := Parse("empty.yaml", strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, specs)
}

func TestLoad_DuplicateClass(t *testing.T) {
	_, err := Load(scopesFile, scopesFile)
	assert.ErrorIs(t, err, ast.ErrDuplicateClass)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorContains(t, err, "reading declarations")
}

func TestSource_Snapshot(t *testing.T) {
	s := NewSource(scopesFile)
	assert.Nil(t, s.Last())
	assert.Equal(t, []string{scopesFile}, s.Paths())

	p, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.ScopeClasses(), 2)
	assert.Same(t, p, s.Last())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
