package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gburgyan/go-depgraph/ast"
)

func factoryUniverse() *ast.Universe {
	return ast.NewUniverse().MustAdd(
		ast.ClassSpec{
			Name: "test.Foo",
			Constructors: []ast.ConstructorSpec{
				{Params: []ast.ParamSpec{{Name: "bar", Type: "test.Bar"}, {Name: "name", Type: "String", Qualifier: "name"}}},
				{},
			},
		},
		ast.ClassSpec{Name: "test.FooImpl", Supertypes: []string{"test.FooApi"}},
		ast.ClassSpec{Name: "test.FooApi", Interface: true},
		ast.ClassSpec{
			Name: "test.Objects",
			Methods: []ast.MethodSpec{
				basic("basic", "test.Bar", "String", "Int"),
				abstract("constructor", "test.Foo"),
				abstract("opaque", "String"),
				abstract("binds", "test.FooApi", "test.FooImpl"),
				abstract("badBinds", "test.FooImpl", "test.FooApi"),
				abstract("twoParams", "test.Bar", "String", "Int"),
				basic("void", ""),
				{Name: "hidden", Returns: "test.Bar", Visibility: ast.VisibilityPrivate},
				{Name: "packaged", Returns: "test.Bar", Visibility: ast.VisibilityPackage},
			},
		},
	)
}

func TestReadFactoryMethod_Basic(t *testing.T) {
	u := factoryUniverse()

	c, err := ReadFactoryMethod(methodOf(u, "test.Objects", "basic"))
	require.NoError(t, err)
	assert.Equal(t, KindBasic, c.Kind)
	assert.Equal(t, []Dependency{{Type: "String"}, {Type: "Int"}}, c.Consumed)
	assert.Nil(t, c.Constructor)

	c, err = ReadFactoryMethod(methodOf(u, "test.Objects", "packaged"))
	require.NoError(t, err)
	assert.Equal(t, KindBasic, c.Kind)
	assert.Empty(t, c.Consumed)
}

func TestReadFactoryMethod_Constructor(t *testing.T) {
	u := factoryUniverse()

	c, err := ReadFactoryMethod(methodOf(u, "test.Objects", "constructor"))
	require.NoError(t, err)
	assert.Equal(t, KindConstructor, c.Kind)
	// The first declared constructor is used.
	assert.Equal(t, []Dependency{{Type: "test.Bar"}, {Qualifier: "name", Type: "String"}}, c.Consumed)
	require.NotNil(t, c.Constructor)
	assert.Equal(t, "test.Foo(test.Bar, String)", c.Constructor.String())
}

func TestReadFactoryMethod_NoConstructor(t *testing.T) {
	u := factoryUniverse()

	_, err := ReadFactoryMethod(methodOf(u, "test.Objects", "opaque"))
	assert.ErrorIs(t, err, ErrNoConstructor)
	assert.Equal(t, "unable to find a constructor for type: String at test.Objects.opaque()", err.Error())
}

func TestReadFactoryMethod_Binds(t *testing.T) {
	u := factoryUniverse()

	c, err := ReadFactoryMethod(methodOf(u, "test.Objects", "binds"))
	require.NoError(t, err)
	assert.Equal(t, KindBinds, c.Kind)
	assert.Equal(t, []Dependency{{Type: "test.FooImpl"}}, c.Consumed)
}

func TestReadFactoryMethod_InvalidBindsDoesNotFallThrough(t *testing.T) {
	u := factoryUniverse()

	_, err := ReadFactoryMethod(methodOf(u, "test.Objects", "badBinds"))
	assert.ErrorIs(t, err, ErrInvalidBinds)
	assert.NotErrorIs(t, err, ErrInvalidFactoryMethod)

	var ce *CompilerError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Fatal())
	assert.Equal(t, "test.FooApi is not assignable to test.FooImpl", ce.Message)
}

func TestReadFactoryMethod_Rejected(t *testing.T) {
	u := factoryUniverse()

	tests := []struct {
		method string
		reason error
	}{
		{"twoParams", ErrInvalidFactoryMethod},
		{"void", ErrVoidFactoryMethod},
		{"hidden", ErrPrivateFactoryMethod},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m := methodOf(u, "test.Objects", tt.method)
			_, err := ReadFactoryMethod(m)
			assert.ErrorIs(t, err, tt.reason)

			var ce *CompilerError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, []ast.Element{m}, ce.Elements)
		})
	}
}

func TestFactoryKind_String(t *testing.T) {
	assert.Equal(t, "basic", KindBasic.String())
	assert.Equal(t, "constructor", KindConstructor.String())
	assert.Equal(t, "binds", KindBinds.String())
	assert.Equal(t, "FactoryKind(7)", FactoryKind(7).String())
}
