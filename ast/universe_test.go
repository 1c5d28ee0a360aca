package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverse_NestedNamesAndParents(t *testing.T) {
	u := NewUniverse().MustAdd(ClassSpec{
		Name:    "test.FooScope",
		Markers: []Marker{MarkerScope},
		Nested: []ClassSpec{{
			Name:    "Objects",
			Markers: []Marker{MarkerObjects},
			Methods: []MethodSpec{{Name: "foo", Returns: "test.Foo"}},
		}},
	})

	objects := u.Lookup("test.FooScope.Objects")
	require.NotNil(t, objects)
	assert.Equal(t, "Objects", objects.SimpleName())
	assert.Equal(t, "test.FooScope", objects.Parent().String())
	assert.Nil(t, objects.Parent().Parent())

	m := objects.Methods()[0]
	assert.Equal(t, objects, m.Parent())
	assert.Equal(t, "test.FooScope.Objects.foo()", m.String())
	assert.Len(t, u.ScopeClasses(), 1)
}

func TestUniverse_AddIsAtomic(t *testing.T) {
	u := NewUniverse().MustAdd(ClassSpec{Name: "a.A"})

	err := u.Add(ClassSpec{Name: "b.B"}, ClassSpec{Name: "a.A"})
	assert.ErrorIs(t, err, ErrDuplicateClass)
	assert.Nil(t, u.Lookup("b.B"))
}

func TestType_IsAssignableTo(t *testing.T) {
	u := NewUniverse().MustAdd(
		ClassSpec{Name: "a.Impl", Supertypes: []string{"a.Base"}},
		ClassSpec{Name: "a.Base", Supertypes: []string{"a.Iface"}},
	)

	assert.True(t, u.TypeOf("a.Impl").IsAssignableTo(u.TypeOf("a.Iface")))
	assert.True(t, u.TypeOf("a.Impl").IsAssignableTo(u.TypeOf("a.Impl")))
	assert.True(t, u.TypeOf("a.Impl").IsAssignableTo(u.TypeOf(RootTypeName)))
	assert.False(t, u.TypeOf("a.Iface").IsAssignableTo(u.TypeOf("a.Impl")))
	assert.False(t, u.TypeOf("void").IsAssignableTo(u.TypeOf(RootTypeName)))
	assert.True(t, u.TypeOf("").IsVoid())
	assert.Nil(t, u.TypeOf("int").ResolveClass())
}

func TestClass_Constructors(t *testing.T) {
	u := NewUniverse().MustAdd(ClassSpec{
		Name: "a.Foo",
		Constructors: []ConstructorSpec{
			{Params: []ParamSpec{{Name: "b", Type: "a.Bar"}}},
			{},
		},
	})

	ctors := u.Lookup("a.Foo").Constructors()
	require.Len(t, ctors, 2)
	assert.Equal(t, "a.Foo", ctors[0].ReturnType().QualifiedName())
	assert.Equal(t, "a.Foo(a.Bar)", ctors[0].String())
	assert.Len(t, ctors[1].Parameters(), 0)
}

func TestUniverse_ClassesInFile(t *testing.T) {
	u := NewUniverse().MustAdd(
		ClassSpec{Name: "a.A", Pos: Position{File: "a.yaml", Line: 1}},
		ClassSpec{Name: "b.B", Pos: Position{File: "b.yaml", Line: 1}},
	)

	classes := u.ClassesInFile("a.yaml")
	require.Len(t, classes, 1)
	assert.Equal(t, "a.A", classes[0].QualifiedName())
	assert.Empty(t, u.ClassesInFile("c.yaml"))
}
