// Package ast is the read-only view of source declarations that the graph
// compiler consumes. A front end (a source indexer, an IDE, or the YAML loader
// in package declfile) supplies implementations of these interfaces; the
// compiler never mutates them.
//
// Universe is an in-memory implementation built from plain ClassSpec values.
package ast

import "fmt"

// Marker is an annotation-like tag attached to a class or method.
type Marker string

const (
	MarkerScope        Marker = "Scope"
	MarkerObjects      Marker = "Objects"
	MarkerDependencies Marker = "Dependencies"
	MarkerExpose       Marker = "Expose"
	MarkerDoNotCache   Marker = "DoNotCache"
	MarkerSpread       Marker = "Spread"
)

// Visibility of a method. The zero value is public.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPackage
	VisibilityProtected
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPackage:
		return "package"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// VoidTypeName is the name of the "no value" type.
const VoidTypeName = "void"

// RootTypeName is the universal supertype. Every type is assignable to it and it
// is never considered part of a supertype chain.
const RootTypeName = "Object"

// Position locates a declaration in its source.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return "-"
	}
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Element is anything a diagnostic can be attributed to. Parent returns the
// lexically enclosing element, or nil at the top level.
type Element interface {
	Position() Position
	Parent() Element
	String() string
}

// Type is a reference to a type by name. It may or may not resolve to a
// declared class.
type Type interface {
	QualifiedName() string
	IsVoid() bool
	IsAssignableTo(other Type) bool
	// ResolveClass returns the declared class for this type, or nil if the type
	// is opaque (a primitive or something outside the project).
	ResolveClass() Class
}

// Class is a declared class or interface.
type Class interface {
	Element
	QualifiedName() string
	SimpleName() string
	Type() Type
	IsInterface() bool
	HasMarker(m Marker) bool
	// Methods returns the declared methods in declaration order.
	Methods() []Method
	// Constructors returns the declared constructors in declaration order.
	Constructors() []Method
	NestedClasses() []Class
	// Supertypes returns the direct supertypes that resolve to declared classes.
	Supertypes() []Class
}

// Method is a declared method or constructor.
type Method interface {
	Element
	Name() string
	ReturnType() Type
	// Qualifier is the qualifier attached to the returned value, if any.
	Qualifier() string
	Parameters() []Parameter
	IsAbstract() bool
	Visibility() Visibility
	HasMarker(m Marker) bool
	DeclaringClass() Class
}

// Parameter is a method or constructor parameter.
type Parameter interface {
	Name() string
	Type() Type
	Qualifier() string
}

// Project is one consistent snapshot of the declarations of a build unit.
type Project interface {
	// ScopeClasses returns every class carrying MarkerScope, nested or not.
	ScopeClasses() []Class
}
