package depgraph

import (
	"fmt"

	"github.com/gburgyan/go-depgraph/ast"
)

// FactoryKind tells downstream code how a factory method produces its value.
type FactoryKind int

const (
	// KindBasic is a method with a body. Its parameters are its dependencies.
	KindBasic FactoryKind = iota
	// KindConstructor is an abstract method with no parameters. The returned type's
	// constructor is called and its parameters are the dependencies.
	KindConstructor
	// KindBinds is an abstract method with a single parameter that is assignable
	// to the return type.
	KindBinds
)

func (k FactoryKind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindConstructor:
		return "constructor"
	case KindBinds:
		return "binds"
	default:
		return fmt.Sprintf("FactoryKind(%d)", int(k))
	}
}

// Classification is the result of reading a single factory method declaration.
type Classification struct {
	Kind     FactoryKind
	Consumed []Dependency
	// Constructor is the constructor used by a KindConstructor method.
	Constructor ast.Method
}

// FactoryMethod is a declared producer inside an objects container. It is
// created once at extraction time and never modified afterwards.
type FactoryMethod struct {
	Method      ast.Method
	Kind        FactoryKind
	IsExposed   bool
	IsCached    bool
	Consumed    []Dependency
	Provided    Dependency
	Spread      *SpreadDependency
	Constructor ast.Method

	objects *ObjectsModel
}

// Objects returns the objects container this method belongs to.
func (f *FactoryMethod) Objects() *ObjectsModel {
	return f.objects
}

func (f *FactoryMethod) String() string {
	return f.Method.String()
}

// SpreadDependency lists the values a spread factory method contributes in
// addition to its own provided dependency.
type SpreadDependency struct {
	// Class is the class of the spread type, nil if the type is opaque.
	Class   ast.Class
	Methods []*SpreadMethod
}

// SpreadMethod is one accessor of a spread type. Calling Method on the value of
// Source yields Provided.
type SpreadMethod struct {
	Method   ast.Method
	Source   Dependency
	Provided Dependency
}

// ReadFactoryMethod classifies one factory method declaration. The checks run in
// a fixed order and the first match wins:
//
//  1. a method with a body is KindBasic
//  2. an abstract method without parameters is KindConstructor
//  3. an abstract method with one assignable parameter is KindBinds
//
// Anything else is an error. A single parameter that is not assignable to the
// return type is ErrInvalidBinds, never a fall through.
//
// When the returned type has several constructors the first declared one is
// used. There is no disambiguation.
func ReadFactoryMethod(m ast.Method) (Classification, error) {
	if m.ReturnType().IsVoid() {
		return Classification{}, newError(ErrVoidFactoryMethod, m)
	}
	if m.Visibility() == ast.VisibilityPrivate {
		return Classification{}, newError(ErrPrivateFactoryMethod, m)
	}

	// Order matters here.
	if c, ok := readBasic(m); ok {
		return c, nil
	}
	if c, ok, err := readConstructor(m); err != nil || ok {
		return c, err
	}
	if c, ok, err := readBinds(m); err != nil || ok {
		return c, err
	}
	return Classification{}, newError(ErrInvalidFactoryMethod, m).
		withMessage("%d parameters on an abstract method", len(m.Parameters()))
}

func readBasic(m ast.Method) (Classification, bool) {
	if m.IsAbstract() {
		return Classification{}, false
	}
	return Classification{
		Kind:     KindBasic,
		Consumed: parameterDependencies(m.Parameters()),
	}, true
}

func readConstructor(m ast.Method) (Classification, bool, error) {
	if len(m.Parameters()) != 0 {
		return Classification{}, false, nil
	}

	providedType := m.ReturnType()
	var constructors []ast.Method
	if class := providedType.ResolveClass(); class != nil {
		constructors = class.Constructors()
	}
	if len(constructors) == 0 {
		return Classification{}, false, newError(ErrNoConstructor, m).withDependency(returnedDependency(m))
	}

	ctor := constructors[0]
	return Classification{
		Kind:        KindConstructor,
		Consumed:    parameterDependencies(ctor.Parameters()),
		Constructor: ctor,
	}, true, nil
}

func readBinds(m ast.Method) (Classification, bool, error) {
	params := m.Parameters()
	if len(params) != 1 {
		return Classification{}, false, nil
	}

	if !params[0].Type().IsAssignableTo(m.ReturnType()) {
		return Classification{}, false, newError(ErrInvalidBinds, m).
			withMessage("%s is not assignable to %s", params[0].Type().QualifiedName(), m.ReturnType().QualifiedName())
	}
	return Classification{
		Kind:     KindBinds,
		Consumed: parameterDependencies(params),
	}, true, nil
}
