package ast

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateClass is returned by Universe.Add when a class name is declared twice.
var ErrDuplicateClass = errors.New("duplicate class declaration")

// ClassSpec declares a class. Name is fully qualified for top-level classes and
// simple for nested ones; nested classes are qualified as Outer.Inner.
type ClassSpec struct {
	Name         string
	Interface    bool
	Markers      []Marker
	Supertypes   []string
	Methods      []MethodSpec
	Constructors []ConstructorSpec
	Nested       []ClassSpec
	Pos          Position
}

// MethodSpec declares a method. Returns is a type name; an empty Returns is void.
type MethodSpec struct {
	Name       string
	Returns    string
	Qualifier  string
	Params     []ParamSpec
	Abstract   bool
	Visibility Visibility
	Markers    []Marker
	Pos        Position
}

// ConstructorSpec declares a constructor of the enclosing class.
type ConstructorSpec struct {
	Params     []ParamSpec
	Visibility Visibility
	Pos        Position
}

// ParamSpec declares a parameter.
type ParamSpec struct {
	Name      string
	Type      string
	Qualifier string
}

// Universe is an in-memory Project. Types are resolved lazily by name so classes
// may reference classes added later.
type Universe struct {
	classes map[string]*class
	all     []*class
	files   map[string][]*class
}

// NewUniverse returns an empty Universe.
func NewUniverse() *Universe {
	return &Universe{
		classes: map[string]*class{},
		files:   map[string][]*class{},
	}
}

// Add declares the given classes. Either every class is added or none is.
func (u *Universe) Add(specs ...ClassSpec) error {
	seen := map[string]bool{}
	var check func(prefix string, specs []ClassSpec) error
	check = func(prefix string, specs []ClassSpec) error {
		for _, s := range specs {
			name := qualify(prefix, s.Name)
			if s.Name == "" {
				return fmt.Errorf("class without a name at %v", s.Pos)
			}
			if _, found := u.classes[name]; found || seen[name] {
				return fmt.Errorf("%w: %s", ErrDuplicateClass, name)
			}
			seen[name] = true
			if err := check(name, s.Nested); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check("", specs); err != nil {
		return err
	}

	for _, s := range specs {
		u.addClass(nil, s)
	}
	return nil
}

// MustAdd is Add that panics on error. It returns the universe for chaining.
func (u *Universe) MustAdd(specs ...ClassSpec) *Universe {
	if err := u.Add(specs...); err != nil {
		panic(err)
	}
	return u
}

func (u *Universe) addClass(outer *class, s ClassSpec) *class {
	prefix := ""
	if outer != nil {
		prefix = outer.name
	}
	c := &class{
		u:     u,
		spec:  s,
		name:  qualify(prefix, s.Name),
		outer: outer,
	}
	u.classes[c.name] = c
	u.all = append(u.all, c)
	u.files[s.Pos.File] = append(u.files[s.Pos.File], c)

	for _, ms := range s.Methods {
		c.methods = append(c.methods, &method{owner: c, spec: ms})
	}
	for _, cs := range s.Constructors {
		c.ctors = append(c.ctors, &method{
			owner: c,
			ctor:  true,
			spec: MethodSpec{
				Name:       c.SimpleName(),
				Returns:    c.name,
				Params:     cs.Params,
				Visibility: cs.Visibility,
				Pos:        cs.Pos,
			},
		})
	}
	for _, ns := range s.Nested {
		c.nested = append(c.nested, u.addClass(c, ns))
	}
	return c
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Lookup returns the class with the given qualified name, or nil.
func (u *Universe) Lookup(name string) Class {
	if c, ok := u.classes[name]; ok {
		return c
	}
	return nil
}

// TypeOf returns a type reference by name. An empty name is void.
func (u *Universe) TypeOf(name string) Type {
	if name == "" {
		name = VoidTypeName
	}
	return typ{u: u, name: name}
}

// Classes returns every declared class, nested ones included, in declaration order.
func (u *Universe) Classes() []Class {
	result := make([]Class, 0, len(u.all))
	for _, c := range u.all {
		result = append(result, c)
	}
	return result
}

// ScopeClasses implements Project.
func (u *Universe) ScopeClasses() []Class {
	var result []Class
	for _, c := range u.all {
		if c.HasMarker(MarkerScope) {
			result = append(result, c)
		}
	}
	return result
}

// ClassesInFile returns the classes whose declaration position is in file.
func (u *Universe) ClassesInFile(file string) []Class {
	var result []Class
	for _, c := range u.files[file] {
		result = append(result, c)
	}
	return result
}

type typ struct {
	u    *Universe
	name string
}

func (t typ) QualifiedName() string { return t.name }

func (t typ) IsVoid() bool { return t.name == VoidTypeName }

func (t typ) String() string { return t.name }

func (t typ) ResolveClass() Class {
	return t.u.Lookup(t.name)
}

func (t typ) IsAssignableTo(other Type) bool {
	if other == nil || t.IsVoid() || other.IsVoid() {
		return false
	}
	target := other.QualifiedName()
	if target == t.name || target == RootTypeName {
		return true
	}
	visited := map[string]bool{}
	queue := []string{t.name}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true
		c, ok := t.u.classes[name]
		if !ok {
			continue
		}
		for _, s := range c.spec.Supertypes {
			if s == target {
				return true
			}
			queue = append(queue, s)
		}
	}
	return false
}

type class struct {
	u      *Universe
	spec   ClassSpec
	name   string
	outer  *class
	ctors  []*method
	nested []*class

	methods []*method
}

func (c *class) Position() Position { return c.spec.Pos }

func (c *class) Parent() Element {
	if c.outer == nil {
		return nil
	}
	return c.outer
}

func (c *class) String() string { return c.name }

func (c *class) QualifiedName() string { return c.name }

func (c *class) SimpleName() string {
	if i := strings.LastIndex(c.name, "."); i >= 0 {
		return c.name[i+1:]
	}
	return c.name
}

func (c *class) Type() Type { return typ{u: c.u, name: c.name} }

func (c *class) IsInterface() bool { return c.spec.Interface }

func (c *class) HasMarker(m Marker) bool { return hasMarker(c.spec.Markers, m) }

func (c *class) Methods() []Method {
	result := make([]Method, 0, len(c.methods))
	for _, m := range c.methods {
		result = append(result, m)
	}
	return result
}

func (c *class) Constructors() []Method {
	result := make([]Method, 0, len(c.ctors))
	for _, m := range c.ctors {
		result = append(result, m)
	}
	return result
}

func (c *class) NestedClasses() []Class {
	result := make([]Class, 0, len(c.nested))
	for _, n := range c.nested {
		result = append(result, n)
	}
	return result
}

func (c *class) Supertypes() []Class {
	var result []Class
	for _, s := range c.spec.Supertypes {
		if sc, ok := c.u.classes[s]; ok {
			result = append(result, sc)
		}
	}
	return result
}

type method struct {
	owner *class
	spec  MethodSpec
	ctor  bool
}

func (m *method) Position() Position { return m.spec.Pos }

func (m *method) Parent() Element { return m.owner }

func (m *method) String() string {
	b := strings.Builder{}
	b.WriteString(m.owner.name)
	if !m.ctor {
		b.WriteString(".")
		b.WriteString(m.spec.Name)
	}
	b.WriteString("(")
	for i, p := range m.spec.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type)
	}
	b.WriteString(")")
	return b.String()
}

func (m *method) Name() string { return m.spec.Name }

func (m *method) ReturnType() Type { return m.owner.u.TypeOf(m.spec.Returns) }

func (m *method) Qualifier() string { return m.spec.Qualifier }

func (m *method) Parameters() []Parameter {
	result := make([]Parameter, 0, len(m.spec.Params))
	for _, p := range m.spec.Params {
		result = append(result, param{u: m.owner.u, spec: p})
	}
	return result
}

func (m *method) IsAbstract() bool { return m.spec.Abstract }

func (m *method) Visibility() Visibility { return m.spec.Visibility }

func (m *method) HasMarker(mk Marker) bool { return hasMarker(m.spec.Markers, mk) }

func (m *method) DeclaringClass() Class { return m.owner }

type param struct {
	u    *Universe
	spec ParamSpec
}

func (p param) Name() string { return p.spec.Name }

func (p param) Type() Type { return p.u.TypeOf(p.spec.Type) }

func (p param) Qualifier() string { return p.spec.Qualifier }

func hasMarker(markers []Marker, m Marker) bool {
	for _, candidate := range markers {
		if candidate == m {
			return true
		}
	}
	return false
}
