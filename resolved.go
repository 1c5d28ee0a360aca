package depgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gburgyan/go-depgraph/ast"
)

// ProducerKind says where a bound value comes from.
type ProducerKind int

const (
	// ProducerFactoryMethod is a factory method of an objects container.
	ProducerFactoryMethod ProducerKind = iota
	// ProducerSpread is an accessor of a spread factory method's value.
	ProducerSpread
	// ProducerRequired is a required dependency, supplied from outside the scope.
	ProducerRequired
	// ProducerChildParameter is a parameter of the child method that created the scope.
	ProducerChildParameter
)

func (k ProducerKind) String() string {
	switch k {
	case ProducerFactoryMethod:
		return "factory"
	case ProducerSpread:
		return "spread"
	case ProducerRequired:
		return "required"
	case ProducerChildParameter:
		return "child parameter"
	default:
		return fmt.Sprintf("ProducerKind(%d)", int(k))
	}
}

// Producer is anything a consumed dependency can be bound to. Exactly one of
// the kind specific fields is relevant; for ProducerSpread, FactoryMethod is the
// spread method's owner.
type Producer struct {
	Kind       ProducerKind
	Scope      *Scope
	Dependency Dependency

	FactoryMethod *FactoryMethod
	SpreadMethod  *SpreadMethod
	Required      *RequiredDependency
	ChildMethod   *ChildMethod
}

// Element returns the declaration the producer comes from. A spread value is
// attributed to the spread factory method, which lives in the producing scope.
func (p *Producer) Element() ast.Element {
	switch p.Kind {
	case ProducerFactoryMethod, ProducerSpread:
		return p.FactoryMethod.Method
	case ProducerRequired:
		return p.Required.Method
	case ProducerChildParameter:
		return p.ChildMethod.Method
	}
	return nil
}

func (p *Producer) String() string {
	return fmt.Sprintf("%s %s", p.Kind, p.Element())
}

// ConsumerKind says what kind of declaration needs a dependency.
type ConsumerKind int

const (
	ConsumerFactoryMethod ConsumerKind = iota
	ConsumerAccessMethod
	ConsumerRequired
)

// Consumer is one use of a dependency.
type Consumer struct {
	Kind       ConsumerKind
	Dependency Dependency
	// FactoryMethod is set for ConsumerFactoryMethod.
	FactoryMethod *FactoryMethod
	Method        ast.Method
}

// Binding ties a consumer to the producer that satisfies it. Depth is the number
// of scope levels between the consumer's scope and the producer's scope.
type Binding struct {
	Consumer Consumer
	Producer *Producer
	Depth    int
}

// ResolvedScope is a scope together with its binding table.
type ResolvedScope struct {
	Scope    *Scope
	Bindings []Binding
	// Order lists the scope's factory methods so that every method comes after
	// the local methods it depends on. It is nil if the scope has a cycle.
	Order []*FactoryMethod

	levels [][]*Producer
}

// Name returns the qualified name of the scope.
func (s *ResolvedScope) Name() string {
	return s.Scope.Name()
}

// Producer returns the producer that dep resolves to in this scope, and the
// depth it was found at. A dependency that is missing or ambiguous returns nil.
func (s *ResolvedScope) Producer(dep Dependency) (*Producer, int) {
	return lookup(s.levels, dep)
}

// Exposed lists the dependencies the scope exposes, sorted.
func (s *ResolvedScope) Exposed() []Dependency {
	seen := map[Dependency]bool{}
	var result []Dependency
	add := func(d Dependency) {
		if !seen[d] {
			seen[d] = true
			result = append(result, d)
		}
	}
	for _, fm := range s.Scope.FactoryMethods() {
		if fm.IsExposed {
			add(fm.Provided)
		}
		if fm.Spread != nil {
			for _, sm := range fm.Spread.Methods {
				add(sm.Provided)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result
}

// ResolvedGraph is the fully checked scope graph. A graph without errors has
// every consumer bound to exactly one producer.
type ResolvedGraph struct {
	// Scopes are ordered by qualified name.
	Scopes []*ResolvedScope
	Errors []*CompilerError
	// Timing is the phase timing report, if timing was enabled.
	Timing string

	byName map[string]*ResolvedScope
}

// Scope returns the resolved scope with the given qualified name, or nil.
func (g *ResolvedGraph) Scope(name string) *ResolvedScope {
	return g.byName[name]
}

// Valid reports whether the graph can be used for code generation.
func (g *ResolvedGraph) Valid() bool {
	return len(g.Errors) == 0
}

// Err joins every diagnostic into one error, or returns nil.
func (g *ResolvedGraph) Err() error {
	if len(g.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(g.Errors))
	for i, e := range g.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// errorGraph is a graph with no scopes carrying a single host error.
func errorGraph(err *CompilerError) *ResolvedGraph {
	return &ResolvedGraph{
		Errors: []*CompilerError{err},
		byName: map[string]*ResolvedScope{},
	}
}
