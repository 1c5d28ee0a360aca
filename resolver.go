package depgraph

import (
	"sort"

	"github.com/gburgyan/go-depgraph/ast"
)

// Resolve binds every consumer in every scope. Problems are recorded in the
// returned graph's Errors; Resolve itself never fails.
//
// Each scope is resolved along every path to a root. On a path the scope's own
// producers are searched first, then its parent's, and so on; the nearest level
// with a match wins. Several matches on the same level are a duplicate binding
// and are reported once for the scope that declares them. The binding table is
// taken from the first path, which follows the first parent by name at every
// level. Whether some path lacks a dependency is memoized per scope, so the
// work grows with the parent links, not with the number of paths.
func Resolve(g *ScopeGraph) *ResolvedGraph {
	r := &resolver{
		own:      map[*Scope][]*Producer{},
		provides: map[*Scope]map[Dependency]bool{},
		missing:  map[scopeDependency]bool{},
	}
	for _, s := range g.Scopes {
		r.own[s] = ownProducers(s)
		provides := map[Dependency]bool{}
		for _, p := range r.own[s] {
			provides[p.Dependency] = true
		}
		r.provides[s] = provides
	}

	result := &ResolvedGraph{
		Errors: append([]*CompilerError(nil), g.Errors...),
		byName: map[string]*ResolvedScope{},
	}
	for _, s := range g.Scopes {
		rs, errs := r.resolveScope(s)
		result.Scopes = append(result.Scopes, rs)
		result.byName[s.Name()] = rs
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

type resolver struct {
	own      map[*Scope][]*Producer
	provides map[*Scope]map[Dependency]bool
	missing  map[scopeDependency]bool
}

type scopeDependency struct {
	scope *Scope
	dep   Dependency
}

func ownProducers(s *Scope) []*Producer {
	var producers []*Producer
	for _, fm := range s.FactoryMethods() {
		producers = append(producers, &Producer{
			Kind:          ProducerFactoryMethod,
			Scope:         s,
			Dependency:    fm.Provided,
			FactoryMethod: fm,
		})
		if fm.Spread == nil {
			continue
		}
		for _, sm := range fm.Spread.Methods {
			producers = append(producers, &Producer{
				Kind:          ProducerSpread,
				Scope:         s,
				Dependency:    sm.Provided,
				FactoryMethod: fm,
				SpreadMethod:  sm,
			})
		}
	}
	for i := range s.Required {
		producers = append(producers, &Producer{
			Kind:       ProducerRequired,
			Scope:      s,
			Dependency: s.Required[i].Dependency,
			Required:   &s.Required[i],
		})
	}
	return producers
}

// firstPath returns the producers of s and of each scope on its first path to
// a root.
func (r *resolver) firstPath(s *Scope) [][]*Producer {
	var levels [][]*Producer
	for ; s != nil; s = firstParent(s) {
		levels = append(levels, r.own[s])
	}
	return levels
}

func firstParent(s *Scope) *Scope {
	if s.IsRoot() {
		return nil
	}
	return s.Parents[0]
}

// missingOnSomePath reports whether at least one path from s to a root has no
// producer for dep.
func (r *resolver) missingOnSomePath(s *Scope, dep Dependency) bool {
	if r.provides[s][dep] {
		return false
	}
	if s.IsRoot() {
		return true
	}
	key := scopeDependency{scope: s, dep: dep}
	if missing, found := r.missing[key]; found {
		return missing
	}
	missing := false
	for _, parent := range s.Parents {
		if r.missingOnSomePath(parent, dep) {
			missing = true
			break
		}
	}
	r.missing[key] = missing
	return missing
}

// lookup finds dep on the nearest level that has it. Ambiguous matches return nil
// with the depth they were found at.
func lookup(levels [][]*Producer, dep Dependency) (*Producer, int) {
	for depth, producers := range levels {
		var match *Producer
		count := 0
		for _, p := range producers {
			if p.Dependency == dep {
				match = p
				count++
			}
		}
		switch {
		case count == 1:
			return match, depth
		case count > 1:
			return nil, depth
		}
	}
	return nil, -1
}

func consumers(s *Scope) []Consumer {
	var result []Consumer
	for _, fm := range s.FactoryMethods() {
		for _, dep := range fm.Consumed {
			result = append(result, Consumer{
				Kind:          ConsumerFactoryMethod,
				Dependency:    dep,
				FactoryMethod: fm,
				Method:        fm.Method,
			})
		}
	}
	for _, am := range s.AccessMethods {
		result = append(result, Consumer{
			Kind:       ConsumerAccessMethod,
			Dependency: am.Dependency,
			Method:     am.Method,
		})
	}
	return result
}

type unsatisfiedKey struct {
	dep     Dependency
	element ast.Element
}

func (r *resolver) resolveScope(s *Scope) (*ResolvedScope, []*CompilerError) {
	errs := duplicates(s, r.own[s])
	rs := &ResolvedScope{Scope: s, levels: r.firstPath(s)}

	reported := map[unsatisfiedKey]bool{}
	unsatisfied := func(c Consumer) {
		key := unsatisfiedKey{dep: c.Dependency, element: c.Method}
		if reported[key] {
			return
		}
		reported[key] = true
		errs = append(errs, newError(ErrUnsatisfiedDependency, c.Method).withDependency(c.Dependency))
	}

	for _, consumer := range consumers(s) {
		if r.missingOnSomePath(s, consumer.Dependency) {
			unsatisfied(consumer)
			continue
		}
		if p, depth := lookup(rs.levels, consumer.Dependency); p != nil {
			rs.Bindings = append(rs.Bindings, Binding{Consumer: consumer, Producer: p, Depth: depth})
		}
	}

	first := true
	for _, parent := range s.Parents {
		for i := range parent.ChildMethods {
			cm := &parent.ChildMethods[i]
			if cm.Child != s {
				continue
			}
			r.verifyRequired(s, parent, cm, first, rs, unsatisfied)
			first = false
		}
	}

	cycles := findCycles(rs)
	errs = append(errs, cycles...)
	if len(cycles) == 0 {
		rs.Order = instantiationOrder(rs)
	}
	return rs, errs
}

// verifyRequired checks that a non-root scope's required dependencies are
// supplied by the creating child method or by every path above parent. Only
// the first child method records bindings; its parent is the first on the
// binding table's path.
func (r *resolver) verifyRequired(s, parent *Scope, via *ChildMethod, record bool, rs *ResolvedScope, unsatisfied func(Consumer)) {
	params := make([]*Producer, 0, len(via.Parameters))
	for _, dep := range via.Parameters {
		params = append(params, &Producer{
			Kind:        ProducerChildParameter,
			Scope:       parent,
			Dependency:  dep,
			ChildMethod: via,
		})
	}

	for i := range s.Required {
		req := &s.Required[i]
		consumer := Consumer{Kind: ConsumerRequired, Dependency: req.Dependency, Method: req.Method}
		if p, depth := lookup([][]*Producer{params}, req.Dependency); depth == 0 {
			if p != nil && record {
				rs.Bindings = append(rs.Bindings, Binding{Consumer: consumer, Producer: p, Depth: 1})
			}
			continue
		}
		if r.missingOnSomePath(parent, req.Dependency) {
			unsatisfied(consumer)
			continue
		}
		if !record {
			continue
		}
		if p, depth := lookup(rs.levels[1:], req.Dependency); p != nil {
			rs.Bindings = append(rs.Bindings, Binding{Consumer: consumer, Producer: p, Depth: depth + 1})
		}
	}
}

// duplicates reports each dependency produced more than once by the scope's own
// producers.
func duplicates(s *Scope, producers []*Producer) []*CompilerError {
	byDep := map[Dependency][]*Producer{}
	var deps []Dependency
	for _, p := range producers {
		if _, found := byDep[p.Dependency]; !found {
			deps = append(deps, p.Dependency)
		}
		byDep[p.Dependency] = append(byDep[p.Dependency], p)
	}
	sort.Slice(deps, func(i, j int) bool {
		return deps[i].String() < deps[j].String()
	})

	var errs []*CompilerError
	for _, dep := range deps {
		group := byDep[dep]
		if len(group) < 2 {
			continue
		}
		seen := map[ast.Element]bool{}
		var elements []ast.Element
		for _, p := range group {
			// Two accessors of one spread share an element.
			if el := p.Element(); !seen[el] {
				seen[el] = true
				elements = append(elements, el)
			}
		}
		errs = append(errs, newError(ErrDuplicateBinding, elements...).
			withDependency(dep).
			withMessage("in scope %s", s.Name()))
	}
	return errs
}
