package depgraph

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/gburgyan/go-depgraph/ast"
)

// localGraph is the graph of a scope's factory methods with an edge from each
// method to every local method it consumes from. Vertex i+1 is the factory
// method at index i; graph.StronglyConnectedComponents treats the hash 0 as
// "no vertex", so it is never used.
type localGraph struct {
	methods   []*FactoryMethod
	index     map[*FactoryMethod]int
	g         graph.Graph[int, int]
	selfLoops map[int]bool
}

func newLocalGraph(rs *ResolvedScope) *localGraph {
	lg := &localGraph{
		methods:   rs.Scope.FactoryMethods(),
		index:     map[*FactoryMethod]int{},
		g:         graph.New(graph.IntHash, graph.Directed()),
		selfLoops: map[int]bool{},
	}
	for i, fm := range lg.methods {
		lg.index[fm] = i + 1
		_ = lg.g.AddVertex(i+1, graph.VertexAttribute("label", fm.String()))
	}

	for _, b := range rs.Bindings {
		if b.Depth != 0 || b.Consumer.Kind != ConsumerFactoryMethod {
			continue
		}
		if b.Producer.Kind != ProducerFactoryMethod && b.Producer.Kind != ProducerSpread {
			continue
		}
		from := lg.index[b.Consumer.FactoryMethod]
		to := lg.index[b.Producer.FactoryMethod]
		if from == 0 || to == 0 {
			continue
		}
		if from == to {
			lg.selfLoops[from] = true
			continue
		}
		// Several consumed dependencies may point at the same producer.
		_ = lg.g.AddEdge(from, to)
	}
	return lg
}

func (lg *localGraph) method(v int) *FactoryMethod {
	return lg.methods[v-1]
}

// findCycles reports one ErrDependencyCycle per strongly connected component of
// the scope's local factory methods, naming every method in the component.
func findCycles(rs *ResolvedScope) []*CompilerError {
	lg := newLocalGraph(rs)
	if len(lg.methods) == 0 {
		return nil
	}

	components, err := graph.StronglyConnectedComponents(lg.g)
	if err != nil {
		return []*CompilerError{newError(ErrInternal).withMessage("cycle check for %s: %v", rs.Name(), err)}
	}

	var cycles [][]int
	for _, component := range components {
		if len(component) == 0 || len(component) == 1 && !lg.selfLoops[component[0]] {
			continue
		}
		sort.Ints(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})

	var errs []*CompilerError
	for _, component := range cycles {
		elements := make([]ast.Element, len(component))
		for i, v := range component {
			elements[i] = lg.method(v).Method
		}
		errs = append(errs, newError(ErrDependencyCycle, elements...).withMessage("in scope %s", rs.Name()))
	}
	return errs
}

// instantiationOrder sorts the scope's factory methods so that producers come
// before their local consumers. Ties keep declaration order.
func instantiationOrder(rs *ResolvedScope) []*FactoryMethod {
	lg := newLocalGraph(rs)
	if len(lg.methods) == 0 {
		return nil
	}

	// Edges run from consumer to producer, so the sort yields consumers first.
	// Reversing a less-ordered sort would reverse the tie-breaking too, so the
	// comparison is inverted here.
	sorted, err := graph.StableTopologicalSort(lg.g, func(a, b int) bool {
		return a > b
	})
	if err != nil {
		return nil
	}

	order := make([]*FactoryMethod, len(sorted))
	for i, v := range sorted {
		order[len(sorted)-1-i] = lg.method(v)
	}
	return order
}
