package depgraph

import (
	"errors"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// WriteDOT renders the resolved graph in Graphviz DOT format. Scopes are boxes
// linked to their children; every binding is an edge from the consuming
// declaration to the producing one, labelled with the dependency.
func WriteDOT(g *ResolvedGraph, w io.Writer) error {
	dg := graph.New(graph.StringHash, graph.Directed())

	addVertex := func(id string, options ...func(*graph.VertexProperties)) error {
		if err := dg.AddVertex(id, options...); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return err
		}
		return nil
	}
	addEdge := func(from, to string, options ...func(*graph.EdgeProperties)) error {
		if err := dg.AddEdge(from, to, options...); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return err
		}
		return nil
	}

	for _, s := range g.Scopes {
		if err := addVertex(s.Name(), graph.VertexAttribute("shape", "box")); err != nil {
			return err
		}
	}

	for _, s := range g.Scopes {
		for _, cm := range s.Scope.ChildMethods {
			if err := addEdge(s.Name(), cm.Child.Name(), graph.EdgeAttribute("label", cm.Method.Name())); err != nil {
				return err
			}
		}
		for _, fm := range s.Scope.FactoryMethods() {
			if err := addVertex(fm.Method.String(), graph.VertexAttribute("label", fm.Method.Name())); err != nil {
				return err
			}
			if err := addEdge(s.Name(), fm.Method.String(), graph.EdgeAttribute("style", "dotted")); err != nil {
				return err
			}
		}

		for _, b := range s.Bindings {
			from := b.Consumer.Method.String()
			to := b.Producer.Element().String()
			if err := addVertex(from, graph.VertexAttribute("label", b.Consumer.Method.Name())); err != nil {
				return err
			}
			if err := addVertex(to, graph.VertexAttribute("label", b.Producer.Element().String())); err != nil {
				return err
			}
			if err := addEdge(from, to, graph.EdgeAttribute("label", b.Consumer.Dependency.String())); err != nil {
				return err
			}
		}
	}

	return draw.DOT(dg, w)
}
