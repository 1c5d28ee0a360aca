// Package depgraph compiles dependency-injection declarations into a validated
// dependency graph. It reads scopes, their objects containers and their required
// dependencies from an ast.Project, classifies every factory method, builds the
// parent/child scope hierarchy and resolves each consumed dependency to exactly
// one producer along the scope chain.
//
// The pipeline is ReadFactoryMethod -> ExtractObjects -> BuildScopes -> Resolve,
// wrapped by Compiler.Compile. Problems found while extracting declarations are
// fatal in batch mode and become diagnostics in interactive mode; problems found
// while resolving are always collected into ResolvedGraph.Errors.
//
// Manager drives the same pipeline for interactive hosts: it publishes
// Uninitialized/Loading/Valid/Error states to listeners and uses an Invalidator
// to decide whether a source change requires recomputing the graph.
package depgraph
