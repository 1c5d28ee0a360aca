package declfile

import (
	"context"
	"sync"

	"github.com/gburgyan/go-depgraph/ast"
)

// Source re-reads a fixed set of declaration files on every snapshot. It
// implements depgraph.Source.
type Source struct {
	paths []string

	mu   sync.Mutex
	last *ast.Universe
}

// NewSource returns a source for the given files.
func NewSource(paths ...string) *Source {
	return &Source{paths: append([]string(nil), paths...)}
}

// Paths returns the files read by the source.
func (s *Source) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Snapshot loads all files. A universe is only remembered when every file
// loads.
func (s *Source) Snapshot(ctx context.Context) (ast.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := Load(s.paths...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = u
	s.mu.Unlock()
	return u, nil
}

// Last returns the universe of the most recent successful snapshot, or nil.
func (s *Source) Last() *ast.Universe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
