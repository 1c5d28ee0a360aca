// Package declfile reads class declarations from YAML files into an
// ast.Universe. It is the front end used by the depgraph command; editors and
// other indexers implement the ast interfaces directly.
//
// A file holds a list of classes:
//
//	classes:
//	  - name: com.example.RootScope
//	    interface: true
//	    markers: [Scope]
//	    methods:
//	      - name: child
//	        returns: com.example.ChildScope
//	        abstract: true
//	    nested:
//	      - name: Dependencies
//	        interface: true
//	        markers: [Dependencies]
//	        methods:
//	          - {name: string, returns: String, abstract: true}
//
// Every class, method and constructor records the file, line and column it was
// declared at.
package declfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gburgyan/go-depgraph/ast"
)

// ErrInvalidDeclaration is returned for values that parse as YAML but are not
// valid declarations.
var ErrInvalidDeclaration = errors.New("invalid declaration")

type fileDecl struct {
	Classes []classDecl `yaml:"classes"`
}

type position struct {
	line   int
	column int
}

type classDecl struct {
	Name         string            `yaml:"name"`
	Interface    bool              `yaml:"interface"`
	Markers      []string          `yaml:"markers"`
	Supertypes   []string          `yaml:"supertypes"`
	Methods      []methodDecl      `yaml:"methods"`
	Constructors []constructorDecl `yaml:"constructors"`
	Nested       []classDecl       `yaml:"nested"`

	pos position
}

func (c *classDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain classDecl
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.pos = position{line: node.Line, column: node.Column}
	return nil
}

type methodDecl struct {
	Name       string      `yaml:"name"`
	Returns    string      `yaml:"returns"`
	Qualifier  string      `yaml:"qualifier"`
	Params     []paramDecl `yaml:"params"`
	Abstract   bool        `yaml:"abstract"`
	Visibility string      `yaml:"visibility"`
	Markers    []string    `yaml:"markers"`

	pos position
}

func (m *methodDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain methodDecl
	if err := node.Decode((*plain)(m)); err != nil {
		return err
	}
	m.pos = position{line: node.Line, column: node.Column}
	return nil
}

type constructorDecl struct {
	Params     []paramDecl `yaml:"params"`
	Visibility string      `yaml:"visibility"`

	pos position
}

func (c *constructorDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain constructorDecl
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.pos = position{line: node.Line, column: node.Column}
	return nil
}

type paramDecl struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Qualifier string `yaml:"qualifier"`
}

var knownMarkers = map[string]ast.Marker{
	string(ast.MarkerScope):        ast.MarkerScope,
	string(ast.MarkerObjects):      ast.MarkerObjects,
	string(ast.MarkerDependencies): ast.MarkerDependencies,
	string(ast.MarkerExpose):       ast.MarkerExpose,
	string(ast.MarkerDoNotCache):   ast.MarkerDoNotCache,
	string(ast.MarkerSpread):       ast.MarkerSpread,
}

var visibilities = map[string]ast.Visibility{
	"":          ast.VisibilityPublic,
	"public":    ast.VisibilityPublic,
	"package":   ast.VisibilityPackage,
	"protected": ast.VisibilityProtected,
	"private":   ast.VisibilityPrivate,
}

// Parse decodes the declarations in r. file is recorded in every position.
func Parse(file string, r io.Reader) ([]ast.ClassSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var decl fileDecl
	if err := dec.Decode(&decl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	specs := make([]ast.ClassSpec, 0, len(decl.Classes))
	for _, c := range decl.Classes {
		spec, err := c.spec(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParseFile reads and decodes one file.
func ParseFile(path string) ([]ast.ClassSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}
	return Parse(path, bytes.NewReader(data))
}

// Load parses every file and declares all of their classes in a new universe.
func Load(paths ...string) (*ast.Universe, error) {
	u := ast.NewUniverse()
	for _, path := range paths {
		specs, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		if err := u.Add(specs...); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return u, nil
}

func (c classDecl) spec(file string) (ast.ClassSpec, error) {
	pos := ast.Position{File: file, Line: c.pos.line, Column: c.pos.column}
	if c.Name == "" {
		return ast.ClassSpec{}, fmt.Errorf("%w: class without a name at line %d", ErrInvalidDeclaration, c.pos.line)
	}
	markers, err := parseMarkers(c.Markers, pos)
	if err != nil {
		return ast.ClassSpec{}, err
	}

	spec := ast.ClassSpec{
		Name:       c.Name,
		Interface:  c.Interface,
		Markers:    markers,
		Supertypes: c.Supertypes,
		Pos:        pos,
	}
	for _, m := range c.Methods {
		ms, err := m.spec(file)
		if err != nil {
			return ast.ClassSpec{}, err
		}
		spec.Methods = append(spec.Methods, ms)
	}
	for _, ctor := range c.Constructors {
		cpos := ast.Position{File: file, Line: ctor.pos.line, Column: ctor.pos.column}
		visibility, err := parseVisibility(ctor.Visibility, cpos)
		if err != nil {
			return ast.ClassSpec{}, err
		}
		spec.Constructors = append(spec.Constructors, ast.ConstructorSpec{
			Params:     paramSpecs(ctor.Params),
			Visibility: visibility,
			Pos:        cpos,
		})
	}
	for _, n := range c.Nested {
		ns, err := n.spec(file)
		if err != nil {
			return ast.ClassSpec{}, err
		}
		spec.Nested = append(spec.Nested, ns)
	}
	return spec, nil
}

func (m methodDecl) spec(file string) (ast.MethodSpec, error) {
	pos := ast.Position{File: file, Line: m.pos.line, Column: m.pos.column}
	if m.Name == "" {
		return ast.MethodSpec{}, fmt.Errorf("%w: method without a name at %v", ErrInvalidDeclaration, pos)
	}
	markers, err := parseMarkers(m.Markers, pos)
	if err != nil {
		return ast.MethodSpec{}, err
	}
	visibility, err := parseVisibility(m.Visibility, pos)
	if err != nil {
		return ast.MethodSpec{}, err
	}
	return ast.MethodSpec{
		Name:       m.Name,
		Returns:    m.Returns,
		Qualifier:  m.Qualifier,
		Params:     paramSpecs(m.Params),
		Abstract:   m.Abstract,
		Visibility: visibility,
		Markers:    markers,
		Pos:        pos,
	}, nil
}

func paramSpecs(params []paramDecl) []ast.ParamSpec {
	result := make([]ast.ParamSpec, len(params))
	for i, p := range params {
		result[i] = ast.ParamSpec{Name: p.Name, Type: p.Type, Qualifier: p.Qualifier}
	}
	return result
}

func parseMarkers(names []string, pos ast.Position) ([]ast.Marker, error) {
	var markers []ast.Marker
	for _, name := range names {
		m, ok := knownMarkers[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown marker %q at %v", ErrInvalidDeclaration, name, pos)
		}
		markers = append(markers, m)
	}
	return markers, nil
}

func parseVisibility(name string, pos ast.Position) (ast.Visibility, error) {
	v, ok := visibilities[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown visibility %q at %v", ErrInvalidDeclaration, name, pos)
	}
	return v, nil
}
