package depgraph

import (
	"github.com/gburgyan/go-depgraph/ast"
)

// ObjectsModel is the set of factory methods declared in one scope's objects
// container.
type ObjectsModel struct {
	Class          ast.Class
	FactoryMethods []*FactoryMethod
}

// ExtractObjects reads the objects container nested in scope. It returns nil and
// no error if the scope has no objects container. The first invalid factory
// method aborts extraction.
func ExtractObjects(scope ast.Class) (*ObjectsModel, error) {
	objects, _, err := extractObjects(scope, true)
	return objects, err
}

// extractObjects is ExtractObjects with a choice of failure handling. When
// failFast is false invalid methods are skipped and returned as diagnostics.
func extractObjects(scope ast.Class, failFast bool) (*ObjectsModel, []*CompilerError, error) {
	objectsClass := annotatedNestedClass(scope, ast.MarkerObjects)
	if objectsClass == nil {
		return nil, nil, nil
	}

	objects := &ObjectsModel{Class: objectsClass}
	var diagnostics []*CompilerError
	for _, m := range objectsClass.Methods() {
		c, err := ReadFactoryMethod(m)
		if err != nil {
			if failFast {
				return nil, nil, err
			}
			diagnostics = append(diagnostics, err.(*CompilerError))
			continue
		}
		objects.FactoryMethods = append(objects.FactoryMethods, &FactoryMethod{
			Method:      m,
			Kind:        c.Kind,
			IsExposed:   m.HasMarker(ast.MarkerExpose),
			IsCached:    !m.HasMarker(ast.MarkerDoNotCache),
			Consumed:    c.Consumed,
			Provided:    returnedDependency(m),
			Spread:      spread(m),
			Constructor: c.Constructor,
			objects:     objects,
		})
	}
	return objects, diagnostics, nil
}

// spread expands a Spread-marked method into one SpreadMethod per public,
// parameterless, non-void method of the returned type.
func spread(m ast.Method) *SpreadDependency {
	if !m.HasMarker(ast.MarkerSpread) {
		return nil
	}

	source := returnedDependency(m)
	result := &SpreadDependency{Class: m.ReturnType().ResolveClass()}
	if result.Class == nil {
		return result
	}
	for _, accessor := range result.Class.Methods() {
		if accessor.ReturnType().IsVoid() || accessor.Visibility() != ast.VisibilityPublic || len(accessor.Parameters()) != 0 {
			continue
		}
		result.Methods = append(result.Methods, &SpreadMethod{
			Method:   accessor,
			Source:   source,
			Provided: returnedDependency(accessor),
		})
	}
	return result
}

func annotatedNestedClass(c ast.Class, marker ast.Marker) ast.Class {
	for _, nested := range c.NestedClasses() {
		if nested.HasMarker(marker) {
			return nested
		}
	}
	return nil
}
