package depgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gburgyan/go-depgraph/ast"
)

// Extraction errors. These describe declarations that make no sense on their own
// and abort the run in batch mode.
var (
	ErrVoidFactoryMethod       = errors.New("factory method must not return void")
	ErrPrivateFactoryMethod    = errors.New("factory method cannot be private")
	ErrNoConstructor           = errors.New("unable to find a constructor for type")
	ErrInvalidBinds            = errors.New("invalid binds method: parameter is not assignable to return type")
	ErrInvalidFactoryMethod    = errors.New("invalid objects method")
	ErrInvalidDependencyMethod = errors.New("dependencies method must return a value and take no parameters")
	ErrInvalidAccessMethod     = errors.New("scope method must return a value and take no parameters")
)

// Resolution errors. These are always collected, never thrown.
var (
	ErrUnsatisfiedDependency = errors.New("unsatisfied dependency")
	ErrDuplicateBinding      = errors.New("duplicate binding")
	ErrDependencyCycle       = errors.New("dependency cycle")
	ErrScopeCycle            = errors.New("scope cycle")
)

// Host errors, only produced by Manager.
var (
	ErrSnapshot = errors.New("unable to read project snapshot")
	ErrInternal = errors.New("internal error while resolving graph")
)

// CompilerError is a single diagnostic. Reason is one of the Err* sentinels so
// callers can use errors.Is; Elements are the declarations it is attributed to.
type CompilerError struct {
	Reason     error
	Message    string
	Dependency *Dependency
	Elements   []ast.Element
}

func newError(reason error, elements ...ast.Element) *CompilerError {
	return &CompilerError{
		Reason:   reason,
		Elements: elements,
	}
}

func (e *CompilerError) withDependency(d Dependency) *CompilerError {
	e.Dependency = &d
	return e
}

func (e *CompilerError) withMessage(format string, args ...any) *CompilerError {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func (e *CompilerError) Error() string {
	b := strings.Builder{}
	b.WriteString(e.Reason.Error())
	if e.Dependency != nil {
		b.WriteString(": ")
		b.WriteString(e.Dependency.String())
	}
	if e.Message != "" {
		b.WriteString(" (")
		b.WriteString(e.Message)
		b.WriteString(")")
	}
	for i, el := range e.Elements {
		if i == 0 {
			b.WriteString(" at ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(el.String())
		if pos := el.Position(); pos.File != "" {
			b.WriteString(" [")
			b.WriteString(pos.String())
			b.WriteString("]")
		}
	}
	return b.String()
}

func (e *CompilerError) Unwrap() error {
	return e.Reason
}

// Fatal reports whether the error was found while extracting declarations.
func (e *CompilerError) Fatal() bool {
	switch e.Reason {
	case ErrVoidFactoryMethod, ErrPrivateFactoryMethod, ErrNoConstructor, ErrInvalidBinds,
		ErrInvalidFactoryMethod, ErrInvalidDependencyMethod, ErrInvalidAccessMethod:
		return true
	}
	return false
}

// reasonLabel is a short stable name for a reason, used in metrics.
func reasonLabel(reason error) string {
	switch reason {
	case ErrVoidFactoryMethod:
		return "void_factory_method"
	case ErrPrivateFactoryMethod:
		return "private_factory_method"
	case ErrNoConstructor:
		return "no_constructor"
	case ErrInvalidBinds:
		return "invalid_binds"
	case ErrInvalidFactoryMethod:
		return "invalid_factory_method"
	case ErrInvalidDependencyMethod:
		return "invalid_dependency_method"
	case ErrInvalidAccessMethod:
		return "invalid_access_method"
	case ErrUnsatisfiedDependency:
		return "unsatisfied_dependency"
	case ErrDuplicateBinding:
		return "duplicate_binding"
	case ErrDependencyCycle:
		return "dependency_cycle"
	case ErrScopeCycle:
		return "scope_cycle"
	case ErrSnapshot:
		return "snapshot"
	default:
		return "internal"
	}
}
