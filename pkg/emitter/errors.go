package emitter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/quirrellang/quirrel/pkg/ast"
)

// ErrNullProvenance reports that emission reached an expression whose
// provenance is null at a site that requires a real provenance. A clean AST
// from the earlier passes never triggers it.
var ErrNullProvenance = errors.New("null provenance")

// NotImplementedError reports an AST shape the emitter does not lower:
// unresolved dispatches, unrecognized built-ins, tic-variables outside a
// user-defined let. These are upstream invariant violations, not user errors.
type NotImplementedError struct {
	Node ast.Expr
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("emission not implemented for %T at line %d", e.Node, e.Node.Loc().Line)
}

func notImplemented(node ast.Expr) error {
	return &NotImplementedError{Node: node}
}
