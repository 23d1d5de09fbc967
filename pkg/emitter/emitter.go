// Package emitter lowers an elaborated Quirrel AST into a linear instruction
// vector for the stack-based query VM. It is the final compiler stage: the
// input tree has already been parsed, name-bound, provenance-checked and
// solved; the output is ready for the VM loader.
//
// The emitter is single-threaded and deterministic. Value reuse is realized
// by retroactively splicing Dup/Swap sequences into already-emitted bytecode
// (see dup.go); grouping constructs lower into Split/Merge frames whose
// positional values are addressed through the same mark machinery (see
// bucket.go).
package emitter

import (
	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// Emit lowers expr into an instruction vector. It is a pure function of the
// AST: identical input yields byte-identical output.
func Emit(expr ast.Expr) ([]bytecode.Instruction, error) {
	em := &emitter{emission: newEmission()}
	if err := em.expr(expr); err != nil {
		return nil, err
	}
	return em.code, nil
}

type emitter struct {
	*emission
}

// expr lowers one expression: a line marker for the node's location, the
// node-specific lowering, then the constraint check.
func (em *emitter) expr(node ast.Expr) error {
	loc := node.Loc()
	em.emitLine(loc.Line, loc.Text)

	if err := em.exprBody(node); err != nil {
		return err
	}
	return em.constrain(node)
}

func (em *emitter) exprBody(node ast.Expr) error {
	switch n := node.(type) {
	case *ast.StrLit:
		em.emit(bytecode.PushString{Value: n.Value})
		return nil

	case *ast.NumLit:
		em.emit(bytecode.PushNum{Value: n.Value})
		return nil

	case *ast.BoolLit:
		if n.Value {
			em.emit(bytecode.PushTrue{})
		} else {
			em.emit(bytecode.PushFalse{})
		}
		return nil

	case *ast.New:
		if err := em.expr(n.Child); err != nil {
			return err
		}
		em.emit(bytecode.Map1{Op: bytecode.OpNew})
		return nil

	case *ast.Neg:
		if err := em.expr(n.Child); err != nil {
			return err
		}
		em.emit(bytecode.Map1{Op: bytecode.OpNeg})
		return nil

	case *ast.Comp:
		if err := em.expr(n.Child); err != nil {
			return err
		}
		em.emit(bytecode.Map1{Op: bytecode.OpComp})
		return nil

	case *ast.Paren:
		// Transparent: the parenthesized child is the value.
		return em.expr(n.Child)

	case *ast.Relate:
		// The from/to clauses carry provenance information already consumed
		// by the checker; only the scope expression has runtime meaning.
		return em.expr(n.In)

	case *ast.Let:
		// The bound body is lowered lazily at each dispatch site.
		return em.expr(n.Right)

	case *ast.TicVar:
		binding, ok := n.Binding.(*ast.UserDefBinding)
		if !ok {
			return notImplemented(n)
		}
		return em.emitDup(ticVarKey{let: binding.Let, name: n.Name})

	case *ast.BinaryExpr:
		return em.emitMap(n.Left, n.Right, binaryOpFor(n.Op))

	case *ast.DescentExpr:
		return em.emitMapState(
			func() error { return em.expr(n.Child) }, n.Child.Provenance(),
			func() error { em.emit(bytecode.PushString{Value: n.Property}); return nil },
			&ast.ValueProvenance{},
			bytecode.OpDerefObject)

	case *ast.DerefExpr:
		return em.emitMap(n.Left, n.Right, bytecode.OpDerefArray)

	case *ast.WithExpr:
		return em.emitMap(n.Left, n.Right, bytecode.OpJoinObject)

	case *ast.WhereExpr:
		// Inside a split frame the where clause is a group origin; its value
		// already sits at a marked frame slot.
		if em.marked(groupKey{origin: n}) {
			return em.emitDup(groupKey{origin: n})
		}
		return em.emitFilter(n.Left, n.Right, 0, nil)

	case *ast.UnionExpr:
		if err := em.expr(n.Left); err != nil {
			return err
		}
		if err := em.expr(n.Right); err != nil {
			return err
		}
		em.emit(bytecode.IUnion{})
		return nil

	case *ast.IntersectExpr:
		if err := em.expr(n.Left); err != nil {
			return err
		}
		if err := em.expr(n.Right); err != nil {
			return err
		}
		em.emit(bytecode.IIntersect{})
		return nil

	case *ast.ObjectDef:
		return em.emitObject(n)

	case *ast.ArrayDef:
		return em.emitArray(n)

	case *ast.Dispatch:
		return em.emitDispatch(n)
	}

	return notImplemented(node)
}

// constrain applies node's constraining expression, if any. The constraint
// is skipped when it is the node itself or when a child already applied it.
func (em *emitter) constrain(node ast.Expr) error {
	constraint := node.ConstrainingExpr()
	if constraint == nil || ast.EqualIgnoringLoc(constraint, node) {
		return nil
	}
	for _, child := range ast.Children(node) {
		if cc := child.ConstrainingExpr(); cc != nil && ast.EqualIgnoringLoc(cc, constraint) {
			return nil
		}
	}

	if err := em.expr(constraint); err != nil {
		return err
	}
	em.emit(
		bytecode.Dup{},
		bytecode.Map2Match{Op: bytecode.OpEq},
		bytecode.FilterMatch{Depth: 0, Pred: nil},
	)
	return nil
}

// emitMap lowers left and right and combines them with op, crossing or
// matching on their provenance.
func (em *emitter) emitMap(left, right ast.Expr, op bytecode.BinaryOp) error {
	return em.emitMapState(
		func() error { return em.expr(left) }, left.Provenance(),
		func() error { return em.expr(right) }, right.Provenance(),
		op)
}

func (em *emitter) emitMapState(left func() error, lprov ast.Provenance, right func() error, rprov ast.Provenance, op bytecode.BinaryOp) error {
	cross, err := crosses(lprov, rprov)
	if err != nil {
		return err
	}
	if err := left(); err != nil {
		return err
	}
	if err := right(); err != nil {
		return err
	}
	if cross {
		em.emit(bytecode.Map2Cross{Op: op})
	} else {
		em.emit(bytecode.Map2Match{Op: op})
	}
	return nil
}

// emitFilter lowers left and right and filters left by right, crossing or
// matching on provenance.
func (em *emitter) emitFilter(left, right ast.Expr, depth int, pred bytecode.Predicate) error {
	cross, err := crosses(left.Provenance(), right.Provenance())
	if err != nil {
		return err
	}
	if err := em.expr(left); err != nil {
		return err
	}
	if err := em.expr(right); err != nil {
		return err
	}
	if cross {
		em.emit(bytecode.FilterCross{Depth: depth, Pred: pred})
	} else {
		em.emit(bytecode.FilterMatch{Depth: depth, Pred: pred})
	}
	return nil
}

// crosses decides cross vs. match for a pair of operand provenances: an
// empty shared-possibility set means the operands are unaligned.
func crosses(lprov, rprov ast.Provenance) (bool, error) {
	if lprov == nil || rprov == nil || ast.IsNull(lprov) || ast.IsNull(rprov) {
		return false, ErrNullProvenance
	}
	return len(ast.SharedPossibilities(lprov, rprov)) == 0, nil
}

func binaryOpFor(op ast.BinOp) bytecode.BinaryOp {
	switch op {
	case ast.Add:
		return bytecode.OpAdd
	case ast.Sub:
		return bytecode.OpSub
	case ast.Mul:
		return bytecode.OpMul
	case ast.Div:
		return bytecode.OpDiv
	case ast.Lt:
		return bytecode.OpLt
	case ast.LtEq:
		return bytecode.OpLtEq
	case ast.Gt:
		return bytecode.OpGt
	case ast.GtEq:
		return bytecode.OpGtEq
	case ast.Eq:
		return bytecode.OpEq
	case ast.NotEq:
		return bytecode.OpNotEq
	case ast.Or:
		return bytecode.OpOr
	case ast.And:
		return bytecode.OpAnd
	}
	return bytecode.OpAdd
}
