package emitter

import (
	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// reductions maps built-in reduction names to their instruction tags.
var reductions = map[string]bytecode.Reduction{
	"count":         bytecode.RedCount,
	"geometricMean": bytecode.RedGeometricMean,
	"max":           bytecode.RedMax,
	"mean":          bytecode.RedMean,
	"median":        bytecode.RedMedian,
	"min":           bytecode.RedMin,
	"mode":          bytecode.RedMode,
	"stdDev":        bytecode.RedStdDev,
	"sum":           bytecode.RedSum,
	"sumSq":         bytecode.RedSumSq,
	"variance":      bytecode.RedVariance,
}

// emitDispatch lowers a name applied to actuals. Dispatch is polymorphic
// over the binding kind: built-in reductions, the load built-in, stdlib
// wrappers, and user-defined lets (memoized, fully applied, or grouping).
func (em *emitter) emitDispatch(n *ast.Dispatch) error {
	switch b := n.Binding.(type) {
	case *ast.BuiltInBinding:
		if red, ok := reductions[b.Name]; ok {
			if err := em.expr(n.Actuals[0]); err != nil {
				return err
			}
			em.emit(bytecode.Reduce{Op: red})
			return nil
		}
		switch b.Name {
		case "distinct":
			if err := em.expr(n.Actuals[0]); err != nil {
				return err
			}
			em.emit(bytecode.SetReduce{Op: bytecode.SetRedDistinct})
			return nil
		case "load":
			if err := em.expr(n.Actuals[0]); err != nil {
				return err
			}
			em.emit(bytecode.LoadLocal{Type: bytecode.Het})
			return nil
		}
		return notImplemented(n)

	case *ast.StdlibBuiltIn1Binding:
		if err := em.expr(n.Actuals[0]); err != nil {
			return err
		}
		em.emit(bytecode.Map1{Op: bytecode.BuiltInFunction1Op{Name: b.Op}})
		return nil

	case *ast.StdlibBuiltIn2Binding:
		return em.emitMap(n.Actuals[0], n.Actuals[1], bytecode.BuiltInFunction2Op{Name: b.Op})

	case *ast.UserDefBinding:
		return em.emitUserDef(b.Let, n)
	}

	return notImplemented(n)
}

func (em *emitter) emitUserDef(let *ast.Let, n *ast.Dispatch) error {
	// A zero-arity let behaves as a memoized reference to its body.
	if len(let.Params) == 0 {
		return em.emitOrDup(exprKey{node: let.Left}, func() error {
			return em.expr(let.Left)
		})
	}

	// Fully applied: bind each parameter's value with a tic-var mark, then
	// lower the body. Repeat dispatches with the same actuals dup the whole
	// result.
	if len(n.Actuals) == len(let.Params) {
		return em.emitOrDup(dispatchKeyFor(let, n.Actuals), func() error {
			for i, actual := range n.Actuals {
				if err := em.expr(actual); err != nil {
					return err
				}
				em.setMark(ticVarKey{let: let, name: let.Params[i]}, len(em.code), 0)
			}
			return em.expr(let.Left)
		})
	}

	// The arity difference is the number of solve buckets.
	return em.emitSolve(let, n)
}
