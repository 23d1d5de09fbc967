package emitter

import (
	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// emitSolve lowers a grouping dispatch: the bucket expressions, a Split
// frame exposing one positional value per tic-variable and per group origin,
// the let body, and the closing Merge. Marks recorded at the frame's offsets
// let the body dup grouped values and tic-variables from their slots.
func (em *emitter) emitSolve(let *ast.Let, n *ast.Dispatch) error {
	// Leading actuals bind the applied parameters ahead of the frame.
	for i, actual := range n.Actuals {
		if err := em.expr(actual); err != nil {
			return err
		}
		em.setMark(ticVarKey{let: let, name: let.Params[i]}, len(em.code), 0)
	}

	frameSize := len(n.Buckets)
	for _, nb := range n.Buckets {
		frameSize += len(ast.Origins(nb.Bucket))
	}

	for _, nb := range n.Buckets {
		if err := em.emitBucket(nb.Bucket); err != nil {
			return err
		}
	}
	em.emit(bytecode.Split{N: len(n.Buckets), K: frameSize})

	// Walk the buckets left to right, assigning one frame slot per
	// tic-variable and one per group origin slot. A shared origin keeps its
	// first mark; the slot arithmetic still advances so later buckets line
	// up with the frame layout.
	end := len(em.code)
	offset := 0
	for _, nb := range n.Buckets {
		em.setMark(ticVarKey{let: let, name: nb.Name}, end, offset)
		offset++
		for _, group := range ast.Origins(nb.Bucket) {
			key := groupKey{origin: group.Origin}
			if !em.marked(key) {
				em.setMark(key, end, offset)
				em.buckets[group.Origin] = group.Extras
			}
			offset++
		}
	}

	if err := em.expr(let.Left); err != nil {
		return err
	}
	em.emit(bytecode.Merge{})
	return nil
}

func (em *emitter) emitBucket(b ast.Bucket) error {
	switch t := b.(type) {
	case *ast.UnionBucket:
		if err := em.emitBucket(t.Left); err != nil {
			return err
		}
		if err := em.emitBucket(t.Right); err != nil {
			return err
		}
		em.emit(bytecode.ZipBuckets{Disjoint: false})
		return nil

	case *ast.IntersectBucket:
		if err := em.emitBucket(t.Left); err != nil {
			return err
		}
		if err := em.emitBucket(t.Right); err != nil {
			return err
		}
		em.emit(bytecode.ZipBuckets{Disjoint: true})
		return nil

	case *ast.Group:
		return em.emitSolution(t.Forest)
	}
	return nil
}

func (em *emitter) emitSolution(s ast.Solution) error {
	switch t := s.(type) {
	case *ast.Conjunction:
		if err := em.emitSolution(t.Left); err != nil {
			return err
		}
		if err := em.emitSolution(t.Right); err != nil {
			return err
		}
		em.emit(bytecode.Map2Match{Op: bytecode.OpAnd})
		return nil

	case *ast.Disjunction:
		if err := em.emitSolution(t.Left); err != nil {
			return err
		}
		if err := em.emitSolution(t.Right); err != nil {
			return err
		}
		em.emit(bytecode.Map2Match{Op: bytecode.OpOr})
		return nil

	case *ast.Definition:
		return em.expr(t.Expr)
	}
	return nil
}
