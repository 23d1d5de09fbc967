package emitter

import (
	"strconv"

	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// provGroup collects composite-literal members sharing a provenance. Members
// of one group join row-wise, except that value-provenance members join by
// cross product; groups join by cross product. Groups are
// ordered by first occurrence of their provenance, members stay in source
// order.
type provGroup struct {
	isValue bool
	indices []int
}

func groupByProvenance(provs []ast.Provenance) []provGroup {
	var groups []provGroup
	byKey := make(map[string]int)
	for i, prov := range provs {
		key := prov.Key()
		gi, ok := byKey[key]
		if !ok {
			_, isValue := prov.(*ast.ValueProvenance)
			gi = len(groups)
			byKey[key] = gi
			groups = append(groups, provGroup{isValue: isValue})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	return groups
}

// emitObject lowers an object literal: each field is wrapped into a
// one-field object, fields of one provenance group are joined row-wise
// (cross for value provenance), and the groups are cross-joined. The emitted
// field order is the grouped order; objects are unordered in the data model.
func (em *emitter) emitObject(n *ast.ObjectDef) error {
	if len(n.Fields) == 0 {
		return notImplemented(n)
	}

	provs := make([]ast.Provenance, len(n.Fields))
	for i, f := range n.Fields {
		provs[i] = f.Value.Provenance()
	}
	groups := groupByProvenance(provs)

	for gi, g := range groups {
		for mi, fi := range g.indices {
			field := n.Fields[fi]
			em.emit(bytecode.PushString{Value: field.Key})
			if err := em.expr(field.Value); err != nil {
				return err
			}
			em.emit(bytecode.Map2Cross{Op: bytecode.OpWrapObject})
			if mi > 0 {
				if g.isValue {
					em.emit(bytecode.Map2Cross{Op: bytecode.OpJoinObject})
				} else {
					em.emit(bytecode.Map2Match{Op: bytecode.OpJoinObject})
				}
			}
		}
		if gi > 0 {
			em.emit(bytecode.Map2Cross{Op: bytecode.OpJoinObject})
		}
	}
	return nil
}

// emitArray lowers an array literal the same way as an object literal, then
// runs a reorder pass: grouping permuted the element order, and arrays are
// ordered, so adjacent ArraySwaps restore source order.
func (em *emitter) emitArray(n *ast.ArrayDef) error {
	if len(n.Values) == 0 {
		return notImplemented(n)
	}

	provs := make([]ast.Provenance, len(n.Values))
	for i, v := range n.Values {
		provs[i] = v.Provenance()
	}
	groups := groupByProvenance(provs)

	var order []int // source index per current array position
	for gi, g := range groups {
		for mi, vi := range g.indices {
			if err := em.expr(n.Values[vi]); err != nil {
				return err
			}
			em.emit(bytecode.Map1{Op: bytecode.OpWrapArray})
			if mi > 0 {
				if g.isValue {
					em.emit(bytecode.Map2Cross{Op: bytecode.OpJoinArray})
				} else {
					em.emit(bytecode.Map2Match{Op: bytecode.OpJoinArray})
				}
			}
			order = append(order, vi)
		}
		if gi > 0 {
			em.emit(bytecode.Map2Cross{Op: bytecode.OpJoinArray})
		}
	}

	// Walk the source indices upward; bubble each into place with pairwise
	// swaps of adjacent positions.
	for target := 0; target < len(order); target++ {
		pos := target
		for order[pos] != target {
			pos++
		}
		for k := pos; k > target; k-- {
			em.emit(
				bytecode.PushString{Value: strconv.Itoa(k)},
				bytecode.Map2Cross{Op: bytecode.OpArraySwap},
			)
			order[k], order[k-1] = order[k-1], order[k]
		}
	}
	return nil
}
