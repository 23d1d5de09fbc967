package emitter

import (
	"github.com/pkg/errors"

	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// emitDup reuses a previously emitted value by retroactive splice: a Dup is
// spliced in right after the original production, the duplicate is sunk to
// the bottom of the stack as it stood at that point, and a swap chain at the
// current end pulls it back to the top. Values produced between the two
// points are never disturbed, because the duplicate travels below them.
func (em *emitter) emitDup(key markKey) error {
	m, ok := em.marks[key]
	if !ok {
		return errors.Errorf("dup of unmarked key %#v", key)
	}

	depths := bytecode.StackDepths(em.code)
	insertStack := depths[m.Index]
	finalStack := depths[len(em.code)] + 1

	var insertOps []bytecode.Instruction
	if m.Offset > 0 {
		// Pull the marked value to the top, duplicate, and sink one copy
		// back to its prior depth.
		for i := 1; i <= m.Offset; i++ {
			insertOps = append(insertOps, bytecode.Swap{Depth: i})
		}
		insertOps = append(insertOps, bytecode.Dup{})
		for i := m.Offset + 1; i >= 1; i-- {
			insertOps = append(insertOps, bytecode.Swap{Depth: i})
		}
	} else {
		insertOps = append(insertOps, bytecode.Dup{})
	}
	if insertStack > 1 {
		// Sink the duplicate to the bottom for safekeeping.
		for i := insertStack; i >= 1; i-- {
			insertOps = append(insertOps, bytecode.Swap{Depth: i})
		}
	}
	em.emitAt(m.Index, insertOps...)

	if finalStack > 1 {
		// Retrieve the duplicate from the bottom at the reuse site.
		retrieveOps := make([]bytecode.Instruction, 0, finalStack-1)
		for i := 1; i <= finalStack-1; i++ {
			retrieveOps = append(retrieveOps, bytecode.Swap{Depth: i})
		}
		em.emit(retrieveOps...)
	}

	return nil
}

// emitOrDup lowers a value once and dups it on every later request. On the
// first request it runs produce and marks the key at the resulting end of
// bytecode with offset zero.
func (em *emitter) emitOrDup(key markKey, produce func() error) error {
	if em.marked(key) {
		return em.emitDup(key)
	}
	if err := produce(); err != nil {
		return err
	}
	em.setMark(key, len(em.code), 0)
	return nil
}
