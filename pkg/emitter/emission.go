package emitter

import (
	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

// mark locates a previously emitted value: the bytecode position immediately
// after the value was produced, and the value's depth below the top of stack
// at that position.
type mark struct {
	Index  int
	Offset int
}

// markKey identifies what a mark refers to. Concrete keys cover the four
// reusable value kinds: a subexpression result, a tic-variable binding, a
// completed dispatch, and a per-group value inside a split frame.
type markKey interface {
	markKey()
}

// exprKey marks the result of a specific subexpression node (zero-arity
// let bodies).
type exprKey struct {
	node ast.Expr
}

// ticVarKey marks the value bound to one parameter of a user-defined let.
type ticVarKey struct {
	let  *ast.Let
	name string
}

// dispatchKey marks the complete result of a let dispatch with a specific
// actuals tuple, identified structurally.
type dispatchKey struct {
	let     *ast.Let
	actuals string
}

// groupKey marks the per-group value a split frame exposes for a where
// clause.
type groupKey struct {
	origin *ast.WhereExpr
}

func (exprKey) markKey()     {}
func (ticVarKey) markKey()   {}
func (dispatchKey) markKey() {}
func (groupKey) markKey()    {}

func dispatchKeyFor(let *ast.Let, actuals []ast.Expr) dispatchKey {
	key := ""
	for _, a := range actuals {
		key += ast.Fingerprint(a) + ";"
	}
	return dispatchKey{let: let, actuals: key}
}

// lineMarker is the (line, text) pair of the most recent Line instruction.
type lineMarker struct {
	num  int
	text string
}

// emission accumulates the growing bytecode together with the bookkeeping
// the lowering needs: the mark table, the per-group extras table, and the
// most recent line marker.
type emission struct {
	code    []bytecode.Instruction
	marks   map[markKey]mark
	buckets map[*ast.WhereExpr][]ast.Expr
	curLine *lineMarker
}

func newEmission() *emission {
	return &emission{
		marks:   make(map[markKey]mark),
		buckets: make(map[*ast.WhereExpr][]ast.Expr),
	}
}

// emit appends instructions at the end of the bytecode. Appending shifts no
// marks.
func (e *emission) emit(instrs ...bytecode.Instruction) {
	e.code = append(e.code, instrs...)
}

// emitAt splices instructions at absolute position idx; a negative idx
// counts from the end. Marks strictly past the splice point shift by the
// splice length, which preserves their depth guarantee: the spliced code is
// chosen by the caller to leave the depth at idx plus its own net delta.
func (e *emission) emitAt(idx int, instrs ...bytecode.Instruction) {
	if idx < 0 {
		idx = len(e.code) + idx
	}
	out := make([]bytecode.Instruction, 0, len(e.code)+len(instrs))
	out = append(out, e.code[:idx]...)
	out = append(out, instrs...)
	out = append(out, e.code[idx:]...)
	e.code = out

	for k, m := range e.marks {
		if m.Index > idx {
			m.Index += len(instrs)
			e.marks[k] = m
		}
	}
}

// emitLine emits a source marker unless it would repeat the previous one.
func (e *emission) emitLine(num int, text string) {
	if e.curLine != nil && e.curLine.num == num && e.curLine.text == text {
		return
	}
	e.curLine = &lineMarker{num: num, text: text}
	e.emit(bytecode.Line{Num: num, Text: text})
}

// setMark records key at the given position and offset. Re-marking a key is
// legal only after the previous mark has been consumed by a dup; re-binding
// a tic-variable on a fresh dispatch is the one caller that does so.
func (e *emission) setMark(key markKey, idx, offset int) {
	e.marks[key] = mark{Index: idx, Offset: offset}
}

func (e *emission) marked(key markKey) bool {
	_, ok := e.marks[key]
	return ok
}
