package bytecode

import (
	"fmt"
	"strconv"
)

// Instruction is one element of the VM's instruction alphabet. Every
// instruction carries a known operand-stack delta; the emitter relies on
// those deltas to keep the running stack depth coherent while splicing.
type Instruction interface {
	instruction()

	// StackDelta returns how many operands the instruction pops and pushes.
	StackDelta() (pops, pushes int)

	String() string
}

// Predicate is an optional filter predicate attached to FilterCross and
// FilterMatch. The emitter always leaves it nil; it exists for loaders that
// inline precompiled predicates.
type Predicate []Instruction

// ===== Push / stack manipulation =====

// PushString pushes a string constant.
type PushString struct {
	Value string
}

// PushNum pushes a numeric constant, preserved in textual form.
type PushNum struct {
	Value string
}

// PushTrue pushes the boolean true.
type PushTrue struct{}

// PushFalse pushes the boolean false.
type PushFalse struct{}

// Dup duplicates the top of the stack.
type Dup struct{}

// Swap exchanges the top of the stack with the value at the given depth.
type Swap struct {
	Depth int
}

// Line is a source marker carrying the line number and text of the
// expression being lowered. It has no stack effect.
type Line struct {
	Num  int
	Text string
}

// ===== Map / filter / reduce =====

// Map1 applies a unary operation row-wise.
type Map1 struct {
	Op UnaryOp
}

// Map2Cross applies a binary operation over the Cartesian product of its
// operands.
type Map2Cross struct {
	Op BinaryOp
}

// Map2Match applies a binary operation over provenance-aligned rows.
type Map2Match struct {
	Op BinaryOp
}

// FilterCross filters by a predicate evaluated over the cross product.
type FilterCross struct {
	Depth int
	Pred  Predicate
}

// FilterMatch filters by a predicate evaluated over aligned rows.
type FilterMatch struct {
	Depth int
	Pred  Predicate
}

// Reduce collapses a set to a single value with the tagged aggregation.
type Reduce struct {
	Op Reduction
}

// SetReduce collapses a set to a set with the tagged aggregation.
type SetReduce struct {
	Op SetReduction
}

// LoadLocal replaces a path value with the dataset it names.
type LoadLocal struct {
	Type LoadType
}

// ===== Set operations =====

// IUnion computes the union of the top two values.
type IUnion struct{}

// IIntersect computes the intersection of the top two values.
type IIntersect struct{}

// ===== Grouping =====

// ZipBuckets combines two bucket values; Disjoint marks an intersection
// of grouping criteria.
type ZipBuckets struct {
	Disjoint bool
}

// Split opens a grouping frame: it consumes N bucket values and yields K
// positional values on the stack inside the frame.
type Split struct {
	N int
	K int
}

// Merge closes the innermost grouping frame, merging per-group results.
type Merge struct{}

func (PushString) instruction()  {}
func (PushNum) instruction()     {}
func (PushTrue) instruction()    {}
func (PushFalse) instruction()   {}
func (Dup) instruction()         {}
func (Swap) instruction()        {}
func (Line) instruction()        {}
func (Map1) instruction()        {}
func (Map2Cross) instruction()   {}
func (Map2Match) instruction()   {}
func (FilterCross) instruction() {}
func (FilterMatch) instruction() {}
func (Reduce) instruction()      {}
func (SetReduce) instruction()   {}
func (LoadLocal) instruction()   {}
func (IUnion) instruction()      {}
func (IIntersect) instruction()  {}
func (ZipBuckets) instruction()  {}
func (Split) instruction()       {}
func (Merge) instruction()       {}

// StackDelta implementations. Swap(n) touches the top n+1 values, so it
// counts as popping and pushing all of them. Split materializes its frame
// values; Merge consumes the body result and yields the merged set (the
// frame values themselves are reclaimed by the VM when the frame closes).

func (PushString) StackDelta() (int, int) { return 0, 1 }
func (PushNum) StackDelta() (int, int)    { return 0, 1 }
func (PushTrue) StackDelta() (int, int)   { return 0, 1 }
func (PushFalse) StackDelta() (int, int)  { return 0, 1 }
func (Dup) StackDelta() (int, int)        { return 1, 2 }

func (s Swap) StackDelta() (int, int) { return s.Depth + 1, s.Depth + 1 }

func (Line) StackDelta() (int, int)      { return 0, 0 }
func (Map1) StackDelta() (int, int)      { return 1, 1 }
func (Map2Cross) StackDelta() (int, int) { return 2, 1 }
func (Map2Match) StackDelta() (int, int) { return 2, 1 }

func (f FilterCross) StackDelta() (int, int) { return 2 + f.Depth, 1 }
func (f FilterMatch) StackDelta() (int, int) { return 2 + f.Depth, 1 }

func (Reduce) StackDelta() (int, int)     { return 1, 1 }
func (SetReduce) StackDelta() (int, int)  { return 1, 1 }
func (LoadLocal) StackDelta() (int, int)  { return 1, 1 }
func (IUnion) StackDelta() (int, int)     { return 2, 1 }
func (IIntersect) StackDelta() (int, int) { return 2, 1 }
func (ZipBuckets) StackDelta() (int, int) { return 2, 1 }

func (s Split) StackDelta() (int, int) { return s.N, s.K }

func (Merge) StackDelta() (int, int) { return 1, 1 }

func (i PushString) String() string { return fmt.Sprintf("PushString(%q)", i.Value) }
func (i PushNum) String() string    { return fmt.Sprintf("PushNum(%q)", i.Value) }
func (PushTrue) String() string     { return "PushTrue" }
func (PushFalse) String() string    { return "PushFalse" }
func (Dup) String() string          { return "Dup" }
func (i Swap) String() string       { return "Swap(" + strconv.Itoa(i.Depth) + ")" }

func (i Line) String() string { return fmt.Sprintf("Line(%d,%q)", i.Num, i.Text) }

func (i Map1) String() string      { return "Map1(" + i.Op.String() + ")" }
func (i Map2Cross) String() string { return "Map2Cross(" + i.Op.String() + ")" }
func (i Map2Match) String() string { return "Map2Match(" + i.Op.String() + ")" }

func (i FilterCross) String() string {
	return fmt.Sprintf("FilterCross(%d,%s)", i.Depth, predString(i.Pred))
}

func (i FilterMatch) String() string {
	return fmt.Sprintf("FilterMatch(%d,%s)", i.Depth, predString(i.Pred))
}

func (i Reduce) String() string    { return "Reduce(" + i.Op.String() + ")" }
func (i SetReduce) String() string { return "SetReduce(" + i.Op.String() + ")" }
func (i LoadLocal) String() string { return "LoadLocal(" + i.Type.String() + ")" }
func (IUnion) String() string      { return "IUnion" }
func (IIntersect) String() string  { return "IIntersect" }

func (i ZipBuckets) String() string {
	if i.Disjoint {
		return "ZipBuckets(disjoint)"
	}
	return "ZipBuckets"
}

func (i Split) String() string { return fmt.Sprintf("Split(%d,%d)", i.N, i.K) }
func (Merge) String() string   { return "Merge" }

func predString(p Predicate) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("Some(%d)", len(p))
}
