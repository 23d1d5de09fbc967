package bytecode

import "testing"

func TestStackDelta(t *testing.T) {
	tests := []struct {
		inst   Instruction
		pops   int
		pushes int
	}{
		{PushString{Value: "a"}, 0, 1},
		{PushNum{Value: "1"}, 0, 1},
		{PushTrue{}, 0, 1},
		{PushFalse{}, 0, 1},
		{Dup{}, 1, 2},
		{Swap{Depth: 1}, 2, 2},
		{Swap{Depth: 3}, 4, 4},
		{Line{Num: 1, Text: "x"}, 0, 0},
		{Map1{Op: OpNeg}, 1, 1},
		{Map2Cross{Op: OpAdd}, 2, 1},
		{Map2Match{Op: OpAdd}, 2, 1},
		{FilterCross{Depth: 0}, 2, 1},
		{FilterMatch{Depth: 2}, 4, 1},
		{Reduce{Op: RedCount}, 1, 1},
		{SetReduce{Op: SetRedDistinct}, 1, 1},
		{LoadLocal{Type: Het}, 1, 1},
		{IUnion{}, 2, 1},
		{IIntersect{}, 2, 1},
		{ZipBuckets{}, 2, 1},
		{Split{N: 2, K: 5}, 2, 5},
		{Merge{}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.inst.String(), func(t *testing.T) {
			pops, pushes := tt.inst.StackDelta()
			if pops != tt.pops || pushes != tt.pushes {
				t.Errorf("delta = (%d, %d), want (%d, %d)", pops, pushes, tt.pops, tt.pushes)
			}
		})
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		inst Instruction
		want string
	}{
		{PushNum{Value: "1"}, `PushNum("1")`},
		{PushString{Value: "/clicks"}, `PushString("/clicks")`},
		{Line{Num: 3, Text: "a + b"}, `Line(3,"a + b")`},
		{Swap{Depth: 2}, "Swap(2)"},
		{Map1{Op: OpNew}, "Map1(New)"},
		{Map1{Op: BuiltInFunction1Op{Name: "year"}}, "Map1(BuiltInFunction1Op(year))"},
		{Map2Cross{Op: OpAdd}, "Map2Cross(Add)"},
		{Map2Match{Op: OpJoinObject}, "Map2Match(JoinObject)"},
		{FilterMatch{Depth: 0}, "FilterMatch(0,None)"},
		{Reduce{Op: RedGeometricMean}, "Reduce(GeometricMean)"},
		{SetReduce{Op: SetRedDistinct}, "SetReduce(Distinct)"},
		{LoadLocal{Type: Het}, "LoadLocal(Het)"},
		{ZipBuckets{Disjoint: true}, "ZipBuckets(disjoint)"},
		{ZipBuckets{}, "ZipBuckets"},
		{Split{N: 1, K: 2}, "Split(1,2)"},
		{Merge{}, "Merge"},
	}

	for _, tt := range tests {
		if got := tt.inst.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBinaryOp_StringCoverage(t *testing.T) {
	ops := []SimpleBinaryOp{
		OpAdd, OpSub, OpMul, OpDiv, OpLt, OpLtEq, OpGt, OpGtEq,
		OpEq, OpNotEq, OpOr, OpAnd, OpWrapObject, OpJoinObject,
		OpJoinArray, OpArraySwap, OpDerefObject, OpDerefArray,
	}
	seen := make(map[string]bool)
	for _, op := range ops {
		s := op.String()
		if s == "UnknownBinaryOp" {
			t.Errorf("op %d has no name", op)
		}
		if seen[s] {
			t.Errorf("duplicate op name %q", s)
		}
		seen[s] = true
	}
}

func TestReduction_StringCoverage(t *testing.T) {
	reds := []Reduction{
		RedCount, RedGeometricMean, RedMax, RedMean, RedMedian, RedMin,
		RedMode, RedStdDev, RedSum, RedSumSq, RedVariance,
	}
	seen := make(map[string]bool)
	for _, r := range reds {
		s := r.String()
		if s == "UnknownReduction" || seen[s] {
			t.Errorf("bad or duplicate reduction name %q", s)
		}
		seen[s] = true
	}
}
