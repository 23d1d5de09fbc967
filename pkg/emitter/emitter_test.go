package emitter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quirrellang/quirrel/internal/testutil"
	"github.com/quirrellang/quirrel/pkg/ast"
	"github.com/quirrellang/quirrel/pkg/bytecode"
)

func mustEmit(t *testing.T, expr ast.Expr) []bytecode.Instruction {
	t.Helper()
	code, err := Emit(expr)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if err := bytecode.Validate(code); err != nil {
		t.Fatalf("emitted bytecode drives the stack negative: %v", err)
	}
	return code
}

func checkCode(t *testing.T, got, want []bytecode.Instruction) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instruction mismatch (-want +got):\n%s\ngot:\n%s", diff, bytecode.Disassemble(got))
	}
}

func TestEmit_NumLiteral(t *testing.T) {
	b := testutil.At{Line: 1, Text: "1"}

	code := mustEmit(t, b.Num("1"))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "1"},
		bytecode.PushNum{Value: "1"},
	})
}

func TestEmit_Literals(t *testing.T) {
	b := testutil.At{Line: 1, Text: "lit"}

	tests := []struct {
		name string
		expr ast.Expr
		want bytecode.Instruction
	}{
		{"string", b.Str("abc"), bytecode.PushString{Value: "abc"}},
		{"number", b.Num("42.5"), bytecode.PushNum{Value: "42.5"}},
		{"true", b.Bool(true), bytecode.PushTrue{}},
		{"false", b.Bool(false), bytecode.PushFalse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustEmit(t, tt.expr)
			checkCode(t, code, []bytecode.Instruction{
				bytecode.Line{Num: 1, Text: "lit"},
				tt.want,
			})
		})
	}
}

func TestEmit_AddValues_Crosses(t *testing.T) {
	b := testutil.At{Line: 1, Text: "1 + 2"}

	// Both operands have value provenance, which is excluded from the
	// shared-possibility intersection, so the cross form is emitted.
	code := mustEmit(t, b.Bin(ast.Add, b.Num("1"), b.Num("2")))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "1 + 2"},
		bytecode.PushNum{Value: "1"},
		bytecode.PushNum{Value: "2"},
		bytecode.Map2Cross{Op: bytecode.OpAdd},
	})
}

func TestEmit_AddAligned_Matches(t *testing.T) {
	b := testutil.At{Line: 1, Text: "//clicks + //clicks"}

	code := mustEmit(t, b.Bin(ast.Add, b.Load("/clicks"), b.Load("/clicks")))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "//clicks + //clicks"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.Map2Match{Op: bytecode.OpAdd},
	})
}

func TestEmit_Load(t *testing.T) {
	b := testutil.At{Line: 1, Text: "//clicks"}

	code := mustEmit(t, b.Load("/clicks"))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "//clicks"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
	})
}

func TestEmit_CountLoad(t *testing.T) {
	b := testutil.At{Line: 1, Text: "count(//clicks)"}

	code := mustEmit(t, b.Count(b.Load("/clicks")))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "count(//clicks)"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.Reduce{Op: bytecode.RedCount},
	})
}

func TestEmit_Reductions(t *testing.T) {
	b := testutil.At{Line: 1, Text: "red"}

	tests := []struct {
		name string
		want bytecode.Reduction
	}{
		{"count", bytecode.RedCount},
		{"geometricMean", bytecode.RedGeometricMean},
		{"max", bytecode.RedMax},
		{"mean", bytecode.RedMean},
		{"median", bytecode.RedMedian},
		{"min", bytecode.RedMin},
		{"mode", bytecode.RedMode},
		{"stdDev", bytecode.RedStdDev},
		{"sum", bytecode.RedSum},
		{"sumSq", bytecode.RedSumSq},
		{"variance", bytecode.RedVariance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustEmit(t, b.Reduction(tt.name, b.Load("/clicks")))
			last := code[len(code)-1]
			if diff := cmp.Diff(bytecode.Instruction(bytecode.Reduce{Op: tt.want}), last); diff != "" {
				t.Errorf("final instruction mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmit_Distinct(t *testing.T) {
	b := testutil.At{Line: 1, Text: "distinct(//clicks)"}

	expr := &ast.Dispatch{
		Name:    "distinct",
		Actuals: []ast.Expr{b.Load("/clicks")},
		Binding: &ast.BuiltInBinding{Name: "distinct", Arity: 1},
	}
	expr.Attrs = ast.Attrs{Pos: ast.Loc{Line: 1, Text: "distinct(//clicks)"}, Prov: testutil.Static("/clicks")}

	code := mustEmit(t, expr)

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "distinct(//clicks)"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.SetReduce{Op: bytecode.SetRedDistinct},
	})
}

func TestEmit_UnaryOps(t *testing.T) {
	b := testutil.At{Line: 1, Text: "unary"}

	tests := []struct {
		name string
		expr ast.Expr
		want []bytecode.Instruction
	}{
		{
			"neg",
			&ast.Neg{Attrs: attrsAt(b, testutil.Value()), Child: b.Num("5")},
			[]bytecode.Instruction{
				bytecode.Line{Num: 1, Text: "unary"},
				bytecode.PushNum{Value: "5"},
				bytecode.Map1{Op: bytecode.OpNeg},
			},
		},
		{
			"comp",
			&ast.Comp{Attrs: attrsAt(b, testutil.Value()), Child: b.Bool(true)},
			[]bytecode.Instruction{
				bytecode.Line{Num: 1, Text: "unary"},
				bytecode.PushTrue{},
				bytecode.Map1{Op: bytecode.OpComp},
			},
		},
		{
			"new",
			&ast.New{Attrs: attrsAt(b, testutil.Static("/clicks")), Child: b.Load("/clicks")},
			[]bytecode.Instruction{
				bytecode.Line{Num: 1, Text: "unary"},
				bytecode.PushString{Value: "/clicks"},
				bytecode.LoadLocal{Type: bytecode.Het},
				bytecode.Map1{Op: bytecode.OpNew},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCode(t, mustEmit(t, tt.expr), tt.want)
		})
	}
}

func attrsAt(b testutil.At, p ast.Provenance) ast.Attrs {
	return ast.Attrs{Pos: ast.Loc{Line: b.Line, Text: b.Text}, Prov: p}
}

func TestEmit_ParenIsTransparent(t *testing.T) {
	b := testutil.At{Line: 1, Text: "(1)"}

	expr := &ast.Paren{Attrs: attrsAt(b, testutil.Value()), Child: b.Num("1")}
	code := mustEmit(t, expr)

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "(1)"},
		bytecode.PushNum{Value: "1"},
	})
}

func TestEmit_RelateLowersOnlyIn(t *testing.T) {
	b := testutil.At{Line: 1, Text: "rel"}

	expr := &ast.Relate{
		Attrs: attrsAt(b, testutil.Value()),
		From:  b.Load("/a"),
		To:    b.Load("/b"),
		In:    b.Num("7"),
	}
	code := mustEmit(t, expr)

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "rel"},
		bytecode.PushNum{Value: "7"},
	})
}

func TestEmit_Descent(t *testing.T) {
	b := testutil.At{Line: 1, Text: "//clicks.time"}

	code := mustEmit(t, b.Descent(b.Load("/clicks"), "time"))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "//clicks.time"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "time"},
		bytecode.Map2Cross{Op: bytecode.OpDerefObject},
	})
}

func TestEmit_Deref(t *testing.T) {
	b := testutil.At{Line: 1, Text: "//pairs[0]"}

	code := mustEmit(t, b.Deref(b.Load("/pairs"), b.Num("0")))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "//pairs[0]"},
		bytecode.PushString{Value: "/pairs"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushNum{Value: "0"},
		bytecode.Map2Cross{Op: bytecode.OpDerefArray},
	})
}

func TestEmit_With(t *testing.T) {
	b := testutil.At{Line: 1, Text: "with"}

	code := mustEmit(t, b.With(b.Load("/medals"), b.Object(ast.Field{Key: "winner", Value: b.Bool(true)})))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "with"},
		bytecode.PushString{Value: "/medals"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "winner"},
		bytecode.PushTrue{},
		bytecode.Map2Cross{Op: bytecode.OpWrapObject},
		bytecode.Map2Cross{Op: bytecode.OpJoinObject},
	})
}

func TestEmit_Where(t *testing.T) {
	b := testutil.At{Line: 1, Text: "//clicks where //clicks.time = 5"}

	clicks := b.Load("/clicks")
	pred := b.Bin(ast.Eq, b.Descent(b.Load("/clicks"), "time"), b.Num("5"))
	code := mustEmit(t, b.Where(clicks, pred))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "//clicks where //clicks.time = 5"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "time"},
		bytecode.Map2Cross{Op: bytecode.OpDerefObject},
		bytecode.PushNum{Value: "5"},
		bytecode.Map2Cross{Op: bytecode.OpEq},
		bytecode.FilterMatch{Depth: 0, Pred: nil},
	})
}

func TestEmit_UnionIntersect(t *testing.T) {
	b := testutil.At{Line: 1, Text: "set"}

	union := mustEmit(t, b.Union(b.Load("/a"), b.Load("/b")))
	if diff := cmp.Diff(bytecode.Instruction(bytecode.IUnion{}), union[len(union)-1]); diff != "" {
		t.Errorf("union tail mismatch (-want +got):\n%s", diff)
	}

	intersect := mustEmit(t, b.Intersect(b.Load("/a"), b.Load("/b")))
	if diff := cmp.Diff(bytecode.Instruction(bytecode.IIntersect{}), intersect[len(intersect)-1]); diff != "" {
		t.Errorf("intersect tail mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_StdlibBuiltIn1(t *testing.T) {
	b := testutil.At{Line: 1, Text: "year"}

	expr := &ast.Dispatch{
		Name:    "year",
		Actuals: []ast.Expr{b.Load("/clicks")},
		Binding: &ast.StdlibBuiltIn1Binding{Op: "year"},
	}
	expr.Attrs = attrsAt(b, testutil.Static("/clicks"))

	code := mustEmit(t, expr)

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "year"},
		bytecode.PushString{Value: "/clicks"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.Map1{Op: bytecode.BuiltInFunction1Op{Name: "year"}},
	})
}

func TestEmit_StdlibBuiltIn2(t *testing.T) {
	b := testutil.At{Line: 1, Text: "concat"}

	expr := &ast.Dispatch{
		Name:    "concat",
		Actuals: []ast.Expr{b.Load("/a"), b.Load("/a")},
		Binding: &ast.StdlibBuiltIn2Binding{Op: "concat"},
	}
	expr.Attrs = attrsAt(b, testutil.Static("/a"))

	code := mustEmit(t, expr)

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "concat"},
		bytecode.PushString{Value: "/a"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.PushString{Value: "/a"},
		bytecode.LoadLocal{Type: bytecode.Het},
		bytecode.Map2Match{Op: bytecode.BuiltInFunction2Op{Name: "concat"}},
	})
}

func TestEmit_LineMarkers_DifferentLines(t *testing.T) {
	top := testutil.At{Line: 1, Text: "a +"}
	second := testutil.At{Line: 2, Text: "b"}

	code := mustEmit(t, top.Bin(ast.Add, top.Num("1"), second.Num("2")))

	checkCode(t, code, []bytecode.Instruction{
		bytecode.Line{Num: 1, Text: "a +"},
		bytecode.PushNum{Value: "1"},
		bytecode.Line{Num: 2, Text: "b"},
		bytecode.PushNum{Value: "2"},
		bytecode.Map2Cross{Op: bytecode.OpAdd},
	})
}

func TestEmit_Deterministic(t *testing.T) {
	b := testutil.At{Line: 1, Text: "det"}
	expr := b.Bin(ast.Add, b.Object(
		ast.Field{Key: "a", Value: b.Num("1")},
		ast.Field{Key: "b", Value: b.Load("/clicks")},
	), b.Num("3"))

	first := mustEmit(t, expr)
	second := mustEmit(t, expr)

	checkCode(t, second, first)
}

func TestEmit_NoAdjacentDuplicateLines(t *testing.T) {
	b := testutil.At{Line: 1, Text: "dedupe"}
	expr := b.Bin(ast.Add, b.Bin(ast.Mul, b.Num("1"), b.Num("2")), b.Num("3"))

	code := mustEmit(t, expr)

	var prev *bytecode.Line
	for _, inst := range code {
		if line, ok := inst.(bytecode.Line); ok {
			if prev != nil && prev.Num == line.Num && prev.Text == line.Text {
				t.Errorf("duplicate consecutive line marker %v", line)
			}
			prev = &line
		}
	}
}
