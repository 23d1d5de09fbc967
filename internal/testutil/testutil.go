// Package testutil provides AST construction helpers for emitter tests.
// Builders fill in the attributes the real pipeline computes: locations,
// provenance labels, and bindings.
package testutil

import (
	"github.com/quirrellang/quirrel/pkg/ast"
)

// At is a node builder stamping every node with one source location,
// mirroring how a single-line query attributes all of its nodes.
type At struct {
	Line int
	Text string
}

func (a At) attrs(p ast.Provenance) ast.Attrs {
	return ast.Attrs{Pos: ast.Loc{Line: a.Line, Text: a.Text}, Prov: p}
}

// Value returns the value-provenance sentinel.
func Value() ast.Provenance { return &ast.ValueProvenance{} }

// Static returns a static provenance for a dataset path.
func Static(path string) ast.Provenance { return &ast.StaticProvenance{Path: path} }

// Num builds a numeric literal with value provenance.
func (a At) Num(v string) *ast.NumLit {
	return &ast.NumLit{Attrs: a.attrs(Value()), Value: v}
}

// Str builds a string literal with value provenance.
func (a At) Str(v string) *ast.StrLit {
	return &ast.StrLit{Attrs: a.attrs(Value()), Value: v}
}

// Bool builds a boolean literal with value provenance.
func (a At) Bool(v bool) *ast.BoolLit {
	return &ast.BoolLit{Attrs: a.attrs(Value()), Value: v}
}

// Load builds a load dispatch for a dataset path with static provenance.
func (a At) Load(path string) *ast.Dispatch {
	return &ast.Dispatch{
		Attrs:   a.attrs(Static(path)),
		Name:    "load",
		Actuals: []ast.Expr{a.Str(path)},
		Binding: &ast.BuiltInBinding{Name: "load", Arity: 1},
	}
}

// CombineProv derives a plausible result provenance for a binary node: the
// non-value side wins, ties keep the left.
func CombineProv(l, r ast.Expr) ast.Provenance {
	if _, ok := l.Provenance().(*ast.ValueProvenance); ok {
		return r.Provenance()
	}
	return l.Provenance()
}

// Bin builds a binary operation whose provenance derives from its operands.
func (a At) Bin(op ast.BinOp, l, r ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Attrs: a.attrs(CombineProv(l, r)), Op: op, Left: l, Right: r}
}

// Descent builds a property selection carrying the child's provenance.
func (a At) Descent(child ast.Expr, prop string) *ast.DescentExpr {
	return &ast.DescentExpr{Attrs: a.attrs(child.Provenance()), Child: child, Property: prop}
}

// Deref builds an array index carrying the combined provenance.
func (a At) Deref(l, r ast.Expr) *ast.DerefExpr {
	return &ast.DerefExpr{Attrs: a.attrs(CombineProv(l, r)), Left: l, Right: r}
}

// Where builds a filter carrying the left side's provenance.
func (a At) Where(l, r ast.Expr) *ast.WhereExpr {
	return &ast.WhereExpr{Attrs: a.attrs(l.Provenance()), Left: l, Right: r}
}

// With builds an object merge carrying the combined provenance.
func (a At) With(l, r ast.Expr) *ast.WithExpr {
	return &ast.WithExpr{Attrs: a.attrs(CombineProv(l, r)), Left: l, Right: r}
}

// Union builds a set union carrying a union provenance.
func (a At) Union(l, r ast.Expr) *ast.UnionExpr {
	prov := &ast.UnionProvenance{Left: l.Provenance(), Right: r.Provenance()}
	return &ast.UnionExpr{Attrs: a.attrs(prov), Left: l, Right: r}
}

// Intersect builds a set intersection carrying the left provenance.
func (a At) Intersect(l, r ast.Expr) *ast.IntersectExpr {
	return &ast.IntersectExpr{Attrs: a.attrs(l.Provenance()), Left: l, Right: r}
}

// Object builds an object literal; provenance follows the first non-value
// field, or value if none.
func (a At) Object(fields ...ast.Field) *ast.ObjectDef {
	prov := Value()
	for _, f := range fields {
		if _, ok := f.Value.Provenance().(*ast.ValueProvenance); !ok {
			prov = f.Value.Provenance()
			break
		}
	}
	return &ast.ObjectDef{Attrs: a.attrs(prov), Fields: fields}
}

// Array builds an array literal; provenance follows the first non-value
// element, or value if none.
func (a At) Array(values ...ast.Expr) *ast.ArrayDef {
	prov := Value()
	for _, v := range values {
		if _, ok := v.Provenance().(*ast.ValueProvenance); !ok {
			prov = v.Provenance()
			break
		}
	}
	return &ast.ArrayDef{Attrs: a.attrs(prov), Values: values}
}

// Let builds a let binding whose scope is right. Either side may be wired
// in after construction for definitions that reference their own let.
func (a At) Let(name string, params []string, left, right ast.Expr) *ast.Let {
	let := &ast.Let{Name: name, Params: params, Left: left, Right: right}
	prov := Value()
	if right != nil {
		prov = right.Provenance()
	}
	let.Attrs = a.attrs(prov)
	return let
}

// Ref builds a zero-arity dispatch referencing a let.
func (a At) Ref(let *ast.Let) *ast.Dispatch {
	return &ast.Dispatch{
		Attrs:   a.attrs(let.Left.Provenance()),
		Name:    let.Name,
		Binding: &ast.UserDefBinding{Let: let},
	}
}

// Apply builds a fully applied dispatch of a let.
func (a At) Apply(let *ast.Let, actuals ...ast.Expr) *ast.Dispatch {
	return &ast.Dispatch{
		Attrs:   a.attrs(let.Left.Provenance()),
		Name:    let.Name,
		Actuals: actuals,
		Binding: &ast.UserDefBinding{Let: let},
	}
}

// Solve builds a grouping dispatch of a let with the given buckets and no
// leading actuals.
func (a At) Solve(let *ast.Let, buckets ...ast.NamedBucket) *ast.Dispatch {
	return &ast.Dispatch{
		Attrs:   a.attrs(let.Left.Provenance()),
		Name:    let.Name,
		Binding: &ast.UserDefBinding{Let: let},
		Buckets: buckets,
	}
}

// TicVar builds a tic-variable reference bound to a let.
func (a At) TicVar(let *ast.Let, name string, prov ast.Provenance) *ast.TicVar {
	return &ast.TicVar{
		Attrs:   a.attrs(prov),
		Name:    name,
		Binding: &ast.UserDefBinding{Let: let},
	}
}

// Count builds a count reduction dispatch with value provenance.
func (a At) Count(arg ast.Expr) *ast.Dispatch {
	return a.Reduction("count", arg)
}

// Reduction builds a built-in reduction dispatch with value provenance.
func (a At) Reduction(name string, arg ast.Expr) *ast.Dispatch {
	return &ast.Dispatch{
		Attrs:   a.attrs(Value()),
		Name:    name,
		Actuals: []ast.Expr{arg},
		Binding: &ast.BuiltInBinding{Name: name, Arity: 1},
	}
}
