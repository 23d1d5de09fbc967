// Package ast defines the elaborated Quirrel syntax tree consumed by the
// bytecode emitter. Nodes arrive fully attributed: the parser fills in source
// locations, the binder resolves dispatches and tic-variables, the provenance
// checker labels every expression, and the grouping solver attaches bucket
// trees to grouping dispatches.
package ast

// Loc identifies the source line an expression came from.
type Loc struct {
	Line int
	Text string
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	node()
}

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	Node
	expr()
	Loc() Loc
	Provenance() Provenance
	ConstrainingExpr() Expr
}

// Attrs holds the per-node attributes precomputed by the earlier passes.
// It is embedded in every expression node.
type Attrs struct {
	Pos        Loc
	Prov       Provenance
	Constraint Expr
}

func (a *Attrs) node() {}
func (a *Attrs) expr() {}

// Loc returns the node's source location.
func (a *Attrs) Loc() Loc { return a.Pos }

// Provenance returns the node's static provenance label.
func (a *Attrs) Provenance() Provenance { return a.Prov }

// ConstrainingExpr returns the constraint attached to the node, or nil.
func (a *Attrs) ConstrainingExpr() Expr { return a.Constraint }

// BinOp enumerates the binary operators that lower through the map
// combinators.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Lt
	LtEq
	Gt
	GtEq
	Eq
	NotEq
	Or
	And
)

// String returns the operator's source spelling.
func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case Eq:
		return "="
	case NotEq:
		return "!="
	case Or:
		return "|"
	case And:
		return "&"
	}
	return "?"
}

// ===== Literals =====

// StrLit represents a string literal.
type StrLit struct {
	Attrs
	Value string
}

// NumLit represents a numeric literal. The textual form is preserved; the
// emitter never interprets the number.
type NumLit struct {
	Attrs
	Value string
}

// BoolLit represents a boolean literal.
type BoolLit struct {
	Attrs
	Value bool
}

// ===== Unary forms =====

// New wraps its child in a fresh identity.
// Example: new //clicks
type New struct {
	Attrs
	Child Expr
}

// Neg represents arithmetic negation.
type Neg struct {
	Attrs
	Child Expr
}

// Comp represents boolean complement.
type Comp struct {
	Attrs
	Child Expr
}

// Paren preserves explicit parenthesization from the source.
type Paren struct {
	Attrs
	Child Expr
}

// ===== Structure =====

// Relate declares a provenance relation between From and To for the scope of
// In. The relation itself is consumed by the provenance checker; only In
// carries runtime meaning.
type Relate struct {
	Attrs
	From Expr
	To   Expr
	In   Expr
}

// Let binds a (possibly parameterized) definition for the scope of Right.
// Example: clicks := //clicks  clicks + clicks
type Let struct {
	Attrs
	Name   string
	Params []string
	Left   Expr
	Right  Expr
}

// TicVar references a parameter of an enclosing let, written 'name.
type TicVar struct {
	Attrs
	Name    string
	Binding Binding
}

// BinaryExpr represents an infix operation lowered through Map2Cross or
// Map2Match depending on operand provenance.
type BinaryExpr struct {
	Attrs
	Op    BinOp
	Left  Expr
	Right Expr
}

// UnionExpr represents the set union of two expressions.
type UnionExpr struct {
	Attrs
	Left  Expr
	Right Expr
}

// IntersectExpr represents the set intersection of two expressions.
type IntersectExpr struct {
	Attrs
	Left  Expr
	Right Expr
}

// WithExpr merges the right object into the left.
// Example: medals with {winner: true}
type WithExpr struct {
	Attrs
	Left  Expr
	Right Expr
}

// WhereExpr filters the left expression by the right predicate. A where
// clause also serves as the origin of a group inside a solve.
type WhereExpr struct {
	Attrs
	Left  Expr
	Right Expr
}

// DescentExpr selects a property from an object-valued expression.
// Example: clicks.time
type DescentExpr struct {
	Attrs
	Child    Expr
	Property string
}

// DerefExpr indexes an array-valued expression.
// Example: pair[0]
type DerefExpr struct {
	Attrs
	Left  Expr
	Right Expr
}

// Field is one key/value pair of an object literal.
type Field struct {
	Key   string
	Value Expr
}

// ObjectDef represents an object literal.
type ObjectDef struct {
	Attrs
	Fields []Field
}

// ArrayDef represents an array literal.
type ArrayDef struct {
	Attrs
	Values []Expr
}

// Dispatch represents a name applied to actuals: a built-in, a stdlib
// function, or a user-defined let. For grouping dispatches the solver fills
// in Buckets, one per unapplied parameter.
type Dispatch struct {
	Attrs
	Name    string
	Actuals []Expr
	Binding Binding
	Buckets []NamedBucket
}

// ===== Bindings =====

// Binding records what the binder resolved a name or tic-variable to.
type Binding interface {
	binding()
}

// BuiltInBinding resolves to a language built-in such as count or load.
type BuiltInBinding struct {
	Name  string
	Arity int
}

// StdlibBuiltIn1Binding resolves to a unary stdlib function.
type StdlibBuiltIn1Binding struct {
	Op string
}

// StdlibBuiltIn2Binding resolves to a binary stdlib function.
type StdlibBuiltIn2Binding struct {
	Op string
}

// UserDefBinding resolves to a user-defined let.
type UserDefBinding struct {
	Let *Let
}

// NullBinding marks a name the binder could not resolve.
type NullBinding struct{}

func (*BuiltInBinding) binding()        {}
func (*StdlibBuiltIn1Binding) binding() {}
func (*StdlibBuiltIn2Binding) binding() {}
func (*UserDefBinding) binding()        {}
func (*NullBinding) binding()           {}

// Children returns the direct subexpressions of e in attribute order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *New:
		return []Expr{n.Child}
	case *Neg:
		return []Expr{n.Child}
	case *Comp:
		return []Expr{n.Child}
	case *Paren:
		return []Expr{n.Child}
	case *Relate:
		return []Expr{n.From, n.To, n.In}
	case *Let:
		return []Expr{n.Left, n.Right}
	case *BinaryExpr:
		return []Expr{n.Left, n.Right}
	case *UnionExpr:
		return []Expr{n.Left, n.Right}
	case *IntersectExpr:
		return []Expr{n.Left, n.Right}
	case *WithExpr:
		return []Expr{n.Left, n.Right}
	case *WhereExpr:
		return []Expr{n.Left, n.Right}
	case *DescentExpr:
		return []Expr{n.Child}
	case *DerefExpr:
		return []Expr{n.Left, n.Right}
	case *ObjectDef:
		children := make([]Expr, 0, len(n.Fields))
		for _, f := range n.Fields {
			children = append(children, f.Value)
		}
		return children
	case *ArrayDef:
		return append([]Expr(nil), n.Values...)
	case *Dispatch:
		return append([]Expr(nil), n.Actuals...)
	}
	return nil
}
