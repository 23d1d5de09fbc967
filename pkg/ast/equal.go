package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// EqualIgnoringLoc reports whether two expressions are structurally equal,
// disregarding source locations. The constraint check uses it to recognize
// an expression constrained by itself.
func EqualIgnoringLoc(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Fingerprint(a) == Fingerprint(b)
}

// Fingerprint returns a canonical structural identity string for e,
// independent of source locations. Identical syntax yields identical
// fingerprints; dispatch marks are keyed by the fingerprints of their
// actuals.
func Fingerprint(e Expr) string {
	var sb strings.Builder
	fingerprint(&sb, e)
	return sb.String()
}

func fingerprint(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *StrLit:
		fmt.Fprintf(sb, "str(%q)", n.Value)
	case *NumLit:
		fmt.Fprintf(sb, "num(%s)", n.Value)
	case *BoolLit:
		fmt.Fprintf(sb, "bool(%t)", n.Value)
	case *New:
		sb.WriteString("new(")
		fingerprint(sb, n.Child)
		sb.WriteString(")")
	case *Neg:
		sb.WriteString("neg(")
		fingerprint(sb, n.Child)
		sb.WriteString(")")
	case *Comp:
		sb.WriteString("comp(")
		fingerprint(sb, n.Child)
		sb.WriteString(")")
	case *Paren:
		sb.WriteString("paren(")
		fingerprint(sb, n.Child)
		sb.WriteString(")")
	case *Relate:
		sb.WriteString("relate(")
		fingerprint(sb, n.From)
		sb.WriteString(",")
		fingerprint(sb, n.To)
		sb.WriteString(",")
		fingerprint(sb, n.In)
		sb.WriteString(")")
	case *Let:
		fmt.Fprintf(sb, "let(%s;%s;", n.Name, strings.Join(n.Params, ","))
		fingerprint(sb, n.Left)
		sb.WriteString(";")
		fingerprint(sb, n.Right)
		sb.WriteString(")")
	case *TicVar:
		// Tic-variables with the same name in different lets are distinct;
		// the binding's let pointer disambiguates.
		fmt.Fprintf(sb, "ticvar(%s@%s)", n.Name, bindingID(n.Binding))
	case *BinaryExpr:
		fmt.Fprintf(sb, "bin(%s,", n.Op)
		fingerprint(sb, n.Left)
		sb.WriteString(",")
		fingerprint(sb, n.Right)
		sb.WriteString(")")
	case *UnionExpr:
		binaryFingerprint(sb, "union", n.Left, n.Right)
	case *IntersectExpr:
		binaryFingerprint(sb, "intersect", n.Left, n.Right)
	case *WithExpr:
		binaryFingerprint(sb, "with", n.Left, n.Right)
	case *WhereExpr:
		binaryFingerprint(sb, "where", n.Left, n.Right)
	case *DescentExpr:
		sb.WriteString("descent(")
		fingerprint(sb, n.Child)
		fmt.Fprintf(sb, ",%q)", n.Property)
	case *DerefExpr:
		binaryFingerprint(sb, "deref", n.Left, n.Right)
	case *ObjectDef:
		sb.WriteString("object(")
		for i, f := range n.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%q:", f.Key)
			fingerprint(sb, f.Value)
		}
		sb.WriteString(")")
	case *ArrayDef:
		sb.WriteString("array(")
		for i, v := range n.Values {
			if i > 0 {
				sb.WriteString(",")
			}
			fingerprint(sb, v)
		}
		sb.WriteString(")")
	case *Dispatch:
		fmt.Fprintf(sb, "dispatch(%s@%s", n.Name, bindingID(n.Binding))
		for _, a := range n.Actuals {
			sb.WriteString(",")
			fingerprint(sb, a)
		}
		sb.WriteString(")")
	default:
		fmt.Fprintf(sb, "unknown(%T)", e)
	}
}

func binaryFingerprint(sb *strings.Builder, tag string, left, right Expr) {
	sb.WriteString(tag)
	sb.WriteString("(")
	fingerprint(sb, left)
	sb.WriteString(",")
	fingerprint(sb, right)
	sb.WriteString(")")
}

func bindingID(b Binding) string {
	switch t := b.(type) {
	case *BuiltInBinding:
		return "builtin:" + t.Name + ":" + strconv.Itoa(t.Arity)
	case *StdlibBuiltIn1Binding:
		return "std1:" + t.Op
	case *StdlibBuiltIn2Binding:
		return "std2:" + t.Op
	case *UserDefBinding:
		return fmt.Sprintf("let:%p", t.Let)
	case *NullBinding:
		return "null"
	}
	return "unbound"
}
