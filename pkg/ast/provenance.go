package ast

import "fmt"

// Provenance is a static label over expression values indicating which
// dataset(s) they originate from. The emitter uses it to decide whether a
// binary combinator crosses or matches, and to group the members of object
// and array literals.
type Provenance interface {
	provenance()

	// Possibilities returns the set of leaf provenances this label may
	// originate from. For leaf labels it is the label itself.
	Possibilities() []Provenance

	// Key returns a canonical identity string used for set membership.
	Key() string
}

// StaticProvenance labels values loaded from a fixed dataset path.
type StaticProvenance struct {
	Path string
}

// DynamicProvenance labels values minted by new; each site gets a fresh ID.
type DynamicProvenance struct {
	ID int
}

// UnionProvenance labels values that may come from either side of a union.
type UnionProvenance struct {
	Left  Provenance
	Right Provenance
}

// ValueProvenance labels pure values with no dataset of origin.
type ValueProvenance struct{}

// NullProvenance labels expressions with no valid provenance. Reaching one
// at emission time is an upstream invariant violation.
type NullProvenance struct{}

func (*StaticProvenance) provenance()  {}
func (*DynamicProvenance) provenance() {}
func (*UnionProvenance) provenance()   {}
func (*ValueProvenance) provenance()   {}
func (*NullProvenance) provenance()    {}

func (p *StaticProvenance) Possibilities() []Provenance  { return []Provenance{p} }
func (p *DynamicProvenance) Possibilities() []Provenance { return []Provenance{p} }
func (p *ValueProvenance) Possibilities() []Provenance   { return []Provenance{p} }
func (p *NullProvenance) Possibilities() []Provenance    { return []Provenance{p} }

func (p *UnionProvenance) Possibilities() []Provenance {
	var out []Provenance
	seen := make(map[string]bool)
	for _, side := range []Provenance{p.Left, p.Right} {
		for _, leaf := range side.Possibilities() {
			if !seen[leaf.Key()] {
				seen[leaf.Key()] = true
				out = append(out, leaf)
			}
		}
	}
	return out
}

func (p *StaticProvenance) Key() string  { return "static:" + p.Path }
func (p *DynamicProvenance) Key() string { return fmt.Sprintf("dynamic:%d", p.ID) }
func (p *ValueProvenance) Key() string   { return "value" }
func (p *NullProvenance) Key() string    { return "null" }

func (p *UnionProvenance) Key() string {
	return "union(" + p.Left.Key() + "," + p.Right.Key() + ")"
}

// IsNull reports whether p is the null provenance.
func IsNull(p Provenance) bool {
	_, ok := p.(*NullProvenance)
	return ok
}

// SharedPossibilities intersects the possibility sets of two provenances,
// excluding the value and null sentinels. An empty result means the operands
// are unaligned and must be combined with a cross product.
func SharedPossibilities(a, b Provenance) []Provenance {
	inB := make(map[string]bool)
	for _, p := range b.Possibilities() {
		inB[p.Key()] = true
	}

	var shared []Provenance
	for _, p := range a.Possibilities() {
		switch p.(type) {
		case *ValueProvenance, *NullProvenance:
			continue
		}
		if inB[p.Key()] {
			shared = append(shared, p)
		}
	}
	return shared
}
