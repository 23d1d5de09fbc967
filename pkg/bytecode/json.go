package bytecode

import (
	json "github.com/goccy/go-json"
)

// instRecord is the flat JSON rendering of one instruction.
type instRecord struct {
	Instruction string `json:"instruction"`
	Value       string `json:"value,omitempty"`
	Num         int    `json:"num,omitempty"`
	Text        string `json:"text,omitempty"`
	Op          string `json:"op,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Disjoint    bool   `json:"disjoint,omitempty"`
	N           int    `json:"n,omitempty"`
	K           int    `json:"k,omitempty"`
	Type        string `json:"type,omitempty"`
}

// DumpJSON renders an instruction vector as a JSON array, one record per
// instruction, for external tooling.
func DumpJSON(code []Instruction) ([]byte, error) {
	records := make([]instRecord, len(code))
	for i, inst := range code {
		records[i] = recordOf(inst)
	}
	return json.MarshalIndent(records, "", "  ")
}

func recordOf(inst Instruction) instRecord {
	switch t := inst.(type) {
	case PushString:
		return instRecord{Instruction: "PushString", Value: t.Value}
	case PushNum:
		return instRecord{Instruction: "PushNum", Value: t.Value}
	case PushTrue:
		return instRecord{Instruction: "PushTrue"}
	case PushFalse:
		return instRecord{Instruction: "PushFalse"}
	case Dup:
		return instRecord{Instruction: "Dup"}
	case Swap:
		return instRecord{Instruction: "Swap", Depth: t.Depth}
	case Line:
		return instRecord{Instruction: "Line", Num: t.Num, Text: t.Text}
	case Map1:
		return instRecord{Instruction: "Map1", Op: t.Op.String()}
	case Map2Cross:
		return instRecord{Instruction: "Map2Cross", Op: t.Op.String()}
	case Map2Match:
		return instRecord{Instruction: "Map2Match", Op: t.Op.String()}
	case FilterCross:
		return instRecord{Instruction: "FilterCross", Depth: t.Depth}
	case FilterMatch:
		return instRecord{Instruction: "FilterMatch", Depth: t.Depth}
	case Reduce:
		return instRecord{Instruction: "Reduce", Op: t.Op.String()}
	case SetReduce:
		return instRecord{Instruction: "SetReduce", Op: t.Op.String()}
	case LoadLocal:
		return instRecord{Instruction: "LoadLocal", Type: t.Type.String()}
	case IUnion:
		return instRecord{Instruction: "IUnion"}
	case IIntersect:
		return instRecord{Instruction: "IIntersect"}
	case ZipBuckets:
		return instRecord{Instruction: "ZipBuckets", Disjoint: t.Disjoint}
	case Split:
		return instRecord{Instruction: "Split", N: t.N, K: t.K}
	case Merge:
		return instRecord{Instruction: "Merge"}
	}
	return instRecord{Instruction: inst.String()}
}
