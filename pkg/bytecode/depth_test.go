package bytecode

import (
	"strings"
	"testing"
)

func TestStackDepths(t *testing.T) {
	code := []Instruction{
		Line{Num: 1, Text: "x"},
		PushString{Value: "/clicks"},
		LoadLocal{Type: Het},
		Dup{},
		Map2Match{Op: OpAdd},
	}

	got := StackDepths(code)
	want := []int{0, 0, 1, 1, 2, 1}

	if len(got) != len(want) {
		t.Fatalf("expected %d depths, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("depth %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestStackDepths_SplitFrame(t *testing.T) {
	code := []Instruction{
		PushNum{Value: "1"},
		Split{N: 1, K: 3},
		PushNum{Value: "2"},
		Merge{},
	}

	got := StackDepths(code)
	want := []int{0, 1, 3, 4, 4}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("depth %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := []Instruction{
		PushNum{Value: "1"},
		PushNum{Value: "2"},
		Map2Cross{Op: OpAdd},
	}
	if err := Validate(valid); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}

	underflow := []Instruction{
		PushNum{Value: "1"},
		Map2Cross{Op: OpAdd},
	}
	if err := Validate(underflow); err == nil {
		t.Error("expected underflow to be rejected")
	}

	swapTooDeep := []Instruction{
		PushNum{Value: "1"},
		Swap{Depth: 3},
	}
	if err := Validate(swapTooDeep); err == nil {
		t.Error("expected too-deep swap to be rejected")
	}
}

func TestDisassemble(t *testing.T) {
	code := []Instruction{
		PushNum{Value: "1"},
		PushNum{Value: "2"},
		Map2Cross{Op: OpAdd},
	}

	out := Disassemble(code)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "Map2Cross(Add)") {
		t.Errorf("missing instruction rendering: %q", lines[2])
	}
	if !strings.Contains(lines[2], "[1]") {
		t.Errorf("missing running depth: %q", lines[2])
	}
}
