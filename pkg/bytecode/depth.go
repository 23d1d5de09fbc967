package bytecode

import (
	"fmt"
	"strings"
)

// StackDepths returns the running operand-stack depth at every instruction
// boundary of code. The result has len(code)+1 entries; entry i is the depth
// before instruction i executes, and the final entry is the depth after the
// whole vector.
func StackDepths(code []Instruction) []int {
	depths := make([]int, len(code)+1)
	for i, inst := range code {
		pops, pushes := inst.StackDelta()
		depths[i+1] = depths[i] - pops + pushes
	}
	return depths
}

// Validate checks that code never drives the operand stack negative: at
// every instruction, the values it pops must already be on the stack. A
// violation indicates an emitter bug, not a user error.
func Validate(code []Instruction) error {
	depth := 0
	for i, inst := range code {
		pops, pushes := inst.StackDelta()
		if depth < pops {
			return fmt.Errorf("instruction %d (%s): pops %d with stack depth %d", i, inst, pops, depth)
		}
		depth = depth - pops + pushes
	}
	return nil
}

// Disassemble renders code one instruction per line with positions and
// running depths.
func Disassemble(code []Instruction) string {
	var sb strings.Builder
	depths := StackDepths(code)
	for i, inst := range code {
		fmt.Fprintf(&sb, "%04d  [%d] %s\n", i, depths[i+1], inst.String())
	}
	return sb.String()
}
