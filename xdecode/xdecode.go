// Package xdecode adapts golang.org/x/arch/x86/x86asm's instruction decoder
// into the flow-control and register-use/def classification the superset
// builder needs, the way the teacher's disassembler package wraps cpu's raw
// opcode tables with node-level flow information (disassembler.node.go).
package xdecode

import (
	"golang.org/x/arch/x86/x86asm"

	"github.com/tanglebyte/supersetds/regset"
)

// Instruction is one successfully decoded candidate instruction.
type Instruction struct {
	Size         int
	Op           x86asm.Op
	FallsThrough bool
	// JumpTarget is the statically known address this instruction may
	// transfer control to, if any (a direct jump, call or conditional
	// branch). nil for indirect transfers, returns, and straight-line code.
	JumpTarget *uint32
	Uses       regset.Set
	Defines    regset.Set
}

// Decode decodes one instruction from the start of src, assumed to sit at
// address addr in a 32-bit execution mode. src may be longer than the
// instruction; only the decoded prefix is consumed.
func Decode(src []byte, addr uint32) (Instruction, error) {
	inst, err := x86asm.Decode(src, 32)
	if err != nil {
		return Instruction{}, err
	}

	out := Instruction{
		Size: inst.Len,
		Op:   inst.Op,
	}
	out.FallsThrough, out.JumpTarget = classifyFlow(inst, addr)
	out.Uses, out.Defines = classifyRegisters(inst)
	return out, nil
}

// classifyFlow determines whether control may fall through to the next
// instruction and whether a direct jump/call/branch target can be computed
// statically.
func classifyFlow(inst x86asm.Inst, addr uint32) (fallsThrough bool, target *uint32) {
	switch flowKind(inst.Op) {
	case flowReturn, flowHalt, flowException:
		return false, nil
	case flowUnconditionalJump:
		return false, directTarget(inst, addr)
	case flowConditionalBranch, flowCall:
		return true, directTarget(inst, addr)
	default:
		return true, nil
	}
}

// directTarget computes the absolute target address of a direct
// (Rel-operand) branch or call, the PC-relative displacement being relative
// to the address immediately following the encoded instruction.
func directTarget(inst x86asm.Inst, addr uint32) *uint32 {
	for _, a := range inst.Args {
		if a == nil {
			break
		}
		if rel, ok := a.(x86asm.Rel); ok {
			t := addr + uint32(inst.Len) + uint32(int32(rel))
			return &t
		}
	}
	return nil
}

type flowKindT int

const (
	flowOrdinary flowKindT = iota
	flowUnconditionalJump
	flowConditionalBranch
	flowCall
	flowReturn
	flowHalt
	flowException
)

var unconditionalJumps = map[x86asm.Op]bool{
	x86asm.JMP: true, x86asm.LJMP: true,
}

var conditionalBranches = map[x86asm.Op]bool{
	x86asm.JA: true, x86asm.JAE: true, x86asm.JB: true, x86asm.JBE: true,
	x86asm.JCXZ: true, x86asm.JE: true, x86asm.JECXZ: true, x86asm.JG: true,
	x86asm.JGE: true, x86asm.JL: true, x86asm.JLE: true, x86asm.JNE: true,
	x86asm.JNO: true, x86asm.JNP: true, x86asm.JNS: true, x86asm.JO: true,
	x86asm.JP: true, x86asm.JS: true,
	x86asm.LOOP: true, x86asm.LOOPE: true, x86asm.LOOPNE: true,
}

var callOps = map[x86asm.Op]bool{
	x86asm.CALL: true, x86asm.LCALL: true,
}

var returnOps = map[x86asm.Op]bool{
	x86asm.RET: true, x86asm.LRET: true,
	x86asm.IRET: true, x86asm.IRETD: true, x86asm.IRETQ: true,
}

// exceptionOps always raise a processor exception (software interrupt,
// invalid-opcode trap, or bounds-check trap) rather than continuing
// execution in line, so they never fall through.
var exceptionOps = map[x86asm.Op]bool{
	x86asm.INT: true, x86asm.INTO: true, x86asm.INT3: true,
	x86asm.UD2: true, x86asm.BOUND: true,
}

func flowKind(op x86asm.Op) flowKindT {
	switch {
	case unconditionalJumps[op]:
		return flowUnconditionalJump
	case conditionalBranches[op]:
		return flowConditionalBranch
	case callOps[op]:
		return flowCall
	case returnOps[op]:
		return flowReturn
	case op == x86asm.HLT:
		return flowHalt
	case exceptionOps[op]:
		return flowException
	default:
		return flowOrdinary
	}
}
