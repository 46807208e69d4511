package xdecode

import (
	"golang.org/x/arch/x86/x86asm"

	"github.com/tanglebyte/supersetds/regset"
)

// gprOf maps any 8/16/32-bit sub-register x86asm can report in 32-bit mode
// to its containing general-purpose register bit. Non-GPR registers (segment,
// control, FPU, XMM, ...) map to regset.Empty.
func gprOf(r x86asm.Reg) regset.Set {
	switch r {
	case x86asm.AL, x86asm.AH, x86asm.AX, x86asm.EAX:
		return regset.EAX
	case x86asm.CL, x86asm.CH, x86asm.CX, x86asm.ECX:
		return regset.ECX
	case x86asm.DL, x86asm.DH, x86asm.DX, x86asm.EDX:
		return regset.EDX
	case x86asm.BL, x86asm.BH, x86asm.BX, x86asm.EBX:
		return regset.EBX
	case x86asm.SPB, x86asm.SP, x86asm.ESP:
		return regset.ESP
	case x86asm.BPB, x86asm.BP, x86asm.EBP:
		return regset.EBP
	case x86asm.SIB, x86asm.SI, x86asm.ESI:
		return regset.ESI
	case x86asm.DIB, x86asm.DI, x86asm.EDI:
		return regset.EDI
	default:
		return regset.Empty
	}
}

// classifyRegisters derives approximate use/def register sets for an
// instruction: memory operands contribute their base/index registers as
// uses regardless of position; the first (Intel-order destination) argument
// is classified per destClass; every other register argument is a plain
// use. Flags are approximated by mnemonic via flagEffectsOf.
func classifyRegisters(inst x86asm.Inst) (uses, defines regset.Set) {
	for i, a := range inst.Args {
		if a == nil {
			break
		}
		switch v := a.(type) {
		case x86asm.Reg:
			if i == 0 {
				switch destClass(inst.Op) {
				case destWrite:
					defines = defines.Union(gprOf(v))
				case destReadWrite:
					uses = uses.Union(gprOf(v))
					defines = defines.Union(gprOf(v))
				case destReadOnly:
					uses = uses.Union(gprOf(v))
				}
				continue
			}
			uses = uses.Union(gprOf(v))
		case x86asm.Mem:
			uses = uses.Union(gprOf(v.Base)).Union(gprOf(v.Index))
		}
	}

	flagsUsed, flagsDefined := flagEffectsOf(inst.Op)
	uses = uses.Union(flagsUsed)
	defines = defines.Union(flagsDefined)
	return uses, defines
}

type destKind int

const (
	destWrite     destKind = iota // dest is overwritten wholesale: MOV, LEA, ...
	destReadWrite                 // dest is read then written: ADD, SHL, ...
	destReadOnly                  // "dest" slot is actually a read-only operand: CMP, TEST
)

// destClass reports how an op's first argument participates: as a plain
// write, a read-modify-write, or (for comparison forms) a read only.
func destClass(op x86asm.Op) destKind {
	switch op {
	case x86asm.CMP, x86asm.TEST, x86asm.CMPSB, x86asm.CMPSW, x86asm.CMPSD, x86asm.CMPSQ:
		return destReadOnly
	case x86asm.ADD, x86asm.SUB, x86asm.AND, x86asm.OR, x86asm.XOR,
		x86asm.ADC, x86asm.SBB, x86asm.NEG, x86asm.NOT,
		x86asm.INC, x86asm.DEC,
		x86asm.SHL, x86asm.SHR, x86asm.SAR, x86asm.ROL, x86asm.ROR, x86asm.RCL, x86asm.RCR,
		x86asm.XCHG, x86asm.XADD:
		return destReadWrite
	default:
		return destWrite
	}
}

// flagEffectsOf approximates which of the five tracked status flags an
// instruction reads and writes, grouped by instruction family rather than
// exact per-opcode semantics.
func flagEffectsOf(op x86asm.Op) (used, defined regset.Set) {
	arith := regset.CF.Union(regset.PF).Union(regset.AF).Union(regset.ZF).Union(regset.SF)

	switch op {
	case x86asm.ADD, x86asm.SUB, x86asm.CMP, x86asm.AND, x86asm.OR, x86asm.XOR,
		x86asm.TEST, x86asm.NEG,
		x86asm.SHL, x86asm.SHR, x86asm.SAR, x86asm.ROL, x86asm.ROR,
		x86asm.MUL, x86asm.IMUL, x86asm.DIV, x86asm.IDIV:
		return 0, arith
	case x86asm.INC, x86asm.DEC:
		// INC/DEC leave CF untouched.
		return 0, regset.PF.Union(regset.AF).Union(regset.ZF).Union(regset.SF)
	case x86asm.ADC, x86asm.SBB:
		return regset.CF, arith
	}

	switch flowKind(op) {
	case flowConditionalBranch:
		return conditionFlags(op), 0
	}

	switch op {
	case x86asm.CMOVA, x86asm.CMOVAE, x86asm.CMOVB, x86asm.CMOVBE, x86asm.CMOVE,
		x86asm.CMOVG, x86asm.CMOVGE, x86asm.CMOVL, x86asm.CMOVLE, x86asm.CMOVNE,
		x86asm.CMOVNO, x86asm.CMOVNP, x86asm.CMOVNS, x86asm.CMOVO, x86asm.CMOVP,
		x86asm.CMOVS:
		return regset.CF.Union(regset.PF).Union(regset.ZF).Union(regset.SF), 0
	}

	return 0, 0
}

// conditionFlags returns the status flags a conditional jump's predicate
// reads, approximated by the condition's name.
func conditionFlags(op x86asm.Op) regset.Set {
	switch op {
	case x86asm.JA, x86asm.JBE:
		return regset.CF.Union(regset.ZF)
	case x86asm.JAE, x86asm.JB:
		return regset.CF
	case x86asm.JE, x86asm.JNE:
		return regset.ZF
	case x86asm.JG, x86asm.JLE:
		return regset.ZF.Union(regset.SF)
	case x86asm.JGE, x86asm.JL:
		return regset.SF
	case x86asm.JS, x86asm.JNS:
		return regset.SF
	case x86asm.JP, x86asm.JNP:
		return regset.PF
	case x86asm.JO, x86asm.JNO:
		return regset.Empty
	case x86asm.JCXZ, x86asm.JECXZ, x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		return regset.Empty // count-register predicate, not a flag
	default:
		return regset.Empty
	}
}
