package xdecode

import (
	"testing"

	"github.com/tanglebyte/supersetds/regset"
)

func TestDecodeNop(t *testing.T) {
	inst, err := Decode([]byte{0x90}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Size != 1 {
		t.Fatalf("size = %d, want 1", inst.Size)
	}
	if !inst.FallsThrough {
		t.Fatal("NOP should fall through")
	}
	if inst.JumpTarget != nil {
		t.Fatal("NOP should have no jump target")
	}
}

func TestDecodeRet(t *testing.T) {
	inst, err := Decode([]byte{0xC3}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.FallsThrough {
		t.Fatal("RET should not fall through")
	}
}

func TestDecodeDirectJump(t *testing.T) {
	// EB 05: JMP rel8 +5, decoded at 0x1000 -> target 0x1007 (0x1000+2+5)
	inst, err := Decode([]byte{0xEB, 0x05}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.FallsThrough {
		t.Fatal("JMP should not fall through")
	}
	if inst.JumpTarget == nil {
		t.Fatal("expected a direct jump target")
	}
	if *inst.JumpTarget != 0x1007 {
		t.Fatalf("target = %#x, want 0x1007", *inst.JumpTarget)
	}
}

func TestDecodeConditionalBranchFallsThrough(t *testing.T) {
	// 74 05: JE rel8 +5
	inst, err := Decode([]byte{0x74, 0x05}, 0x2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.FallsThrough {
		t.Fatal("conditional branch should fall through")
	}
	if inst.JumpTarget == nil || *inst.JumpTarget != 0x2007 {
		t.Fatalf("unexpected target: %v", inst.JumpTarget)
	}
}

func TestDecodeInt3DoesNotFallThrough(t *testing.T) {
	// CC: INT3 -- raises a breakpoint exception, never falls through.
	inst, err := Decode([]byte{0xCC}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.FallsThrough {
		t.Fatal("INT3 should not fall through")
	}
}

func TestDecodeUd2DoesNotFallThrough(t *testing.T) {
	// 0F 0B: UD2 -- raises an invalid-opcode exception.
	inst, err := Decode([]byte{0x0F, 0x0B}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.FallsThrough {
		t.Fatal("UD2 should not fall through")
	}
}

func TestDecodeIntImm8DoesNotFallThrough(t *testing.T) {
	// CD 80: INT 80h -- software interrupt, raises an exception.
	inst, err := Decode([]byte{0xCD, 0x80}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.FallsThrough {
		t.Fatal("INT should not fall through")
	}
}

func TestDecodeMovDoesNotUseDestination(t *testing.T) {
	// 89 C3: MOV EBX, EAX -- EBX is pure write, not also a use.
	inst, err := Decode([]byte{0x89, 0xC3}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.Uses.Contains(regset.EAX) {
		t.Fatalf("expected MOV to use EAX (source), got %v", inst.Uses)
	}
	if inst.Uses.Contains(regset.EBX) {
		t.Fatalf("MOV destination should not be a use, got %v", inst.Uses)
	}
	if !inst.Defines.Contains(regset.EBX) {
		t.Fatalf("expected MOV to define EBX, got %v", inst.Defines)
	}
}

func TestDecodeAddDefinesEAXAndFlags(t *testing.T) {
	// 01 D8: ADD EAX, EBX
	inst, err := Decode([]byte{0x01, 0xD8}, 0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.Uses.Contains(regset.EAX) || !inst.Uses.Contains(regset.EBX) {
		t.Fatalf("expected ADD to use EAX and EBX, got %v", inst.Uses)
	}
	if !inst.Defines.Contains(regset.EAX) {
		t.Fatalf("expected ADD to define EAX, got %v", inst.Defines)
	}
	if !inst.Defines.Contains(regset.ZF) {
		t.Fatalf("expected ADD to define ZF, got %v", inst.Defines)
	}
}
