package disasm

import "testing"

func TestDisassembleX86_64(t *testing.T) {
	// xor eax, eax; ret
	code := []byte{0x31, 0xc0, 0xc3}

	insts, err := Disassemble("x86_64", code, 0x401000, 10)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("len = %d, want 2", len(insts))
	}

	if insts[0].Address != 0x401000 || insts[0].Mnemonic != "xor" {
		t.Errorf("insts[0] = %+v, want xor at 0x401000", insts[0])
	}
	if insts[1].Address != 0x401002 || insts[1].Mnemonic != "ret" {
		t.Errorf("insts[1] = %+v, want ret at 0x401002", insts[1])
	}
}

func TestDisassembleLimit(t *testing.T) {
	// Five NOPs, limit three.
	code := []byte{0x90, 0x90, 0x90, 0x90, 0x90}

	insts, err := Disassemble("x86_64", code, 0, 3)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(insts) != 3 {
		t.Errorf("len = %d, want 3 (limit)", len(insts))
	}
}

func TestDisassembleARM64(t *testing.T) {
	// ret (0xd65f03c0, little-endian in memory)
	code := []byte{0xc0, 0x03, 0x5f, 0xd6}

	insts, err := Disassemble("aarch64", code, 0x1000, 10)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(insts) != 1 || insts[0].Mnemonic != "ret" {
		t.Errorf("insts = %+v, want single ret", insts)
	}
}

func TestDisassembleUnsupportedArch(t *testing.T) {
	if _, err := Disassemble("mips", []byte{0x00}, 0, 1); err == nil {
		t.Error("Disassemble(mips) succeeded, want error")
	}
}

func TestDisassembleStopsOnUndecodable(t *testing.T) {
	// A ret followed by a truncated multi-byte opcode.
	code := []byte{0xc3, 0x0f}

	insts, err := Disassemble("x86_64", code, 0, 10)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(insts) != 1 {
		t.Errorf("len = %d, want 1 (stop at undecodable tail)", len(insts))
	}
}

func TestDisassembleEmpty(t *testing.T) {
	insts, err := Disassemble("x86_64", nil, 0, 10)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(insts) != 0 {
		t.Errorf("len = %d, want 0", len(insts))
	}
}
