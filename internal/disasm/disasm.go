// Package disasm decodes machine code into instruction listings using the
// golang.org/x/arch decoders.
package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Instruction is one decoded instruction at its virtual address.
type Instruction struct {
	Address  uint64 `json:"address"`
	Mnemonic string `json:"mnemonic"`
	OpStr    string `json:"op_str"`
}

// Disassemble decodes up to limit instructions from code, whose first byte
// lives at base. Supported arch labels are the ones the normalizers emit:
// "x86_64", "x86" and "aarch64". Decoding stops quietly at the first byte
// sequence the decoder rejects; an unsupported architecture is an error.
func Disassemble(arch string, code []byte, base uint64, limit int) ([]Instruction, error) {
	switch arch {
	case "x86_64":
		return disasmX86(code, base, limit, 64), nil
	case "x86":
		return disasmX86(code, base, limit, 32), nil
	case "aarch64":
		return disasmARM64(code, base, limit), nil
	default:
		return nil, fmt.Errorf("unsupported architecture for disassembly: %s", arch)
	}
}

func disasmX86(code []byte, base uint64, limit, mode int) []Instruction {
	var out []Instruction
	pc := base
	for len(code) > 0 && len(out) < limit {
		inst, err := x86asm.Decode(code, mode)
		if err != nil {
			break
		}
		out = append(out, split(pc, x86asm.IntelSyntax(inst, pc, nil)))
		code = code[inst.Len:]
		pc += uint64(inst.Len)
	}
	return out
}

func disasmARM64(code []byte, base uint64, limit int) []Instruction {
	var out []Instruction
	pc := base
	for len(code) >= 4 && len(out) < limit {
		inst, err := arm64asm.Decode(code[:4])
		if err != nil {
			break
		}
		out = append(out, split(pc, arm64asm.GNUSyntax(inst)))
		code = code[4:]
		pc += 4
	}
	return out
}

// split separates the decoder's one-line syntax into mnemonic and operand
// text.
func split(pc uint64, text string) Instruction {
	mnemonic, opStr, _ := strings.Cut(text, " ")
	return Instruction{Address: pc, Mnemonic: mnemonic, OpStr: opStr}
}
