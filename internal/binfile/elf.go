package binfile

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/ismailtsdln/BinaryInsight/internal/security"
)

// parseELF normalizes an ELF file: one SectionInfo per section header in
// table order, symbols from the static symbol table. A stripped binary
// (no .symtab) yields an empty symbol list, not an error.
func parseELF(data []byte) (BinaryInfo, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return BinaryInfo{}, &ParseError{Format: "ELF", Err: err}
	}

	sections := make([]SectionInfo, 0, len(f.Sections))
	for _, s := range f.Sections {
		sections = append(sections, SectionInfo{
			Name:   s.Name,
			Addr:   s.Addr,
			Size:   s.Size,
			Offset: s.Offset,
		})
	}

	symbols := []SymbolInfo{}
	if syms, err := f.Symbols(); err == nil {
		symbols = make([]SymbolInfo, 0, len(syms))
		for _, sym := range syms {
			symbols = append(symbols, SymbolInfo{Name: sym.Name, Addr: sym.Value})
		}
	}

	return BinaryInfo{
		Format:     FormatELF.String(),
		Arch:       elfArch(f.Machine),
		EntryPoint: f.Entry,
		Sections:   sections,
		Symbols:    symbols,
		Security:   security.AnalyzeELF(f),
	}, nil
}

func elfArch(m elf.Machine) string {
	switch m {
	case elf.EM_X86_64:
		return "x86_64"
	case elf.EM_386:
		return "x86"
	case elf.EM_AARCH64:
		return "aarch64"
	case elf.EM_ARM:
		return "arm"
	case elf.EM_RISCV:
		return "riscv"
	case elf.EM_PPC64:
		return "ppc64"
	case elf.EM_S390:
		return "s390x"
	case elf.EM_MIPS:
		return "mips"
	default:
		return fmt.Sprintf("Unknown (%d)", uint16(m))
	}
}
