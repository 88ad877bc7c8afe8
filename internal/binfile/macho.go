package binfile

import (
	"bytes"
	"debug/macho"
	"fmt"

	"github.com/ismailtsdln/BinaryInsight/internal/security"
)

// LC_MAIN is not decoded by debug/macho, so the entry point is recovered
// from its raw load command bytes.
const lcMain = 0x80000028

// parseMachO normalizes a thin Mach-O binary. Sections arrive from the
// parser already flattened in segment-then-section order; section names are
// qualified with their segment. Symbols come from the symbol table; fat
// binaries never reach this path.
func parseMachO(data []byte) (BinaryInfo, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return BinaryInfo{}, &ParseError{Format: "Mach-O", Err: err}
	}

	sections := make([]SectionInfo, 0, len(f.Sections))
	for _, s := range f.Sections {
		sections = append(sections, SectionInfo{
			Name:   s.Seg + "." + s.Name,
			Addr:   s.Addr,
			Size:   s.Size,
			Offset: uint64(s.Offset),
		})
	}

	symbols := []SymbolInfo{}
	if f.Symtab != nil {
		symbols = make([]SymbolInfo, 0, len(f.Symtab.Syms))
		for _, sym := range f.Symtab.Syms {
			symbols = append(symbols, SymbolInfo{Name: sym.Name, Addr: sym.Value})
		}
	}

	return BinaryInfo{
		Format:     FormatMachO.String(),
		Arch:       machoArch(f.Cpu),
		EntryPoint: machoEntry(f),
		Sections:   sections,
		Symbols:    symbols,
		Security:   security.AnalyzeMachO(f),
	}, nil
}

// machoEntry reads LC_MAIN's entryoff and rebases it onto the __TEXT segment
// to yield a virtual address. Binaries without LC_MAIN report 0.
func machoEntry(f *macho.File) uint64 {
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) < 16 || f.ByteOrder.Uint32(raw[0:4]) != lcMain {
			continue
		}
		entryOff := f.ByteOrder.Uint64(raw[8:16])
		if text := f.Segment("__TEXT"); text != nil {
			return text.Addr + entryOff
		}
		return entryOff
	}
	return 0
}

func machoArch(cpu macho.Cpu) string {
	switch cpu {
	case macho.CpuAmd64:
		return "x86_64"
	case macho.Cpu386:
		return "x86"
	case macho.CpuArm64:
		return "aarch64"
	case macho.CpuArm:
		return "arm"
	case macho.CpuPpc64:
		return "ppc64"
	default:
		return fmt.Sprintf("Unknown (%d)", uint32(cpu))
	}
}
