package binfile

import (
	"bytes"
	"debug/pe"
	"fmt"

	"github.com/ismailtsdln/BinaryInsight/internal/security"
)

// parsePE normalizes a PE file. Section addresses and sizes are virtual,
// offsets are raw file pointers. Symbols are the entries of the export
// table; ordinal-only exports keep an empty name.
func parsePE(data []byte) (BinaryInfo, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return BinaryInfo{}, &ParseError{Format: "PE", Err: err}
	}

	sections := make([]SectionInfo, 0, len(f.Sections))
	for _, s := range f.Sections {
		sections = append(sections, SectionInfo{
			Name:   s.Name,
			Addr:   uint64(s.VirtualAddress),
			Size:   uint64(s.VirtualSize),
			Offset: uint64(s.Offset),
		})
	}

	var entry uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		entry = uint64(oh.AddressOfEntryPoint)
	case *pe.OptionalHeader64:
		entry = uint64(oh.AddressOfEntryPoint)
	}

	return BinaryInfo{
		Format:     FormatPE.String(),
		Arch:       peArch(f.Machine),
		EntryPoint: entry,
		Sections:   sections,
		Symbols:    peExports(f, data),
		Security:   security.AnalyzePE(f),
	}, nil
}

func peArch(machine uint16) string {
	switch machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return "x86_64"
	case pe.IMAGE_FILE_MACHINE_I386:
		return "x86"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "aarch64"
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		return "arm"
	default:
		return fmt.Sprintf("Unknown (%d)", machine)
	}
}
