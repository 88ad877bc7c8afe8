package binfile

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
)

// Format classifies the container format of a binary.
type Format int

const (
	// FormatUnknown indicates input with no recognized executable magic.
	FormatUnknown Format = iota
	// FormatELF indicates an ELF (Executable and Linkable Format) binary.
	FormatELF
	// FormatPE indicates a PE (Portable Executable) binary.
	FormatPE
	// FormatMachO indicates a thin Mach-O binary.
	FormatMachO
	// FormatMachOFat indicates a Mach-O universal (fat) binary.
	FormatMachOFat
)

// String returns the display label of the format.
func (f Format) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatPE:
		return "PE"
	case FormatMachO:
		return "Mach-O"
	case FormatMachOFat:
		return "Mach-O (Fat)"
	default:
		return "Unknown/Archive"
	}
}

// Magic numbers checked before handing the buffer to a structural parser.
// Fat Mach-O magic appears byte-swapped when the file and host endianness
// disagree, so both orderings are accepted.
const (
	fatMagic        = 0xcafebabe
	fatMagicSwapped = 0xbebafeca
	machoMagic32    = 0xfeedface
	machoMagic64    = 0xfeedfacf
)

// Detect classifies data by executable magic and validates the match with
// the corresponding debug parser. Input with a recognized magic but a
// malformed or truncated structure yields the matched format together with a
// *ParseError. Input with no recognized magic is FormatUnknown, which is not
// an error.
func Detect(data []byte) (Format, error) {
	if len(data) < 4 {
		return FormatUnknown, nil
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x7fELF")):
		if _, err := elf.NewFile(bytes.NewReader(data)); err != nil {
			return FormatELF, &ParseError{Format: "ELF", Err: err}
		}
		return FormatELF, nil
	case bytes.HasPrefix(data, []byte("MZ")):
		if _, err := pe.NewFile(bytes.NewReader(data)); err != nil {
			return FormatPE, &ParseError{Format: "PE", Err: err}
		}
		return FormatPE, nil
	}

	be := binary.BigEndian.Uint32(data)
	le := binary.LittleEndian.Uint32(data)
	switch {
	case be == fatMagic || be == fatMagicSwapped:
		if _, err := macho.NewFatFile(bytes.NewReader(data)); err != nil {
			return FormatMachOFat, &ParseError{Format: "Mach-O (Fat)", Err: err}
		}
		return FormatMachOFat, nil
	case le == machoMagic32 || le == machoMagic64 || be == machoMagic32 || be == machoMagic64:
		if _, err := macho.NewFile(bytes.NewReader(data)); err != nil {
			return FormatMachO, &ParseError{Format: "Mach-O", Err: err}
		}
		return FormatMachO, nil
	}

	return FormatUnknown, nil
}
