// Package binfile reduces ELF, PE and Mach-O executables to one normalized
// metadata model. Structural decoding is delegated to the stdlib debug
// parsers; this package maps their format-specific views onto a uniform
// description of sections, symbols and security posture.
package binfile

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ismailtsdln/BinaryInsight/internal/extractor"
	"github.com/ismailtsdln/BinaryInsight/internal/security"
)

// SectionInfo is the normalized view of one section. Addr and Size are
// virtual for PE; Offset is always the raw file offset.
type SectionInfo struct {
	Name   string `json:"name"`
	Addr   uint64 `json:"addr"`
	Size   uint64 `json:"size"`
	Offset uint64 `json:"offset"`
}

// SymbolInfo is the normalized view of one symbol. Addr semantics are
// format-dependent: symbol value for ELF, export RVA for PE, n_value for
// Mach-O.
type SymbolInfo struct {
	Name string `json:"name"`
	Addr uint64 `json:"addr"`
}

// BinaryInfo is the normalized cross-format description of a binary.
// Sections and Symbols are empty, never nil, when the format has no such
// concept; their order is the on-disk table order.
type BinaryInfo struct {
	Format     string            `json:"format"`
	Arch       string            `json:"arch"`
	EntryPoint uint64            `json:"entry_point"`
	Sections   []SectionInfo     `json:"sections"`
	Symbols    []SymbolInfo      `json:"symbols"`
	Security   security.Features `json:"security"`
	Strings    []string          `json:"strings"`
}

// BinaryFile is the assembled analysis artifact: the raw buffer plus its
// normalized description. It is built once per load and not mutated
// afterwards; a fresh analysis means a fresh Load.
type BinaryFile struct {
	Name string
	Data []byte
	Info BinaryInfo
}

// Options tunes metadata assembly. The zero value is ready to use.
type Options struct {
	// MinStringLength is the minimum printable-run length for string
	// extraction; zero or negative means extractor.DefaultMinLength.
	MinStringLength int
}

// Load reads the file at path and assembles its metadata. An I/O failure is
// returned as a *LoadError and aborts the analysis; a structural parse
// failure is logged and degrades to an Unknown/Archive description instead.
// The artifact is complete on return and never mutated afterwards.
func Load(path string, opts Options) (*BinaryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	info, err := Parse(data, opts)
	if err != nil {
		log.WithError(err).Warn("structural parse failed, falling back to Unknown/Archive")
	}

	return &BinaryFile{
		Name: filepath.Base(path),
		Data: data,
		Info: info,
	}, nil
}

// Parse assembles a BinaryInfo from raw bytes. It always returns a fully
// populated description: on a *ParseError the format-specific fields fall
// back to Unknown/Archive defaults and the error is returned alongside for
// diagnostics. Strings are extracted over the whole buffer regardless of
// format.
func Parse(data []byte, opts Options) (BinaryInfo, error) {
	var info BinaryInfo

	format, err := Detect(data)
	if err == nil {
		switch format {
		case FormatELF:
			info, err = parseELF(data)
		case FormatPE:
			info, err = parsePE(data)
		case FormatMachO:
			info, err = parseMachO(data)
		case FormatMachOFat:
			// Fat containers are identified but not descended into; the
			// per-architecture members keep their own metadata.
			info = emptyInfo(FormatMachOFat)
		default:
			info = emptyInfo(FormatUnknown)
		}
	}
	if err != nil {
		info = emptyInfo(FormatUnknown)
	}

	info.Strings = extractor.Extract(data, opts.MinStringLength)
	return info, err
}

func emptyInfo(format Format) BinaryInfo {
	return BinaryInfo{
		Format:   format.String(),
		Sections: []SectionInfo{},
		Symbols:  []SymbolInfo{},
	}
}
