package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ismailtsdln/BinaryInsight/internal/analysis"
	"github.com/ismailtsdln/BinaryInsight/internal/binfile"
	"github.com/ismailtsdln/BinaryInsight/internal/disasm"
)

// unknownName is the display fallback for symbols the binary carries
// without a resolvable name.
const unknownName = "<unknown>"

// Options controls the shape of the text report.
type Options struct {
	Color       bool
	DisasmLimit int
	// MaxSymbols and MaxStrings cap the listings; the rest is summarized
	// as a count.
	MaxSymbols int
	MaxStrings int
	// YaraMatches are rule names from a completed scan; YaraRan
	// distinguishes "no matches" from "not scanned".
	YaraRan     bool
	YaraMatches []string
}

// Write renders the full text report for bin. Hashes and entropy are
// computed here, over the raw buffer, independent of format detection.
//
//nolint:errcheck // report writes target stdout/buffers
func Write(w io.Writer, bin *binfile.BinaryFile, opts Options) {
	info := bin.Info
	useColor := opts.Color

	heading := func(s string) string { return colorize(s, ansiBold+ansiCyan, useColor) }
	value := func(s string) string { return colorize(s, ansiGreen, useColor) }
	num := func(s string) string { return colorize(s, ansiYellow, useColor) }

	fmt.Fprintf(w, "%s\n", heading("=== Binary Analysis Report ==="))
	fmt.Fprintf(w, "File:         %s\n", value(bin.Name))
	fmt.Fprintf(w, "Format:       %s\n", value(info.Format))
	fmt.Fprintf(w, "Arch:         %s\n", value(info.Arch))
	fmt.Fprintf(w, "Entry Point:  %s\n", num(fmt.Sprintf("0x%x", info.EntryPoint)))

	hashes := analysis.Hashes(bin.Data)
	fmt.Fprintf(w, "\n%s\n", heading("[Advanced Analysis]"))
	fmt.Fprintf(w, "  Entropy: %s (Scale: 0.0-8.0)\n", num(fmt.Sprintf("%.4f", analysis.Entropy(bin.Data))))
	fmt.Fprintf(w, "  MD5:     %s\n", hashes.MD5)
	fmt.Fprintf(w, "  SHA1:    %s\n", hashes.SHA1)
	fmt.Fprintf(w, "  SHA256:  %s\n", hashes.SHA256)

	fmt.Fprintf(w, "\n%s\n", heading("[Security Features]"))
	fmt.Fprintf(w, "  PIE:    %s\n", boolMark(info.Security.PIE, useColor))
	fmt.Fprintf(w, "  NX:     %s\n", boolMark(info.Security.NX, useColor))
	fmt.Fprintf(w, "  RELRO:  %s\n", boolMark(info.Security.RELRO, useColor))
	fmt.Fprintf(w, "  Canary: %s\n", boolMark(info.Security.Canary, useColor))

	if opts.YaraRan {
		fmt.Fprintf(w, "\n%s\n", heading("[YARA Scan]"))
		if len(opts.YaraMatches) == 0 {
			fmt.Fprintln(w, "  No matches found.")
		}
		for _, m := range opts.YaraMatches {
			fmt.Fprintf(w, "  Match: %s\n", colorize(m, ansiMagenta, useColor))
		}
	}

	writeDisassembly(w, bin, opts)
	writeSections(w, info, useColor)
	writeSymbols(w, info, opts, useColor)
	writeStrings(w, info, opts)
}

// writeDisassembly decodes the first instructions of the code section, when
// one exists and the architecture has a decoder.
//
//nolint:errcheck
func writeDisassembly(w io.Writer, bin *binfile.BinaryFile, opts Options) {
	fmt.Fprintf(w, "\n%s\n", colorize("[Disassembly (Entry Point / .text)]", ansiBold+ansiCyan, opts.Color))

	section, ok := codeSection(bin.Info.Sections)
	if !ok {
		fmt.Fprintln(w, "  No code section found.")
		return
	}

	start := min(int(section.Offset), len(bin.Data))
	end := min(start+int(section.Size), len(bin.Data))
	if start >= end {
		fmt.Fprintln(w, "  Section data out of bounds or empty.")
		return
	}

	insts, err := disasm.Disassemble(bin.Info.Arch, bin.Data[start:end], section.Addr, opts.DisasmLimit)
	if err != nil {
		fmt.Fprintf(w, "  Disassembly failed: %v\n", err)
		return
	}
	for _, ins := range insts {
		fmt.Fprintf(w, "  0x%x:  %-10s %s\n", ins.Address, ins.Mnemonic, ins.OpStr)
	}
}

// codeSection picks the section holding executable code, by conventional
// name per format.
func codeSection(sections []binfile.SectionInfo) (binfile.SectionInfo, bool) {
	for _, s := range sections {
		if s.Name == ".text" || s.Name == "__TEXT.__text" || strings.Contains(s.Name, "text") {
			return s, true
		}
	}
	return binfile.SectionInfo{}, false
}

//nolint:errcheck
func writeSections(w io.Writer, info binfile.BinaryInfo, useColor bool) {
	fmt.Fprintf(w, "\n%s\n", colorize("[Sections]", ansiBold+ansiCyan, useColor))
	fmt.Fprintf(w, "%-20s %-18s %-18s\n", "Name", "Address", "Size")
	for _, s := range info.Sections {
		fmt.Fprintf(w, "%-20s 0x%-16x 0x%-16x\n", s.Name, s.Addr, s.Size)
	}
}

//nolint:errcheck
func writeSymbols(w io.Writer, info binfile.BinaryInfo, opts Options, useColor bool) {
	fmt.Fprintf(w, "\n%s\n", colorize("[Symbols]", ansiBold+ansiCyan, useColor))
	fmt.Fprintf(w, "Total symbols: %d\n", len(info.Symbols))

	shown := min(len(info.Symbols), opts.MaxSymbols)
	for _, sym := range info.Symbols[:shown] {
		name := sym.Name
		if name == "" {
			name = unknownName
		}
		fmt.Fprintf(w, "%-40s 0x%-16x\n", name, sym.Addr)
	}
	if rest := len(info.Symbols) - shown; rest > 0 {
		fmt.Fprintf(w, "... and %d more\n", rest)
	}
}

//nolint:errcheck
func writeStrings(w io.Writer, info binfile.BinaryInfo, opts Options) {
	fmt.Fprintf(w, "\n%s\n", colorize("[Strings]", ansiBold+ansiCyan, opts.Color))
	fmt.Fprintf(w, "Total strings found: %d\n", len(info.Strings))

	shown := min(len(info.Strings), opts.MaxStrings)
	for _, s := range info.Strings[:shown] {
		fmt.Fprintln(w, s)
	}
	if rest := len(info.Strings) - shown; rest > 0 {
		fmt.Fprintf(w, "... and %d more\n", rest)
	}
}

func boolMark(v bool, useColor bool) string {
	if v {
		return colorize("true", ansiGreen, useColor)
	}
	return colorize("false", ansiDim, useColor)
}
