// Package security derives exploit-mitigation features from parsed
// executables. Every check here is a heuristic: it approximates compiler and
// linker intent from observable artifacts, and false positives/negatives are
// accepted rather than guessed around.
package security

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"strings"
)

// Features is the normalized cross-format security posture. Each flag is set
// only on a positive heuristic match; false means "not detected", not
// "absent".
type Features struct {
	PIE    bool `json:"pie"`
	NX     bool `json:"nx"`
	RELRO  bool `json:"relro"`
	Canary bool `json:"canary"`
}

// stackCanarySymbol is the failure hook emitted by stack-protector
// instrumentation on ELF targets.
const stackCanarySymbol = "__stack_chk_fail"

// DLL-characteristics bits of the PE optional header.
const (
	peDynamicBase = 0x0040
	peNXCompat    = 0x0100
)

// AnalyzeELF inspects an ELF file.
//
// PIE is inferred from ET_DYN, which is a known over-approximation: a plain
// shared library is indistinguishable from a PIE executable by the header
// type alone. NX requires an explicit PT_GNU_STACK header with the execute
// flag clear; a missing header is reported as NX off even though modern
// toolchains usually default to non-executable stacks. RELRO does not
// distinguish partial from full.
func AnalyzeELF(f *elf.File) Features {
	nx, relro := stackProtections(f.Progs)
	return Features{
		PIE:    f.Type == elf.ET_DYN,
		NX:     nx,
		RELRO:  relro,
		Canary: hasStackCanary(f),
	}
}

func stackProtections(progs []*elf.Prog) (nx, relro bool) {
	for _, p := range progs {
		switch p.Type {
		case elf.PT_GNU_STACK:
			nx = p.Flags&elf.PF_X == 0
		case elf.PT_GNU_RELRO:
			relro = true
		}
	}
	return nx, relro
}

func hasStackCanary(f *elf.File) bool {
	if syms, err := f.Symbols(); err == nil && containsCanary(syms) {
		return true
	}
	syms, err := f.DynamicSymbols()
	return err == nil && containsCanary(syms)
}

func containsCanary(syms []elf.Symbol) bool {
	for _, sym := range syms {
		if strings.Contains(sym.Name, stackCanarySymbol) {
			return true
		}
	}
	return false
}

// AnalyzePE inspects a PE file via the optional header's DLL-characteristics
// field: dynamic base for PIE/ASLR, NX-compat for DEP.
//
// RELRO has no PE analogue and stack-cookie detection would need import-table
// inspection of the /GS check routine; both stay false.
func AnalyzePE(f *pe.File) Features {
	var dllChars uint16
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dllChars = oh.DllCharacteristics
	case *pe.OptionalHeader64:
		dllChars = oh.DllCharacteristics
	}

	return Features{
		PIE: dllChars&peDynamicBase != 0,
		NX:  dllChars&peNXCompat != 0,
	}
}

// AnalyzeMachO inspects a thin Mach-O binary via its header flags: MH_PIE
// for position independence, and the absence of MH_ALLOW_STACK_EXECUTION is
// read as a non-executable stack. RELRO and canary are not evaluated for
// Mach-O. Fat binaries are not analyzed; callers report all-false defaults
// for them.
func AnalyzeMachO(f *macho.File) Features {
	return Features{
		PIE: f.Flags&macho.FlagPIE != 0,
		NX:  f.Flags&macho.FlagAllowStackExecution == 0,
	}
}
