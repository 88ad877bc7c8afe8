package binfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ismailtsdln/BinaryInsight/internal/security"
	"github.com/ismailtsdln/BinaryInsight/internal/testbin"
)

func hardenedELF() []byte {
	return testbin.ELF(testbin.ELFOptions{
		Type:     elf.ET_DYN,
		Entry:    0x1040,
		GNUStack: true,
		Relro:    true,
		Symbols:  []string{"main", "__stack_chk_fail"},
	})
}

// fatMachO wraps a thin image in a universal (fat) container. The fat
// header is always big-endian.
func fatMachO(thin []byte) []byte {
	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, binary.BigEndian, v) }

	const archOffset = 0x40
	write(uint32(fatMagic))
	write(uint32(1))          // nfat_arch
	write(uint32(0x01000007)) // cputype amd64
	write(uint32(3))          // cpusubtype
	write(uint32(archOffset))
	write(uint32(len(thin)))
	write(uint32(0)) // align
	for buf.Len() < archOffset {
		buf.WriteByte(0)
	}
	buf.Write(thin)
	return buf.Bytes()
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatELF, "ELF"},
		{FormatPE, "PE"},
		{FormatMachO, "Mach-O"},
		{FormatMachOFat, "Mach-O (Fat)"},
		{FormatUnknown, "Unknown/Archive"},
		{Format(999), "Unknown/Archive"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.format.String(); got != tt.want {
				t.Errorf("Format.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		want      Format
		wantError bool
	}{
		{name: "ELF", data: hardenedELF(), want: FormatELF},
		{name: "PE", data: testbin.PE64(0, nil), want: FormatPE},
		{name: "Mach-O thin", data: testbin.MachO(testbin.MachOOptions{}), want: FormatMachO},
		{name: "Mach-O fat", data: fatMachO(testbin.MachO(testbin.MachOOptions{})), want: FormatMachOFat},
		{name: "empty", data: nil, want: FormatUnknown},
		{name: "plain text", data: []byte("just some text, nothing else"), want: FormatUnknown},
		{name: "short buffer", data: []byte{0x7f, 'E'}, want: FormatUnknown},
		{
			name:      "truncated ELF header",
			data:      []byte("\x7fELF\x02\x01\x01"),
			want:      FormatELF,
			wantError: true,
		},
		{
			name:      "MZ without PE structure",
			data:      append([]byte("MZ"), make([]byte, 62)...),
			want:      FormatPE,
			wantError: true,
		},
		{
			name:      "fat magic without members",
			data:      []byte{0xca, 0xfe, 0xba, 0xbe, 0xde, 0xad, 0xbe, 0xef},
			want:      FormatMachOFat,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if tt.wantError {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("Detect() error = %v, want *ParseError", err)
				}
			} else if err != nil {
				t.Errorf("Detect() unexpected error: %v", err)
			}
		})
	}
}

func TestParseELF(t *testing.T) {
	info, err := Parse(hardenedELF(), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.Format != "ELF" {
		t.Errorf("Format = %q, want ELF", info.Format)
	}
	if info.Arch != "x86_64" {
		t.Errorf("Arch = %q, want x86_64", info.Arch)
	}
	if info.EntryPoint != 0x1040 {
		t.Errorf("EntryPoint = %#x, want 0x1040", info.EntryPoint)
	}

	// The synthesized image carries four section headers, null included,
	// in table order.
	if len(info.Sections) != 4 {
		t.Fatalf("len(Sections) = %d, want 4", len(info.Sections))
	}
	if info.Sections[1].Name != ".symtab" || info.Sections[2].Name != ".strtab" {
		t.Errorf("section order = %q, %q; want .symtab, .strtab", info.Sections[1].Name, info.Sections[2].Name)
	}

	var names []string
	for _, sym := range info.Symbols {
		names = append(names, sym.Name)
	}
	if !reflect.DeepEqual(names, []string{"main", "__stack_chk_fail"}) {
		t.Errorf("symbol names = %v", names)
	}

	want := security.Features{PIE: true, NX: true, RELRO: true, Canary: true}
	if info.Security != want {
		t.Errorf("Security = %+v, want %+v", info.Security, want)
	}
}

func TestParsePE(t *testing.T) {
	exports := []testbin.Export{
		{Name: "DoThing", RVA: 0x1111},
		{Name: "DoOtherThing", RVA: 0x2222},
	}
	info, err := Parse(testbin.PE64(0x0040|0x0100, exports), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.Format != "PE" {
		t.Errorf("Format = %q, want PE", info.Format)
	}
	if info.Arch != "x86_64" {
		t.Errorf("Arch = %q, want x86_64", info.Arch)
	}
	if info.EntryPoint != 0x1500 {
		t.Errorf("EntryPoint = %#x, want 0x1500", info.EntryPoint)
	}

	if len(info.Sections) != 1 || info.Sections[0].Name != ".edata" {
		t.Fatalf("Sections = %+v, want single .edata", info.Sections)
	}
	if info.Sections[0].Addr != 0x1000 || info.Sections[0].Offset != 0x200 {
		t.Errorf("section Addr/Offset = %#x/%#x, want 0x1000/0x200", info.Sections[0].Addr, info.Sections[0].Offset)
	}

	want := []SymbolInfo{
		{Name: "DoThing", Addr: 0x1111},
		{Name: "DoOtherThing", Addr: 0x2222},
	}
	if !reflect.DeepEqual(info.Symbols, want) {
		t.Errorf("Symbols = %+v, want %+v", info.Symbols, want)
	}

	wantSec := security.Features{PIE: true, NX: true}
	if info.Security != wantSec {
		t.Errorf("Security = %+v, want %+v", info.Security, wantSec)
	}
}

func TestParseMachO(t *testing.T) {
	data := testbin.MachO(testbin.MachOOptions{
		Flags:    0x200000, // MH_PIE
		TextAddr: 0x100000000,
		EntryOff: 0x4e0,
	})
	info, err := Parse(data, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.Format != "Mach-O" {
		t.Errorf("Format = %q, want Mach-O", info.Format)
	}
	if info.Arch != "x86_64" {
		t.Errorf("Arch = %q, want x86_64", info.Arch)
	}
	if info.EntryPoint != 0x1000004e0 {
		t.Errorf("EntryPoint = %#x, want 0x1000004e0", info.EntryPoint)
	}

	wantSec := security.Features{PIE: true, NX: true}
	if info.Security != wantSec {
		t.Errorf("Security = %+v, want %+v", info.Security, wantSec)
	}
}

func TestParseMachOFat(t *testing.T) {
	info, err := Parse(fatMachO(testbin.MachO(testbin.MachOOptions{Flags: 0x200000})), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.Format != "Mach-O (Fat)" {
		t.Errorf("Format = %q, want Mach-O (Fat)", info.Format)
	}
	// Fat containers are identified, not descended into.
	if len(info.Sections) != 0 || len(info.Symbols) != 0 {
		t.Errorf("fat binary yielded sections/symbols: %d/%d", len(info.Sections), len(info.Symbols))
	}
	if info.Security != (security.Features{}) {
		t.Errorf("fat binary Security = %+v, want defaults", info.Security)
	}
}

func TestParseUnknownStillExtractsStrings(t *testing.T) {
	info, err := Parse([]byte("Hello World\x00\x01\x02TestString\x00"), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if info.Format != "Unknown/Archive" {
		t.Errorf("Format = %q, want Unknown/Archive", info.Format)
	}
	if info.Sections == nil || info.Symbols == nil {
		t.Error("Sections/Symbols must be empty, not nil")
	}
	if len(info.Sections) != 0 || len(info.Symbols) != 0 {
		t.Errorf("unexpected structural data: %d sections, %d symbols", len(info.Sections), len(info.Symbols))
	}
	if !reflect.DeepEqual(info.Strings, []string{"Hello World", "TestString"}) {
		t.Errorf("Strings = %v", info.Strings)
	}
}

func TestParseMinStringLength(t *testing.T) {
	data := []byte("tiny\x00a much longer run of text\x00")

	info, err := Parse(data, Options{MinStringLength: 8})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(info.Strings, []string{"a much longer run of text"}) {
		t.Errorf("Strings = %v, want the long run only", info.Strings)
	}

	// Zero falls back to the default minimum.
	info, err = Parse(data, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(info.Strings, []string{"tiny", "a much longer run of text"}) {
		t.Errorf("Strings = %v, want both runs", info.Strings)
	}
}

func TestLoadHonorsMinStringLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, []byte("tiny\x00a much longer run of text\x00"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	// The artifact is assembled once with the requested settings; nothing
	// rewrites it after Load returns.
	bin, err := Load(path, Options{MinStringLength: 8})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(bin.Info.Strings, []string{"a much longer run of text"}) {
		t.Errorf("Strings = %v, want the long run only", bin.Info.Strings)
	}
}

func TestParseMalformedFallsBack(t *testing.T) {
	data := []byte("\x7fELF\x02\x01\x01 truncated header, readable text")
	info, err := Parse(data, Options{})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if info.Format != "Unknown/Archive" {
		t.Errorf("Format = %q, want Unknown/Archive", info.Format)
	}
	if len(info.Strings) == 0 {
		t.Error("strings must still be extracted from unparseable input")
	}
}

func TestParseDeterministic(t *testing.T) {
	data := hardenedELF()

	first, err1 := Parse(data, Options{})
	second, err2 := Parse(data, Options{})
	if err1 != nil || err2 != nil {
		t.Fatalf("Parse() errors = %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Parse() is not deterministic for identical input")
	}
}

func TestLoad(t *testing.T) {
	data := hardenedELF()
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	bin, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if bin.Name != "sample.bin" {
		t.Errorf("Name = %q, want sample.bin", bin.Name)
	}
	if !bytes.Equal(bin.Data, data) {
		t.Error("Data does not match file contents")
	}
	if bin.Info.Format != "ELF" {
		t.Errorf("Format = %q, want ELF", bin.Info.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), Options{})

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
}
