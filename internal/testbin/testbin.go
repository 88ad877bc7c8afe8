// Package testbin synthesizes minimal ELF, PE and Mach-O images in memory.
// The builders emit just enough structure for the stdlib debug parsers to
// accept the result; they exist for tests and are not a general-purpose
// writer.
package testbin

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
)

// ELFOptions controls the synthesized ELF64 image.
type ELFOptions struct {
	Type      elf.Type
	Machine   elf.Machine
	Entry     uint64
	GNUStack  bool // emit a PT_GNU_STACK program header
	StackExec bool // set PF_X on the PT_GNU_STACK header
	Relro     bool // emit a PT_GNU_RELRO program header
	Symbols   []string
}

const (
	elfHeaderSize  = 64
	progEntrySize  = 56
	sectEntrySize  = 64
	symEntrySize   = 24
	shstrtabString = "\x00.symtab\x00.strtab\x00.shstrtab\x00"
)

// ELF builds a little-endian ELF64 image with the requested header type,
// program headers and static symbol table.
func ELF(opts ELFOptions) []byte {
	if opts.Machine == elf.EM_NONE {
		opts.Machine = elf.EM_X86_64
	}

	var progs []elf.Prog64
	if opts.GNUStack {
		flags := elf.PF_R | elf.PF_W
		if opts.StackExec {
			flags |= elf.PF_X
		}
		progs = append(progs, elf.Prog64{Type: uint32(elf.PT_GNU_STACK), Flags: uint32(flags)})
	}
	if opts.Relro {
		progs = append(progs, elf.Prog64{Type: uint32(elf.PT_GNU_RELRO), Flags: uint32(elf.PF_R)})
	}

	// String table: leading NUL, then the symbol names.
	strtab := []byte{0}
	nameOffsets := make([]uint32, len(opts.Symbols))
	for i, name := range opts.Symbols {
		nameOffsets[i] = uint32(len(strtab))
		strtab = append(strtab, name...)
		strtab = append(strtab, 0)
	}

	phOff := uint64(elfHeaderSize)
	strOff := phOff + uint64(len(progs)*progEntrySize)
	shstrOff := strOff + uint64(len(strtab))
	symOff := align8(shstrOff + uint64(len(shstrtabString)))
	symSize := uint64((len(opts.Symbols) + 1) * symEntrySize)
	shOff := symOff + symSize

	hdr := elf.Header64{
		Ident:     [16]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		Type:      uint16(opts.Type),
		Machine:   uint16(opts.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     opts.Entry,
		Phoff:     phOff,
		Shoff:     shOff,
		Ehsize:    elfHeaderSize,
		Phentsize: progEntrySize,
		Phnum:     uint16(len(progs)),
		Shentsize: sectEntrySize,
		Shnum:     4,
		Shstrndx:  3,
	}

	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	write(hdr)
	for _, p := range progs {
		write(p)
	}
	buf.Write(strtab)
	buf.WriteString(shstrtabString)
	pad(&buf, symOff)

	write(elf.Sym64{}) // null symbol
	for i := range opts.Symbols {
		write(elf.Sym64{
			Name:  nameOffsets[i],
			Info:  0x12, // GLOBAL FUNC
			Value: 0x1000 + uint64(i)*16,
		})
	}

	write(elf.Section64{}) // null section
	write(elf.Section64{
		Name:      1, // .symtab
		Type:      uint32(elf.SHT_SYMTAB),
		Off:       symOff,
		Size:      symSize,
		Link:      2,
		Info:      1,
		Addralign: 8,
		Entsize:   symEntrySize,
	})
	write(elf.Section64{
		Name: 9, // .strtab
		Type: uint32(elf.SHT_STRTAB),
		Off:  strOff,
		Size: uint64(len(strtab)),
	})
	write(elf.Section64{
		Name: 17, // .shstrtab
		Type: uint32(elf.SHT_STRTAB),
		Off:  shstrOff,
		Size: uint64(len(shstrtabString)),
	})

	return buf.Bytes()
}

// Export is one address-table entry of a synthesized PE export table. An
// empty Name produces an ordinal-only export with no name-table entry.
type Export struct {
	Name string
	RVA  uint32
}

const (
	peHeaderOff   = 0x40
	peSectionVA   = 0x1000
	peSectionRaw  = 0x200
	peExportDirSz = 40
)

// PE64 builds a PE32+ image with one .edata section holding an export table,
// and the given DLL-characteristics bits in the optional header.
func PE64(dllCharacteristics uint16, exports []Export) []byte {
	edata := buildExportData(exports)

	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	// DOS header: magic plus the PE header offset at 0x3c.
	dos := make([]byte, peHeaderOff)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3c:], peHeaderOff)
	buf.Write(dos)

	buf.WriteString("PE\x00\x00")
	write(pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_AMD64,
		NumberOfSections:     1,
		SizeOfOptionalHeader: 240,
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_LARGE_ADDRESS_AWARE,
	})

	opt := pe.OptionalHeader64{
		Magic:               0x20b,
		AddressOfEntryPoint: 0x1500,
		ImageBase:           0x140000000,
		SectionAlignment:    0x1000,
		FileAlignment:       0x200,
		SizeOfImage:         0x2000,
		SizeOfHeaders:       peSectionRaw,
		Subsystem:           3, // console
		DllCharacteristics:  dllCharacteristics,
		NumberOfRvaAndSizes: 16,
	}
	if len(exports) > 0 {
		opt.DataDirectory[0] = pe.DataDirectory{
			VirtualAddress: peSectionVA,
			Size:           uint32(len(edata)),
		}
	}
	write(opt)

	write(pe.SectionHeader32{
		Name:             [8]uint8{'.', 'e', 'd', 'a', 't', 'a'},
		VirtualSize:      uint32(len(edata)),
		VirtualAddress:   peSectionVA,
		SizeOfRawData:    uint32(len(edata)),
		PointerToRawData: peSectionRaw,
		Characteristics:  0x40000040, // initialized data, readable
	})

	pad(&buf, peSectionRaw)
	buf.Write(edata)

	return buf.Bytes()
}

// buildExportData lays out an IMAGE_EXPORT_DIRECTORY with parallel function,
// name and ordinal arrays, relative to peSectionVA.
func buildExportData(exports []Export) []byte {
	n := uint32(len(exports))
	var named []int
	for i, exp := range exports {
		if exp.Name != "" {
			named = append(named, i)
		}
	}
	nNames := uint32(len(named))

	funcsOff := uint32(peExportDirSz)
	namesOff := funcsOff + 4*n
	ordsOff := namesOff + 4*nNames
	strOff := ordsOff + 2*nNames

	var names bytes.Buffer
	nameRVAs := make([]uint32, len(named))
	for i, idx := range named {
		nameRVAs[i] = peSectionVA + strOff + uint32(names.Len())
		names.WriteString(exports[idx].Name)
		names.WriteByte(0)
	}

	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	// IMAGE_EXPORT_DIRECTORY
	write(uint32(0))              // Characteristics
	write(uint32(0))              // TimeDateStamp
	write(uint16(0))              // MajorVersion
	write(uint16(0))              // MinorVersion
	write(uint32(0))              // Name
	write(uint32(1))              // Base
	write(n)                      // NumberOfFunctions
	write(nNames)                 // NumberOfNames
	write(peSectionVA + funcsOff) // AddressOfFunctions
	write(peSectionVA + namesOff) // AddressOfNames
	write(peSectionVA + ordsOff)  // AddressOfNameOrdinals

	for _, exp := range exports {
		write(exp.RVA)
	}
	for _, rva := range nameRVAs {
		write(rva)
	}
	for _, idx := range named {
		write(uint16(idx))
	}
	buf.Write(names.Bytes())

	return buf.Bytes()
}

// MachOOptions controls the synthesized 64-bit Mach-O image.
type MachOOptions struct {
	Flags    uint32
	TextAddr uint64 // __TEXT segment vmaddr; segment emitted when non-zero
	EntryOff uint64 // LC_MAIN entryoff; command emitted when non-zero
}

const (
	machoMagic64    = 0xfeedfacf
	machoCPUAmd64   = 0x01000007
	machoFileExec   = 0x2
	machoSegment64  = 0x19
	machoLCMain     = 0x80000028
	machoSeg64Size  = 72
	machoLCMainSize = 24
)

// MachO builds a little-endian 64-bit thin Mach-O image with the given
// header flags, plus an optional __TEXT segment and LC_MAIN command.
func MachO(opts MachOOptions) []byte {
	var cmds bytes.Buffer
	ncmds := uint32(0)
	write := func(v any) { _ = binary.Write(&cmds, binary.LittleEndian, v) }

	if opts.TextAddr != 0 {
		ncmds++
		write(uint32(machoSegment64))
		write(uint32(machoSeg64Size))
		var name [16]byte
		copy(name[:], "__TEXT")
		write(name)
		write(opts.TextAddr) // vmaddr
		write(uint64(0x4000))
		write(uint64(0)) // fileoff
		write(uint64(0x4000))
		write(uint32(5)) // maxprot r-x
		write(uint32(5)) // initprot r-x
		write(uint32(0)) // nsects
		write(uint32(0)) // flags
	}
	if opts.EntryOff != 0 {
		ncmds++
		write(uint32(machoLCMain))
		write(uint32(machoLCMainSize))
		write(opts.EntryOff)
		write(uint64(0)) // stacksize
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, macho.FileHeader{
		Magic:  machoMagic64,
		Cpu:    machoCPUAmd64,
		SubCpu: 3,
		Type:   machoFileExec,
		Ncmd:   ncmds,
		Cmdsz:  uint32(cmds.Len()),
		Flags:  opts.Flags,
	})
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0)) // reserved
	buf.Write(cmds.Bytes())

	return buf.Bytes()
}

func align8(off uint64) uint64 {
	return (off + 7) &^ 7
}

func pad(buf *bytes.Buffer, to uint64) {
	for uint64(buf.Len()) < to {
		buf.WriteByte(0)
	}
}
