package binfile

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
)

// IMAGE_EXPORT_DIRECTORY field offsets.
const (
	expNumberOfFuncs  = 20
	expNumberOfNames  = 24
	expAddrOfFuncs    = 28
	expAddrOfNames    = 32
	expAddrOfOrdinals = 36

	// maxExports bounds the walk so a malformed count cannot make the
	// normalizer allocate without limit.
	maxExports = 1 << 16
)

// peExports walks the export data directory and returns one SymbolInfo per
// occupied address-table slot, in function-table order. Exports carried only
// by ordinal keep an empty name. The stdlib parser does not decode exports,
// so the directory is read from the raw buffer; any out-of-bounds or
// unresolvable entry ends the walk silently with whatever was collected.
func peExports(f *pe.File, data []byte) []SymbolInfo {
	symbols := []SymbolInfo{}

	var dir pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes == 0 {
			return symbols
		}
		dir = oh.DataDirectory[0]
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes == 0 {
			return symbols
		}
		dir = oh.DataDirectory[0]
	default:
		return symbols
	}
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return symbols
	}

	r := rvaReader{sections: f.Sections, data: data}
	base := dir.VirtualAddress

	nFuncs, ok := r.u32(base + expNumberOfFuncs)
	if !ok {
		return symbols
	}
	if nFuncs > maxExports {
		nFuncs = maxExports
	}
	nNames, ok := r.u32(base + expNumberOfNames)
	if !ok {
		return symbols
	}
	if nNames > maxExports {
		nNames = maxExports
	}
	funcs, ok1 := r.u32(base + expAddrOfFuncs)
	names, ok2 := r.u32(base + expAddrOfNames)
	ordinals, ok3 := r.u32(base + expAddrOfOrdinals)
	if !ok1 || !ok2 || !ok3 {
		return symbols
	}

	// The name and ordinal tables are parallel; each entry binds a name to
	// an unbiased index into the address table. Slots without a binding are
	// ordinal-only exports.
	nameByIndex := make(map[uint16]string, nNames)
	for i := uint32(0); i < nNames; i++ {
		nameRVA, ok := r.u32(names + 4*i)
		if !ok {
			break
		}
		index, ok := r.u16(ordinals + 2*i)
		if !ok {
			break
		}
		nameByIndex[index] = r.cstring(nameRVA)
	}

	for i := uint32(0); i < nFuncs; i++ {
		funcRVA, ok := r.u32(funcs + 4*i)
		if !ok {
			break
		}
		if funcRVA == 0 {
			// Vacant address-table slot.
			continue
		}
		symbols = append(symbols, SymbolInfo{
			Name: nameByIndex[uint16(i)],
			Addr: uint64(funcRVA),
		})
	}

	return symbols
}

// rvaReader resolves relative virtual addresses to file offsets via the
// section table and reads primitive values at those offsets.
type rvaReader struct {
	sections []*pe.Section
	data     []byte
}

func (r rvaReader) offset(rva uint32) (int, bool) {
	for _, s := range r.sections {
		size := s.VirtualSize
		if size == 0 {
			size = s.Size
		}
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+size {
			continue
		}
		off := int64(rva) - int64(s.VirtualAddress) + int64(s.Offset)
		if off < 0 || off >= int64(len(r.data)) {
			return 0, false
		}
		return int(off), true
	}
	return 0, false
}

func (r rvaReader) u32(rva uint32) (uint32, bool) {
	off, ok := r.offset(rva)
	if !ok || off+4 > len(r.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.data[off:]), true
}

func (r rvaReader) u16(rva uint32) (uint16, bool) {
	off, ok := r.offset(rva)
	if !ok || off+2 > len(r.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.data[off:]), true
}

// cstring reads a NUL-terminated string; an unresolvable address yields the
// empty name rather than an error.
func (r rvaReader) cstring(rva uint32) string {
	off, ok := r.offset(rva)
	if !ok {
		return ""
	}
	end := bytes.IndexByte(r.data[off:], 0)
	if end < 0 {
		return string(r.data[off:])
	}
	return string(r.data[off : off+end])
}
