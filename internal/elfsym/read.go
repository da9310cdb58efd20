// Package elfsym extracts the exported function and variable symbols
// of an ELF binary, together with their GNU symbol versions and alias
// clusters, in the shape the suppression engine consumes.
package elfsym

import (
	"debug/elf"
	"fmt"

	"github.com/abi-scope/abiscope/pkg/ir"
)

// Binary is the symbol-level view of one ELF file.
type Binary struct {
	Path   string
	Soname string

	// Symbols are the defined, exported function and variable
	// symbols in dynamic symbol table order. Co-addressed symbols of
	// the same kind are clustered: the first one seen is the main
	// symbol, the rest are its aliases.
	Symbols []*ir.Symbol
}

// Read opens the ELF file at path and lists its exported symbols.
func Read(path string) (*Binary, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	bin := &Binary{Path: path}
	if names, err := f.DynString(elf.DT_SONAME); err == nil && len(names) > 0 {
		bin.Soname = names[0]
	}

	syms, err := f.DynamicSymbols()
	if err == elf.ErrNoSymbols {
		return bin, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dynamic symbols of %q: %w", path, err)
	}

	versions, err := readDefinedVersions(f)
	if err != nil {
		return nil, fmt.Errorf("reading symbol versions of %q: %w", path, err)
	}

	mains := map[uint64]*ir.Symbol{}
	for i, s := range syms {
		if s.Section == elf.SHN_UNDEF {
			continue
		}
		if bind := elf.ST_BIND(s.Info); bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
			continue
		}
		var kind ir.SymbolKind
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_FUNC:
			kind = ir.FunctionSymbol
		case elf.STT_OBJECT, elf.STT_COMMON, elf.STT_TLS:
			kind = ir.VariableSymbol
		default:
			continue
		}

		sym := &ir.Symbol{Name: s.Name, Kind: kind, Value: s.Value}
		// DynamicSymbols drops the leading null entry, so the versym
		// table index is shifted by one.
		if v, ok := versions[i+1]; ok {
			sym.Version = v
		}

		if main, ok := mains[s.Value]; ok && s.Value != 0 && main.Kind == kind {
			main.AddAlias(sym)
		} else if s.Value != 0 {
			mains[s.Value] = sym
		}
		bin.Symbols = append(bin.Symbols, sym)
	}
	return bin, nil
}

// readDefinedVersions maps dynamic symbol table indices to the
// versions defined by the binary itself, parsed from the GNU versym
// and verdef sections. Binaries without version information yield an
// empty map.
func readDefinedVersions(f *elf.File) (map[int]ir.SymbolVersion, error) {
	versymSec := f.SectionByType(elf.SHT_GNU_VERSYM)
	verdefSec := f.SectionByType(elf.SHT_GNU_VERDEF)
	if versymSec == nil || verdefSec == nil {
		return map[int]ir.SymbolVersion{}, nil
	}

	versym, err := versymSec.Data()
	if err != nil {
		return nil, err
	}
	verdef, err := verdefSec.Data()
	if err != nil {
		return nil, err
	}
	dynstrSec := f.Section(".dynstr")
	if dynstrSec == nil {
		return map[int]ir.SymbolVersion{}, nil
	}
	dynstr, err := dynstrSec.Data()
	if err != nil {
		return nil, err
	}

	const (
		verdefEntrySize = 20
		verFlgBase      = 0x1
		versymHidden    = 0x8000
	)

	bo := f.ByteOrder
	names := map[uint16]string{}
	for off := 0; off+verdefEntrySize <= len(verdef); {
		flags := bo.Uint16(verdef[off+2:])
		ndx := bo.Uint16(verdef[off+4:])
		cnt := bo.Uint16(verdef[off+6:])
		aux := bo.Uint32(verdef[off+12:])
		next := bo.Uint32(verdef[off+16:])

		if cnt > 0 && flags&verFlgBase == 0 {
			auxOff := off + int(aux)
			if auxOff+4 <= len(verdef) {
				nameOff := bo.Uint32(verdef[auxOff:])
				names[ndx] = cString(dynstr, int(nameOff))
			}
		}
		if next == 0 {
			break
		}
		off += int(next)
	}

	versions := map[int]ir.SymbolVersion{}
	for i := 0; 2*i+2 <= len(versym); i++ {
		v := bo.Uint16(versym[2*i:])
		idx := v &^ uint16(versymHidden)
		if idx <= 1 {
			continue
		}
		name, ok := names[idx]
		if !ok {
			continue
		}
		versions[i] = ir.SymbolVersion{Name: name, Default: v&versymHidden == 0}
	}
	return versions, nil
}

// cString extracts the NUL-terminated string at offset off of a
// string table.
func cString(table []byte, off int) string {
	if off < 0 || off >= len(table) {
		return ""
	}
	end := off
	for end < len(table) && table[end] != 0 {
		end++
	}
	return string(table[off:end])
}
