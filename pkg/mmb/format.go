package mmb

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic is the file magic "MM0B", little-endian.
const Magic uint32 = 0x42304D4D

// Version is the (only) format version this package reads and writes.
const Version uint8 = 1

// Header is the fixed-size header at the start of an .mmb file.
type Header struct {
	Magic   uint32
	Version uint8
	// Number of declared sorts
	NumSorts uint8
	Reserved uint16
	// Number of terms and defs
	NumTerms uint32
	// Number of axioms and theorems
	NumThms uint32

	// Pointer to start of term table
	TermsStart uint32
	// Pointer to start of theorem table
	ThmsStart uint32
	// Pointer to start of declaration stream
	ProofStreamStart uint32
	Reserved2        uint32
	// Pointer to start of index, or 0
	IndexStart uint64

	// Offset of the sort modifier bytes (directly after the header).
	SortDataStart uint32
}

const headerSize = 40

// File is a parsed .mmb file: the header, the sort/term/assertion tables,
// and (if present) the name index. Proof and unify streams are decoded
// lazily during verification.
type File struct {
	buf []byte

	Header Header
	Sorts  []SortMods
	terms  []termEntry
	thms   []thmEntry
	Index  *NameIndex
}

// termEntry is one row of the term table. The high bit of sort marks a
// definition.
type termEntry struct {
	numArgs uint16
	sort    uint8
	pArgs   uint32
}

// thmEntry is one row of the assertion table.
type thmEntry struct {
	numArgs uint16
	pArgs   uint32
}

const (
	termEntrySize = 8
	thmEntrySize  = 8
)

// Term is a term or definition from the term table, with its binder types
// resolved.
type Term struct {
	ID   TermID
	Args []Type // binder types, without the return
	Ret  Type
	def  bool
	// offset of the unify stream for definitions
	unifyStart uint32
}

func (t Term) IsDef() bool { return t.def }

// NumArgs is the number of binders, not counting the return.
func (t Term) NumArgs() int { return len(t.Args) }

// Assert is an axiom or theorem from the assertion table.
type Assert struct {
	ID   ThmID
	Args []Type
	// offset of the unify stream
	unifyStart uint32
}

func parseU8(buf []byte) (uint8, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, errors.New("mmb: unexpected end of file")
	}
	return buf[0], buf[1:], nil
}

func parseU16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, nil, errors.New("mmb: unexpected end of file")
	}
	return binary.LittleEndian.Uint16(buf), buf[2:], nil
}

func parseU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, errors.New("mmb: unexpected end of file")
	}
	return binary.LittleEndian.Uint32(buf), buf[4:], nil
}

func parseU64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errors.New("mmb: unexpected end of file")
	}
	return binary.LittleEndian.Uint64(buf), buf[8:], nil
}

func parseHeader(buf []byte) (Header, error) {
	var h Header
	var err error
	rest := buf
	if h.Magic, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.Magic != Magic {
		return h, errors.Errorf("mmb: bad magic %#x", h.Magic)
	}
	if h.Version, rest, err = parseU8(rest); err != nil {
		return h, err
	}
	if h.Version != Version {
		return h, errors.Errorf("mmb: unsupported version %d", h.Version)
	}
	if h.NumSorts, rest, err = parseU8(rest); err != nil {
		return h, err
	}
	if h.Reserved, rest, err = parseU16(rest); err != nil {
		return h, err
	}
	if h.NumTerms, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.NumThms, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.TermsStart, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.ThmsStart, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.ProofStreamStart, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.Reserved2, rest, err = parseU32(rest); err != nil {
		return h, err
	}
	if h.IndexStart, rest, err = parseU64(rest); err != nil {
		return h, err
	}
	h.SortDataStart = uint32(len(buf) - len(rest))
	return h, nil
}

// ParseFile reads the header and tables of an .mmb file. It does not
// verify anything; see Verify.
func ParseFile(data []byte) (*File, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{buf: data, Header: header}

	// Sort modifier bytes directly follow the header.
	sortsEnd := int(header.SortDataStart) + int(header.NumSorts)
	if sortsEnd > len(data) {
		return nil, errors.New("mmb: sort table out of bounds")
	}
	for _, b := range data[header.SortDataStart:sortsEnd] {
		if b & ^uint8(0x0f) != 0 {
			return nil, errors.Errorf("mmb: bad sort modifier byte %#x", b)
		}
		f.Sorts = append(f.Sorts, SortMods(b))
	}

	// Term table.
	buf, err := f.slice(header.TermsStart, int(header.NumTerms)*termEntrySize)
	if err != nil {
		return nil, errors.Wrap(err, "term table")
	}
	for i := uint32(0); i < header.NumTerms; i++ {
		row := buf[i*termEntrySize:]
		f.terms = append(f.terms, termEntry{
			numArgs: binary.LittleEndian.Uint16(row),
			sort:    row[2],
			pArgs:   binary.LittleEndian.Uint32(row[4:]),
		})
	}

	// Assertion table.
	buf, err = f.slice(header.ThmsStart, int(header.NumThms)*thmEntrySize)
	if err != nil {
		return nil, errors.Wrap(err, "assertion table")
	}
	for i := uint32(0); i < header.NumThms; i++ {
		row := buf[i*thmEntrySize:]
		f.thms = append(f.thms, thmEntry{
			numArgs: binary.LittleEndian.Uint16(row),
			pArgs:   binary.LittleEndian.Uint32(row[4:]),
		})
	}

	if header.IndexStart != 0 {
		index, err := parseNameIndex(f)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}
		f.Index = index
	}

	return f, nil
}

func (f *File) slice(start uint32, n int) ([]byte, error) {
	if int(start)+n > len(f.buf) || n < 0 {
		return nil, errors.Errorf("mmb: range %d+%d out of bounds", start, n)
	}
	return f.buf[start : int(start)+n], nil
}

// SortMods returns the modifier byte for a sort.
func (f *File) SortMods(s SortID) (SortMods, error) {
	if int(s) >= len(f.Sorts) {
		return 0, errors.Errorf("mmb: no such sort: %d", s)
	}
	return f.Sorts[s], nil
}

// Term resolves a term table row, reading its binder types.
func (f *File) Term(id TermID) (Term, error) {
	if int(id) >= len(f.terms) {
		return Term{}, errors.Errorf("mmb: no such term: %d", id)
	}
	entry := f.terms[id]
	// numArgs binders plus the return type.
	buf, err := f.slice(entry.pArgs, (int(entry.numArgs)+1)*8)
	if err != nil {
		return Term{}, errors.Wrapf(err, "term %d args", id)
	}
	args := make([]Type, entry.numArgs)
	for i := range args {
		args[i] = Type(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	ret := Type(binary.LittleEndian.Uint64(buf[int(entry.numArgs)*8:]))
	return Term{
		ID:         id,
		Args:       args,
		Ret:        ret,
		def:        entry.sort&0x80 != 0,
		unifyStart: entry.pArgs + (uint32(entry.numArgs)+1)*8,
	}, nil
}

// Assert resolves an assertion table row.
func (f *File) Assert(id ThmID) (Assert, error) {
	if int(id) >= len(f.thms) {
		return Assert{}, errors.Errorf("mmb: no such assertion: %d", id)
	}
	entry := f.thms[id]
	buf, err := f.slice(entry.pArgs, int(entry.numArgs)*8)
	if err != nil {
		return Assert{}, errors.Wrapf(err, "assertion %d args", id)
	}
	args := make([]Type, entry.numArgs)
	for i := range args {
		args[i] = Type(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return Assert{
		ID:         id,
		Args:       args,
		unifyStart: entry.pArgs + uint32(entry.numArgs)*8,
	}, nil
}
