package mmb

import "github.com/pkg/errors"

// Command bytes carry a 5-bit opcode in the low bits; the high two bits
// say how wide the inline data field is (0, 1, 2, or 4 bytes).
const (
	cmdDataMask uint8 = 0xC0
	cmdData8    uint8 = 0x40
	cmdData16   uint8 = 0x80
	cmdData32   uint8 = 0xC0

	cmdEnd uint8 = 0
)

// Declaration stream opcodes. Each statement's data field is the distance
// to the next statement, so a reader can skip proofs it isn't checking.
const (
	stmtAxiom    uint8 = 0x02
	stmtSort     uint8 = 0x04
	stmtTermDef  uint8 = 0x05
	stmtThm      uint8 = 0x06
	stmtLocalDef uint8 = 0x0D
	stmtLocalThm uint8 = 0x0E
)

// readCmd decodes one command byte plus inline data, returning the opcode,
// the data value, and the remaining stream.
func readCmd(buf []byte) (uint8, uint32, []byte, error) {
	cmd, rest, err := parseU8(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	op := cmd & ^cmdDataMask
	switch cmd & cmdDataMask {
	case 0:
		return op, 0, rest, nil
	case cmdData8:
		data, rest, err := parseU8(rest)
		return op, uint32(data), rest, err
	case cmdData16:
		data, rest, err := parseU16(rest)
		return op, uint32(data), rest, err
	default:
		data, rest, err := parseU32(rest)
		return op, data, rest, err
	}
}

// StmtKind says what kind of declaration a statement command introduces.
type StmtKind int

const (
	StmtSort StmtKind = iota
	StmtTermDef
	StmtAxiom
	StmtThm
)

func (k StmtKind) String() string {
	switch k {
	case StmtSort:
		return "sort"
	case StmtTermDef:
		return "term"
	case StmtAxiom:
		return "axiom"
	case StmtThm:
		return "theorem"
	default:
		return "???"
	}
}

// StmtCmd is one statement from the declaration stream. Local definitions
// and theorems are verified but not exported to the environment.
type StmtCmd struct {
	Kind  StmtKind
	Local bool
	// Which numbered declaration of its kind this is.
	SortID SortID
	TermID TermID
	ThmID  ThmID
}

// DeclIter walks the declaration stream, handing out each statement and a
// ProofIter over its proof.
type DeclIter struct {
	f   *File
	buf []byte
	// running declaration counters
	nextSort SortID
	nextTerm TermID
	nextThm  ThmID
	done     bool
}

// DeclStream positions an iterator at the start of the declaration stream.
func (f *File) DeclStream() (*DeclIter, error) {
	if int(f.Header.ProofStreamStart) > len(f.buf) {
		return nil, errors.New("mmb: declaration stream out of bounds")
	}
	return &DeclIter{f: f, buf: f.buf[f.Header.ProofStreamStart:]}, nil
}

// Next returns the next statement, or ok=false at the end of the stream.
// The returned ProofIter covers just this statement's proof.
func (it *DeclIter) Next() (StmtCmd, *ProofIter, bool, error) {
	if it.done {
		return StmtCmd{}, nil, false, nil
	}
	start := it.buf
	op, data, rest, err := readCmd(it.buf)
	if err != nil {
		return StmtCmd{}, nil, false, errors.Wrap(err, "declaration stream")
	}
	if op == cmdEnd {
		it.done = true
		return StmtCmd{}, nil, false, nil
	}

	// data is the length of the whole statement, counted from the command
	// byte; the proof stream is what's between the header and there.
	if int(data) > len(start) || data == 0 {
		return StmtCmd{}, nil, false, errors.Errorf("mmb: bad statement length %d", data)
	}
	headerLen := len(start) - len(rest)
	proof := &ProofIter{buf: start[headerLen:data]}
	it.buf = start[data:]

	var stmt StmtCmd
	switch op {
	case stmtSort:
		stmt = StmtCmd{Kind: StmtSort, SortID: it.nextSort}
		it.nextSort++
	case stmtTermDef:
		stmt = StmtCmd{Kind: StmtTermDef, TermID: it.nextTerm}
		it.nextTerm++
	case stmtLocalDef:
		stmt = StmtCmd{Kind: StmtTermDef, Local: true, TermID: it.nextTerm}
		it.nextTerm++
	case stmtAxiom:
		stmt = StmtCmd{Kind: StmtAxiom, ThmID: it.nextThm}
		it.nextThm++
	case stmtThm:
		stmt = StmtCmd{Kind: StmtThm, ThmID: it.nextThm}
		it.nextThm++
	case stmtLocalThm:
		stmt = StmtCmd{Kind: StmtThm, Local: true, ThmID: it.nextThm}
		it.nextThm++
	default:
		return StmtCmd{}, nil, false, errors.Errorf("mmb: unknown statement opcode %#x", op)
	}
	return stmt, proof, true, nil
}
