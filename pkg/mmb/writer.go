package mmb

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// StreamWriter emits command bytes for proof and unify streams, picking
// the smallest inline data width that fits.
type StreamWriter struct {
	buf bytes.Buffer
}

func (w *StreamWriter) cmd(op uint8, data uint32) {
	switch {
	case data == 0:
		w.buf.WriteByte(op)
	case data <= 0xFF:
		w.buf.WriteByte(op | cmdData8)
		w.buf.WriteByte(uint8(data))
	case data <= 0xFFFF:
		w.buf.WriteByte(op | cmdData16)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(data))
		w.buf.Write(b[:])
	default:
		w.buf.WriteByte(op | cmdData32)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], data)
		w.buf.Write(b[:])
	}
}

func (w *StreamWriter) end() []byte {
	w.buf.WriteByte(cmdEnd)
	return w.buf.Bytes()
}

// ProofWriter builds one declaration's proof stream.
type ProofWriter struct{ StreamWriter }

func (w *ProofWriter) Term(id TermID)     { w.cmd(proofTerm, uint32(id)) }
func (w *ProofWriter) TermSave(id TermID) { w.cmd(proofTermSave, uint32(id)) }
func (w *ProofWriter) Ref(i int)          { w.cmd(proofRef, uint32(i)) }
func (w *ProofWriter) Dummy(s SortID)     { w.cmd(proofDummy, uint32(s)) }
func (w *ProofWriter) Thm(id ThmID)       { w.cmd(proofThm, uint32(id)) }
func (w *ProofWriter) ThmSave(id ThmID)   { w.cmd(proofThmSave, uint32(id)) }
func (w *ProofWriter) Hyp()               { w.cmd(proofHyp, 0) }
func (w *ProofWriter) Save()              { w.cmd(proofSave, 0) }

// UnifyWriter builds a term's or assertion's unify stream.
type UnifyWriter struct{ StreamWriter }

func (w *UnifyWriter) Term(id TermID)     { w.cmd(unifyTermOp, uint32(id)) }
func (w *UnifyWriter) TermSave(id TermID) { w.cmd(unifyTermSaveOp, uint32(id)) }
func (w *UnifyWriter) Ref(i int)          { w.cmd(unifyRefOp, uint32(i)) }
func (w *UnifyWriter) Dummy(s SortID)     { w.cmd(unifyDummyOp, uint32(s)) }
func (w *UnifyWriter) Hyp()               { w.cmd(unifyHypOp, 0) }

type builderDecl struct {
	kind StmtKind
	idx  int
}

type builderSort struct {
	name string
	mods SortMods
}

type builderTerm struct {
	name  string
	args  []Type
	ret   Type
	def   bool
	unify []byte
	proof []byte
}

type builderThm struct {
	name  string
	thm   bool
	args  []Type
	unify []byte
	proof []byte
}

// Builder assembles an .mmb file from declarations. Declarations appear in
// the stream in the order they are added, which is also the order the
// verifier will check them in.
type Builder struct {
	sorts []builderSort
	terms []builderTerm
	thms  []builderThm
	decls []builderDecl
}

func NewBuilder() *Builder { return &Builder{} }

// AddSort declares a sort, returning its ID.
func (b *Builder) AddSort(name string, mods SortMods) SortID {
	id := SortID(len(b.sorts))
	b.sorts = append(b.sorts, builderSort{name: name, mods: mods})
	b.decls = append(b.decls, builderDecl{kind: StmtSort, idx: int(id)})
	return id
}

// AddTerm declares a term constructor. Binder types use NewBoundType and
// NewRegularType; ret must be regular.
func (b *Builder) AddTerm(name string, args []Type, ret Type) TermID {
	id := TermID(len(b.terms))
	b.terms = append(b.terms, builderTerm{name: name, args: args, ret: ret})
	b.decls = append(b.decls, builderDecl{kind: StmtTermDef, idx: int(id)})
	return id
}

// AddDef declares a definition with a body proof and unify stream.
func (b *Builder) AddDef(name string, args []Type, ret Type, proof *ProofWriter, unify *UnifyWriter) TermID {
	id := TermID(len(b.terms))
	b.terms = append(b.terms, builderTerm{
		name:  name,
		args:  args,
		ret:   ret,
		def:   true,
		proof: proof.end(),
		unify: unify.end(),
	})
	b.decls = append(b.decls, builderDecl{kind: StmtTermDef, idx: int(id)})
	return id
}

// AddAxiom declares an axiom: the proof stream builds its hypotheses and
// statement, the unify stream re-states them.
func (b *Builder) AddAxiom(name string, args []Type, proof *ProofWriter, unify *UnifyWriter) ThmID {
	id := ThmID(len(b.thms))
	b.thms = append(b.thms, builderThm{name: name, args: args, proof: proof.end(), unify: unify.end()})
	b.decls = append(b.decls, builderDecl{kind: StmtAxiom, idx: int(id)})
	return id
}

// AddThm declares a proved theorem.
func (b *Builder) AddThm(name string, args []Type, proof *ProofWriter, unify *UnifyWriter) ThmID {
	id := ThmID(len(b.thms))
	b.thms = append(b.thms, builderThm{name: name, thm: true, args: args, proof: proof.end(), unify: unify.end()})
	b.decls = append(b.decls, builderDecl{kind: StmtThm, idx: int(id)})
	return id
}

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

// Write assembles the file.
func (b *Builder) Write() ([]byte, error) {
	if len(b.sorts) > 128 {
		return nil, errors.New("mmb: too many sorts")
	}

	var out bytes.Buffer
	out.Write(make([]byte, headerSize)) // backpatched below

	// Sort modifier bytes.
	for _, s := range b.sorts {
		out.WriteByte(uint8(s.mods))
	}
	// Keep the arg arrays 8-byte aligned.
	for out.Len()%8 != 0 {
		out.WriteByte(0)
	}

	// Binder arrays, each followed by its unify stream.
	termArgStarts := make([]uint32, len(b.terms))
	for i, t := range b.terms {
		termArgStarts[i] = uint32(out.Len())
		var word [8]byte
		for _, arg := range t.args {
			binary.LittleEndian.PutUint64(word[:], uint64(arg))
			out.Write(word[:])
		}
		binary.LittleEndian.PutUint64(word[:], uint64(t.ret))
		out.Write(word[:])
		if t.def {
			out.Write(t.unify)
		} else {
			out.WriteByte(cmdEnd)
		}
		for out.Len()%8 != 0 {
			out.WriteByte(0)
		}
	}
	thmArgStarts := make([]uint32, len(b.thms))
	for i, t := range b.thms {
		thmArgStarts[i] = uint32(out.Len())
		var word [8]byte
		for _, arg := range t.args {
			binary.LittleEndian.PutUint64(word[:], uint64(arg))
			out.Write(word[:])
		}
		out.Write(t.unify)
		for out.Len()%8 != 0 {
			out.WriteByte(0)
		}
	}

	// Term table.
	termsStart := uint32(out.Len())
	for i, t := range b.terms {
		var row [termEntrySize]byte
		binary.LittleEndian.PutUint16(row[:], uint16(len(t.args)))
		row[2] = uint8(t.ret.Sort())
		if t.def {
			row[2] |= 0x80
		}
		putU32(row[:], 4, termArgStarts[i])
		out.Write(row[:])
	}

	// Assertion table.
	thmsStart := uint32(out.Len())
	for i, t := range b.thms {
		var row [thmEntrySize]byte
		binary.LittleEndian.PutUint16(row[:], uint16(len(t.args)))
		putU32(row[:], 4, thmArgStarts[i])
		out.Write(row[:])
	}

	// Declaration stream: a command byte with a u32 statement length, then
	// the proof stream.
	declStart := uint32(out.Len())
	for _, d := range b.decls {
		var op uint8
		var proof []byte
		switch d.kind {
		case StmtSort:
			op = stmtSort
		case StmtTermDef:
			op = stmtTermDef
			proof = b.terms[d.idx].proof
		case StmtAxiom:
			op = stmtAxiom
			proof = b.thms[d.idx].proof
		case StmtThm:
			op = stmtThm
			proof = b.thms[d.idx].proof
		}
		stmtLen := uint32(5 + len(proof))
		out.WriteByte(op | cmdData32)
		var lenBytes [4]byte
		binary.LittleEndian.PutUint32(lenBytes[:], stmtLen)
		out.Write(lenBytes[:])
		out.Write(proof)
	}
	out.WriteByte(cmdEnd)

	// Name index: the name strings, then the pointer array.
	namePtrs := make([]uint64, 0, len(b.sorts)+len(b.terms)+len(b.thms))
	writeName := func(name string) {
		namePtrs = append(namePtrs, uint64(out.Len()))
		out.WriteString(name)
		out.WriteByte(0)
	}
	for _, s := range b.sorts {
		writeName(s.name)
	}
	for _, t := range b.terms {
		writeName(t.name)
	}
	for _, t := range b.thms {
		writeName(t.name)
	}
	for out.Len()%8 != 0 {
		out.WriteByte(0)
	}
	indexStart := uint64(out.Len())
	var word [8]byte
	for _, ptr := range namePtrs {
		binary.LittleEndian.PutUint64(word[:], ptr)
		out.Write(word[:])
	}

	// Backpatch the header.
	buf := out.Bytes()
	binary.LittleEndian.PutUint32(buf[0:], Magic)
	buf[4] = Version
	buf[5] = uint8(len(b.sorts))
	putU32(buf, 8, uint32(len(b.terms)))
	putU32(buf, 12, uint32(len(b.thms)))
	putU32(buf, 16, termsStart)
	putU32(buf, 20, thmsStart)
	putU32(buf, 24, declStart)
	binary.LittleEndian.PutUint64(buf[32:], indexStart)
	return buf, nil
}
