package mmb

import "github.com/pkg/errors"

// Unify stream opcodes.
const (
	unifyTermOp     uint8 = 0x30
	unifyTermSaveOp uint8 = 0x31
	unifyRefOp      uint8 = 0x32
	unifyDummyOp    uint8 = 0x33
	unifyHypOp      uint8 = 0x36
	unifySorryOp    uint8 = 0x37
)

// unifyMode says where a unify stream runs: checking a definition body,
// applying an assertion inside a proof, or closing out an assertion's own
// proof.
type unifyMode int

const (
	unifyDef unifyMode = iota
	unifyThm
	unifyThmEnd
)

// runUnify matches the target expression against the unify stream starting
// at the given offset. The caller preloads st.uheap with the substitution.
//
// The stream destructures the target on the unify stack: UTerm pops an
// application and pushes its arguments, URef pops and compares against a
// heap entry, UDummy (definitions only) pops and registers a dummy
// variable, and UHyp feeds in the next hypothesis: from the main proof
// stack when applying an assertion, from the hypothesis stack when
// finishing one.
func (st *state) runUnify(mode unifyMode, start uint32, target Expr) error {
	if int(start) > len(st.f.buf) {
		return errors.New("mmb: unify stream out of bounds")
	}
	st.ustack = st.ustack[:0]
	st.pushU(target)

	buf := st.f.buf[start:]
	nextHyp := 0
	for {
		op, data, rest, err := readCmd(buf)
		if err != nil {
			return errors.Wrap(err, "unify stream")
		}
		buf = rest
		if op == cmdEnd {
			break
		}
		switch op {
		case unifyTermOp, unifyTermSaveOp:
			p, err := st.popU()
			if err != nil {
				return err
			}
			app, ok := p.(*EApp)
			if !ok || app.Term != TermID(data) {
				return errors.Errorf(
					"mmb: unify expected an application of term %d; got %s",
					data, FormatExpr(p, st.f.Index),
				)
			}
			for i := len(app.Args) - 1; i >= 0; i-- {
				st.pushU(app.Args[i])
			}
			if op == unifyTermSaveOp {
				st.uheap = append(st.uheap, p)
			}

		case unifyRefOp:
			if int(data) >= len(st.uheap) {
				return errors.Errorf("mmb: unify heap reference %d out of range", data)
			}
			p, err := st.popU()
			if err != nil {
				return err
			}
			if !st.uheap[data].exprEq(p) {
				return errors.Errorf(
					"mmb: unify mismatch: %s vs %s",
					FormatExpr(st.uheap[data], st.f.Index), FormatExpr(p, st.f.Index),
				)
			}

		case unifyDummyOp:
			if mode != unifyDef {
				return errors.New("mmb: unify dummy outside a definition")
			}
			p, err := st.popU()
			if err != nil {
				return err
			}
			v, ok := p.(*EVar)
			if !ok || !v.Type.Bound() || v.Type.Sort() != SortID(data) {
				return errors.Errorf(
					"mmb: unify expected a bound variable of sort %d; got %s",
					data, FormatExpr(p, st.f.Index),
				)
			}
			st.uheap = append(st.uheap, p)

		case unifyHypOp:
			switch mode {
			case unifyThm:
				h, err := st.popProof()
				if err != nil {
					return err
				}
				st.pushU(h)
			case unifyThmEnd:
				if nextHyp >= len(st.hstack) {
					return errors.New("mmb: unify stream has more hypotheses than the proof")
				}
				st.pushU(st.hstack[nextHyp])
				nextHyp++
			default:
				return errors.New("mmb: unify hypothesis in a definition")
			}

		case unifySorryOp:
			return errors.New("mmb: unify stream uses sorry")

		default:
			return errors.Errorf("mmb: unknown unify opcode %#x", op)
		}
	}

	if len(st.ustack) != 0 {
		return errors.Errorf("mmb: unify stack not empty: %s", FormatExpr(st.ustack[len(st.ustack)-1], st.f.Index))
	}
	if mode == unifyThmEnd && nextHyp != len(st.hstack) {
		return errors.Errorf("mmb: proof has %d hypotheses; unify stream consumed %d", len(st.hstack), nextHyp)
	}
	return nil
}

func (st *state) popU() (Expr, error) {
	if len(st.ustack) == 0 {
		return nil, errors.New("mmb: unify stack underflow")
	}
	e := st.ustack[len(st.ustack)-1]
	st.ustack = st.ustack[:len(st.ustack)-1]
	return e, nil
}
