package mmb

import "github.com/pkg/errors"

// proofMode says what a proof stream is allowed to prove: Def streams
// build a definition body, Thm streams build an assertion.
type proofMode int

const (
	modeDef proofMode = iota
	modeThm
)

// progress tracks how much of the file has been declared so far, so that
// proofs can't reference forward declarations.
type progress struct {
	sorts SortID
	terms TermID
	thms  ThmID
}

// state is the verifier for a single declaration: an expression stack, a
// heap of saved items, the hypothesis stack, and the unify stack/heap.
type state struct {
	f    *File
	seen *progress

	stack  []item
	heap   []item
	ustack []Expr
	uheap  []Expr
	hstack []Expr

	nextBV uint64
}

func newState(f *File, seen *progress) *state {
	return &state{f: f, seen: seen, nextBV: 1}
}

func (st *state) push(it item) { st.stack = append(st.stack, it) }
func (st *state) save(it item) { st.heap = append(st.heap, it) }
func (st *state) pushU(e Expr) { st.ustack = append(st.ustack, e) }

func (st *state) pop() (item, error) {
	if len(st.stack) == 0 {
		return nil, errors.New("mmb: stack underflow")
	}
	it := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	return it, nil
}

func (st *state) popExpr() (Expr, error) {
	it, err := st.pop()
	if err != nil {
		return nil, err
	}
	e, ok := it.(exprItem)
	if !ok {
		return nil, errors.Errorf("mmb: expected an expression; got %s", it.itemString(st.f.Index))
	}
	return e.e, nil
}

func (st *state) popProof() (Expr, error) {
	it, err := st.pop()
	if err != nil {
		return nil, err
	}
	p, ok := it.(proofItem)
	if !ok {
		return nil, errors.Errorf("mmb: expected a proof; got %s", it.itemString(st.f.Index))
	}
	return p.e, nil
}

func (st *state) popCoConv() (Expr, Expr, error) {
	it, err := st.pop()
	if err != nil {
		return nil, nil, err
	}
	c, ok := it.(coConvItem)
	if !ok {
		return nil, nil, errors.Errorf("mmb: expected a convertibility obligation; got %s", it.itemString(st.f.Index))
	}
	return c.lhs, c.rhs, nil
}

// takeNextBV hands out the next one-hot bound variable digit. The data
// layout caps a declaration at 55 bound variables.
func (st *state) takeNextBV() (uint64, error) {
	out := st.nextBV
	if out>>56 != 0 {
		return 0, errors.New("mmb: too many bound variables")
	}
	st.nextBV <<= 1
	return out, nil
}

func (st *state) term(id TermID) (Term, error) {
	if id >= st.seen.terms {
		return Term{}, errors.Errorf("mmb: forward reference to term %d", id)
	}
	return st.f.Term(id)
}

func (st *state) assert(id ThmID) (Assert, error) {
	if id >= st.seen.thms {
		return Assert{}, errors.Errorf("mmb: forward reference to assertion %d", id)
	}
	return st.f.Assert(id)
}

// loadArgs hydrates the heap from a declaration's binder types. Bound
// binders must carry sequential bound-variable digits and non-strict
// sorts; regular binders may only depend on bound variables already seen.
func (st *state) loadArgs(args []Type) error {
	for idx, arg := range args {
		if int(arg.Sort()) >= int(st.seen.sorts) {
			return errors.Errorf("mmb: binder %d has undeclared sort %d", idx, arg.Sort())
		}
		if arg.Bound() {
			mods, err := st.f.SortMods(arg.Sort())
			if err != nil {
				return err
			}
			if mods.Strict() {
				return errors.Errorf("mmb: bound binder %d has strict sort", idx)
			}
			digit, err := st.takeNextBV()
			if err != nil {
				return err
			}
			actual, err := arg.BoundDigit()
			if err != nil {
				return err
			}
			if actual != digit {
				return errors.Errorf("mmb: binder %d has bound digit %#x; want %#x", idx, actual, digit)
			}
		} else {
			deps, err := arg.Deps()
			if err != nil {
				return err
			}
			if deps & ^(st.nextBV-1) != 0 {
				return errors.Errorf("mmb: binder %d depends on undeclared bound variables", idx)
			}
		}
		st.save(exprItem{&EVar{Idx: idx, Type: arg}})
	}
	return nil
}

// popArgs pops n expressions, returning them in push order.
func (st *state) popArgs(n int) ([]Expr, error) {
	args := make([]Expr, n)
	for i := n - 1; i >= 0; i-- {
		e, err := st.popExpr()
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return args, nil
}

// applyTerm checks term arguments against the binder types and computes
// the type of the application.
func (st *state) applyTerm(term Term, args []Expr) (*EApp, error) {
	retDeps, err := term.Ret.Deps()
	if err != nil {
		return nil, errors.New("mmb: term has bound return type")
	}
	var deps uint64
	localBV := uint64(1)
	for i, binder := range term.Args {
		arg := args[i]
		if !sortsCompatible(arg.Ty(), binder) {
			return nil, errors.Errorf(
				"mmb: term %d arg %d: sort %d incompatible with binder sort %d",
				term.ID, i, arg.Ty().Sort(), binder.Sort(),
			)
		}
		if binder.Bound() {
			digit, err := arg.Ty().BoundDigit()
			if err != nil {
				return nil, errors.Wrapf(err, "term %d arg %d must be a bound variable", term.ID, i)
			}
			// The return type's deps bitset is over the term's own bound
			// variables; translate each into the caller's variables.
			if retDeps&localBV != 0 {
				deps |= digit
			}
			localBV <<= 1
		} else {
			argDeps, err := arg.Ty().Deps()
			if err == nil {
				deps |= argDeps
			} else {
				digit, _ := arg.Ty().BoundDigit()
				deps |= digit
			}
		}
	}
	return &EApp{
		Term: term.ID,
		Args: args,
		Type: NewRegularType(term.Ret.Sort(), deps),
	}, nil
}

// checkThmArgs checks an assertion instantiation: sorts compatible, bound
// binders instantiated with distinct bound variables, and the disjoint
// variable conditions implied by the binder dependency sets.
func (st *state) checkThmArgs(assert Assert, args []Expr) error {
	type boundArg struct {
		localBV uint64 // digit within the assertion's own numbering
		digit   uint64 // digit of the instantiating variable
	}
	var bounds []boundArg
	localBV := uint64(1)
	for i, binder := range assert.Args {
		arg := args[i]
		if !sortsCompatible(arg.Ty(), binder) {
			return errors.Errorf(
				"mmb: assertion %d arg %d: sort %d incompatible with binder sort %d",
				assert.ID, i, arg.Ty().Sort(), binder.Sort(),
			)
		}
		if binder.Bound() {
			digit, err := arg.Ty().BoundDigit()
			if err != nil {
				return errors.Wrapf(err, "assertion %d arg %d must be a bound variable", assert.ID, i)
			}
			for _, prev := range bounds {
				if prev.digit == digit {
					return errors.Errorf("mmb: assertion %d instantiated with duplicate bound variable", assert.ID)
				}
			}
			bounds = append(bounds, boundArg{localBV: localBV, digit: digit})
			localBV <<= 1
		}
	}
	// A regular argument may mention a bound variable only if its binder
	// declares a dependency on it.
	for i, binder := range assert.Args {
		if binder.Bound() {
			continue
		}
		declared, err := binder.Deps()
		if err != nil {
			return err
		}
		argDeps := args[i].Ty().lowBits()
		for _, b := range bounds {
			if declared&b.localBV == 0 && argDeps&b.digit != 0 {
				return errors.Errorf("mmb: assertion %d violates a disjoint variable condition", assert.ID)
			}
		}
	}
	return nil
}

// runProof executes one declaration's proof stream.
func (st *state) runProof(mode proofMode, proof *ProofIter) error {
	for {
		cmd, ok, err := proof.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch cmd.Op {
		case proofTerm, proofTermSave:
			term, err := st.term(TermID(cmd.Data))
			if err != nil {
				return err
			}
			args, err := st.popArgs(term.NumArgs())
			if err != nil {
				return err
			}
			app, err := st.applyTerm(term, args)
			if err != nil {
				return err
			}
			st.push(exprItem{app})
			if cmd.Op == proofTermSave {
				st.save(exprItem{app})
			}

		case proofRef:
			if int(cmd.Data) >= len(st.heap) {
				return errors.Errorf("mmb: heap reference %d out of range", cmd.Data)
			}
			st.push(st.heap[cmd.Data])

		case proofDummy:
			sort := SortID(cmd.Data)
			if int(sort) >= int(st.seen.sorts) {
				return errors.Errorf("mmb: dummy variable of undeclared sort %d", sort)
			}
			mods, err := st.f.SortMods(sort)
			if err != nil {
				return err
			}
			if mods.Strict() {
				return errors.New("mmb: dummy variable of strict sort")
			}
			digit, err := st.takeNextBV()
			if err != nil {
				return err
			}
			v := &EVar{Idx: len(st.heap), Type: NewBoundType(sort, digit)}
			st.push(exprItem{v})
			st.save(exprItem{v})

		case proofThm, proofThmSave:
			assert, err := st.assert(ThmID(cmd.Data))
			if err != nil {
				return err
			}
			// The stated conclusion sits on top of the substitution args.
			target, err := st.popExpr()
			if err != nil {
				return err
			}
			args, err := st.popArgs(len(assert.Args))
			if err != nil {
				return err
			}
			if err := st.checkThmArgs(assert, args); err != nil {
				return err
			}
			st.uheap = append(st.uheap[:0], args...)
			if err := st.runUnify(unifyThm, assert.unifyStart, target); err != nil {
				return errors.Wrapf(err, "applying assertion %d", assert.ID)
			}
			st.push(proofItem{target})
			if cmd.Op == proofThmSave {
				st.save(proofItem{target})
			}

		case proofHyp:
			if mode != modeThm {
				return errors.New("mmb: hypothesis in a definition proof")
			}
			e, err := st.popExpr()
			if err != nil {
				return err
			}
			mods, err := st.f.SortMods(e.Ty().Sort())
			if err != nil {
				return err
			}
			if !mods.Provable() {
				return errors.New("mmb: hypothesis sort is not provable")
			}
			st.hstack = append(st.hstack, e)
			st.save(proofItem{e})

		case proofConv:
			rhs, err := st.popProof()
			if err != nil {
				return err
			}
			lhs, err := st.popExpr()
			if err != nil {
				return err
			}
			st.push(proofItem{lhs})
			st.push(coConvItem{lhs, rhs})

		case proofRefl:
			lhs, rhs, err := st.popCoConv()
			if err != nil {
				return err
			}
			if !lhs.exprEq(rhs) {
				return errors.Errorf(
					"mmb: refl on unequal expressions %s and %s",
					FormatExpr(lhs, st.f.Index), FormatExpr(rhs, st.f.Index),
				)
			}

		case proofSymm:
			lhs, rhs, err := st.popCoConv()
			if err != nil {
				return err
			}
			st.push(coConvItem{rhs, lhs})

		case proofCong:
			lhs, rhs, err := st.popCoConv()
			if err != nil {
				return err
			}
			lApp, lOK := lhs.(*EApp)
			rApp, rOK := rhs.(*EApp)
			if !lOK || !rOK || lApp.Term != rApp.Term || len(lApp.Args) != len(rApp.Args) {
				return errors.New("mmb: cong on mismatched applications")
			}
			for i := len(lApp.Args) - 1; i >= 0; i-- {
				st.push(coConvItem{lApp.Args[i], rApp.Args[i]})
			}

		case proofUnfold:
			unfolded, err := st.popExpr()
			if err != nil {
				return err
			}
			lhs, rhs, err := st.popCoConv()
			if err != nil {
				return err
			}
			app, ok := lhs.(*EApp)
			if !ok {
				return errors.New("mmb: unfold on a non-application")
			}
			def, err := st.term(app.Term)
			if err != nil {
				return err
			}
			if !def.IsDef() {
				return errors.Errorf("mmb: unfold of non-definition term %d", app.Term)
			}
			st.uheap = append(st.uheap[:0], app.Args...)
			if err := st.runUnify(unifyDef, def.unifyStart, unfolded); err != nil {
				return errors.Wrapf(err, "unfolding term %d", app.Term)
			}
			st.push(coConvItem{unfolded, rhs})

		case proofConvCut:
			rhs, err := st.popExpr()
			if err != nil {
				return err
			}
			lhs, err := st.popExpr()
			if err != nil {
				return err
			}
			st.push(convItem{lhs, rhs})
			st.push(coConvItem{lhs, rhs})

		case proofConvRef:
			if int(cmd.Data) >= len(st.heap) {
				return errors.Errorf("mmb: heap reference %d out of range", cmd.Data)
			}
			saved, ok := st.heap[cmd.Data].(convItem)
			if !ok {
				return errors.Errorf("mmb: heap slot %d is not a convertibility", cmd.Data)
			}
			lhs, rhs, err := st.popCoConv()
			if err != nil {
				return err
			}
			if !saved.lhs.exprEq(lhs) || !saved.rhs.exprEq(rhs) {
				return errors.New("mmb: conv-ref does not match the saved convertibility")
			}

		case proofConvSave:
			it, err := st.pop()
			if err != nil {
				return err
			}
			conv, ok := it.(convItem)
			if !ok {
				return errors.Errorf("mmb: conv-save on %s", it.itemString(st.f.Index))
			}
			st.save(conv)

		case proofSave:
			if len(st.stack) == 0 {
				return errors.New("mmb: save on empty stack")
			}
			st.save(st.stack[len(st.stack)-1])

		case proofSorry:
			return errors.New("mmb: proof uses sorry")

		default:
			return errors.Errorf("mmb: unknown proof opcode %#x", cmd.Op)
		}
	}
}

// verifyTermDef checks a term or definition declaration.
func (st *state) verifyTermDef(term Term, proof *ProofIter) error {
	if err := st.loadArgs(term.Args); err != nil {
		return err
	}
	// The return type goes through the same checks as a regular binder.
	if int(term.Ret.Sort()) >= int(st.seen.sorts) {
		return errors.Errorf("mmb: return type has undeclared sort %d", term.Ret.Sort())
	}
	if term.Ret.Bound() {
		return errors.New("mmb: term has a bound return type")
	}
	retDeps, err := term.Ret.Deps()
	if err != nil {
		return err
	}
	if retDeps & ^(st.nextBV-1) != 0 {
		return errors.New("mmb: return type depends on undeclared bound variables")
	}
	if !term.IsDef() {
		return nil
	}
	if err := st.runProof(modeDef, proof); err != nil {
		return err
	}
	final, err := st.popExpr()
	if err != nil {
		return err
	}
	if len(st.stack) != 0 {
		return errors.New("mmb: stack not empty after definition proof")
	}
	if !sortsCompatible(final.Ty(), term.Ret) {
		return errors.New("mmb: definition body sort does not match the declared return sort")
	}
	st.uheap = st.uheap[:0]
	for _, it := range st.heap[:term.NumArgs()] {
		st.uheap = append(st.uheap, it.(exprItem).e)
	}
	return st.runUnify(unifyDef, term.unifyStart, final)
}

// verifyAssert checks an axiom or theorem declaration, returning the
// hypotheses and conclusion for the environment.
func (st *state) verifyAssert(stmt StmtCmd, assert Assert, proof *ProofIter) ([]Expr, Expr, error) {
	if err := st.loadArgs(assert.Args); err != nil {
		return nil, nil, err
	}
	if err := st.runProof(modeThm, proof); err != nil {
		return nil, nil, err
	}

	var final Expr
	var err error
	if stmt.Kind == StmtThm {
		final, err = st.popProof()
	} else {
		final, err = st.popExpr()
	}
	if err != nil {
		return nil, nil, err
	}
	mods, err := st.f.SortMods(final.Ty().Sort())
	if err != nil {
		return nil, nil, err
	}
	if !mods.Provable() {
		return nil, nil, errors.New("mmb: conclusion sort is not provable")
	}

	if len(st.stack) != 0 {
		return nil, nil, errors.New("mmb: stack not empty after assertion proof")
	}
	st.uheap = st.uheap[:0]
	for _, it := range st.heap[:len(assert.Args)] {
		st.uheap = append(st.uheap, it.(exprItem).e)
	}
	if err := st.runUnify(unifyThmEnd, assert.unifyStart, final); err != nil {
		return nil, nil, err
	}
	return st.hstack, final, nil
}

// Verify checks every declaration in an .mmb file in order, returning the
// verified environment.
func Verify(data []byte) (*Env, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return VerifyFile(f)
}

// VerifyFile is Verify for an already-parsed file.
func VerifyFile(f *File) (*Env, error) {
	decls, err := f.DeclStream()
	if err != nil {
		return nil, err
	}

	env := &Env{}
	seen := &progress{}
	for {
		stmt, proof, ok, err := decls.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch stmt.Kind {
		case StmtSort:
			if int(stmt.SortID) >= len(f.Sorts) {
				return nil, errors.New("mmb: more sort statements than table rows")
			}
			if !proof.IsNull() {
				return nil, errors.New("mmb: sorts must have null proofs")
			}
			seen.sorts++
			env.Sorts = append(env.Sorts, SortDecl{
				Name: env.sortName(f.Index, stmt.SortID),
				Mods: f.Sorts[stmt.SortID],
			})

		case StmtTermDef:
			term, err := f.Term(stmt.TermID)
			if err != nil {
				return nil, err
			}
			if !term.IsDef() && !proof.IsNull() {
				return nil, errors.Errorf("mmb: term %d must have a null proof", stmt.TermID)
			}
			st := newState(f, seen)
			if err := st.verifyTermDef(term, proof); err != nil {
				return nil, errors.Wrapf(err, "verifying %s %s", stmt.Kind, env.termName(f.Index, stmt.TermID))
			}
			seen.terms++
			if !stmt.Local {
				env.Terms = append(env.Terms, TermDecl{
					ID:   stmt.TermID,
					Name: env.termName(f.Index, stmt.TermID),
					Args: term.Args,
					Ret:  term.Ret,
					Def:  term.IsDef(),
				})
			}

		case StmtAxiom, StmtThm:
			assert, err := f.Assert(stmt.ThmID)
			if err != nil {
				return nil, err
			}
			st := newState(f, seen)
			hyps, concl, err := st.verifyAssert(stmt, assert, proof)
			if err != nil {
				return nil, errors.Wrapf(err, "verifying %s %s", stmt.Kind, env.thmName(f.Index, stmt.ThmID))
			}
			seen.thms++
			if !stmt.Local {
				env.Asserts = append(env.Asserts, AssertDecl{
					ID:    stmt.ThmID,
					Name:  env.thmName(f.Index, stmt.ThmID),
					Kind:  stmt.Kind,
					Args:  assert.Args,
					Hyps:  hyps,
					Concl: concl,
				})
			}
		}
	}

	h := f.Header
	if uint8(seen.sorts) != h.NumSorts || uint32(seen.terms) != h.NumTerms || uint32(seen.thms) != h.NumThms {
		return nil, errors.Errorf(
			"mmb: declaration stream covered %d/%d/%d of %d sorts, %d terms, %d assertions",
			seen.sorts, seen.terms, seen.thms, h.NumSorts, h.NumTerms, h.NumThms,
		)
	}
	return env, nil
}
