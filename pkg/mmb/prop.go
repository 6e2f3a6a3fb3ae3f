package mmb

// PropCalc builds the propositional calculus example file: the sort wff,
// the implication and negation constructors, Lukasiewicz's three axioms
// plus modus ponens, and a proof of the identity theorem from them.
//
// This is the .mmb counterpart of testdata/prop.mm0.
func PropCalc() ([]byte, error) {
	b := NewBuilder()

	wff := b.AddSort("wff", SortMods(SortProvable))
	v := NewRegularType(wff, 0)

	im := b.AddTerm("im", []Type{v, v}, v)
	not := b.AddTerm("not", []Type{v}, v)

	var ax1, ax2, axMP ThmID

	// ax_1 (a b: wff): a -> b -> a
	{
		p := &ProofWriter{}
		p.Ref(0)
		p.Ref(1)
		p.Ref(0)
		p.Term(im)
		p.Term(im)
		u := &UnifyWriter{}
		u.Term(im)
		u.Ref(0)
		u.Term(im)
		u.Ref(1)
		u.Ref(0)
		ax1 = b.AddAxiom("ax_1", []Type{v, v}, p, u)
	}

	// ax_2 (a b c: wff): (a -> b -> c) -> (a -> b) -> a -> c
	{
		p := &ProofWriter{}
		p.Ref(0)
		p.Ref(1)
		p.Ref(2)
		p.Term(im)
		p.Term(im)
		p.Ref(0)
		p.Ref(1)
		p.Term(im)
		p.Ref(0)
		p.Ref(2)
		p.Term(im)
		p.Term(im)
		p.Term(im)
		u := &UnifyWriter{}
		u.Term(im)
		u.Term(im)
		u.Ref(0)
		u.Term(im)
		u.Ref(1)
		u.Ref(2)
		u.Term(im)
		u.Term(im)
		u.Ref(0)
		u.Ref(1)
		u.Term(im)
		u.Ref(0)
		u.Ref(2)
		ax2 = b.AddAxiom("ax_2", []Type{v, v, v}, p, u)
	}

	// ax_3 (a b: wff): (~a -> ~b) -> b -> a
	{
		p := &ProofWriter{}
		p.Ref(0)
		p.Term(not)
		p.Ref(1)
		p.Term(not)
		p.Term(im)
		p.Ref(1)
		p.Ref(0)
		p.Term(im)
		p.Term(im)
		u := &UnifyWriter{}
		u.Term(im)
		u.Term(im)
		u.Term(not)
		u.Ref(0)
		u.Term(not)
		u.Ref(1)
		u.Term(im)
		u.Ref(1)
		u.Ref(0)
		b.AddAxiom("ax_3", []Type{v, v}, p, u)
	}

	// ax_mp (a b: wff): from a and a -> b, infer b
	{
		p := &ProofWriter{}
		p.Ref(0)
		p.Hyp()
		p.Ref(0)
		p.Ref(1)
		p.Term(im)
		p.Hyp()
		p.Ref(1)
		u := &UnifyWriter{}
		u.Ref(1)
		u.Hyp()
		u.Ref(0)
		u.Hyp()
		u.Term(im)
		u.Ref(0)
		u.Ref(1)
		axMP = b.AddAxiom("ax_mp", []Type{v, v}, p, u)
	}
	// id (a: wff): a -> a, the textbook derivation from ax_1, ax_2, ax_mp.
	//
	// Heap after the saves: 0 = a, 1 = a->a, 2 = a->((a->a)->a),
	// 3 = a->(a->a), 4 = (a->(a->a))->(a->a).
	{
		p := &ProofWriter{}
		// ax_2 instance: (a -> ((a->a) -> a)) -> ((a -> (a->a)) -> (a -> a))
		// Substitution args first, then the stated conclusion on top.
		p.Ref(0)
		p.Ref(0)
		p.Ref(0)
		p.TermSave(im) // heap 1: a->a
		p.Ref(0)
		p.Ref(0)
		p.Ref(1)
		p.Ref(0)
		p.Term(im)     // (a->a)->a
		p.TermSave(im) // heap 2: a->((a->a)->a)
		p.Ref(0)
		p.Ref(1)
		p.TermSave(im) // heap 3: a->(a->a)
		p.Ref(1)
		p.TermSave(im) // heap 4: (a->(a->a))->(a->a)
		p.Term(im)
		p.Thm(ax2)
		// ax_1 instance: a -> ((a->a) -> a)
		p.Ref(0)
		p.Ref(1)
		p.Ref(2)
		p.Thm(ax1)
		// modus ponens: (a -> (a->a)) -> (a -> a)
		p.Ref(2)
		p.Ref(4)
		p.Ref(4)
		p.Thm(axMP)
		// ax_1 instance: a -> (a -> a)
		p.Ref(0)
		p.Ref(0)
		p.Ref(3)
		p.Thm(ax1)
		// modus ponens: a -> a
		p.Ref(3)
		p.Ref(1)
		p.Ref(1)
		p.Thm(axMP)
		u := &UnifyWriter{}
		u.Term(im)
		u.Ref(0)
		u.Ref(0)
		b.AddThm("id", []Type{v}, p, u)
	}

	return b.Write()
}
