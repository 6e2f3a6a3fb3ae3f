package mmb

import (
	"strings"
	"testing"
)

func TestPropCalcVerifies(t *testing.T) {
	data, err := PropCalc()
	if err != nil {
		t.Fatal(err)
	}
	env, err := Verify(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(env.Sorts) != 1 || env.Sorts[0].Name != "wff" {
		t.Fatalf("expected one sort wff; got %+v", env.Sorts)
	}
	if !env.Sorts[0].Mods.Provable() {
		t.Fatal("wff should be provable")
	}

	if len(env.Terms) != 2 {
		t.Fatalf("expected terms im and not; got %+v", env.Terms)
	}
	im, ok := env.Term("im")
	if !ok || len(im.Args) != 2 {
		t.Fatalf("bad im: %+v", im)
	}
	neg, ok := env.Term("not")
	if !ok || len(neg.Args) != 1 {
		t.Fatalf("bad not: %+v", neg)
	}

	wantAsserts := []string{"ax_1", "ax_2", "ax_3", "ax_mp", "id"}
	if len(env.Asserts) != len(wantAsserts) {
		t.Fatalf("expected %d assertions; got %d", len(wantAsserts), len(env.Asserts))
	}
	for i, name := range wantAsserts {
		if env.Asserts[i].Name != name {
			t.Errorf("assertion %d: expected %s; got %s", i, name, env.Asserts[i].Name)
		}
	}

	f, err := ParseFile(data)
	if err != nil {
		t.Fatal(err)
	}

	ax1, _ := env.Assert("ax_1")
	if got := FormatExpr(ax1.Concl, f.Index); got != "(im v0 (im v1 v0))" {
		t.Fatalf("ax_1 conclusion: got %s", got)
	}
	if len(ax1.Hyps) != 0 {
		t.Fatalf("ax_1 should have no hypotheses; got %d", len(ax1.Hyps))
	}

	mp, _ := env.Assert("ax_mp")
	if len(mp.Hyps) != 2 {
		t.Fatalf("ax_mp should have two hypotheses; got %d", len(mp.Hyps))
	}
	if got := FormatExpr(mp.Hyps[1], f.Index); got != "(im v0 v1)" {
		t.Fatalf("ax_mp second hypothesis: got %s", got)
	}
	if got := FormatExpr(mp.Concl, f.Index); got != "v1" {
		t.Fatalf("ax_mp conclusion: got %s", got)
	}

	id, _ := env.Assert("id")
	if id.Kind != StmtThm {
		t.Fatal("id should be a theorem")
	}
	if got := FormatExpr(id.Concl, f.Index); got != "(im v0 v0)" {
		t.Fatalf("id conclusion: got %s", got)
	}
}

func TestVerifyRejectsBadMagic(t *testing.T) {
	data, err := PropCalc()
	if err != nil {
		t.Fatal(err)
	}
	data[0] ^= 0xff
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "bad magic") {
		t.Fatalf("expected bad magic error; got %v", err)
	}
}

func TestVerifyRejectsTruncatedFile(t *testing.T) {
	data, err := PropCalc()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data[:20]); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

// An axiom whose unify stream states something other than what its proof
// stream built must be rejected.
func TestVerifyRejectsMismatchedAxiom(t *testing.T) {
	b := NewBuilder()
	wff := b.AddSort("wff", SortMods(SortProvable))
	v := NewRegularType(wff, 0)
	im := b.AddTerm("im", []Type{v, v}, v)

	p := &ProofWriter{}
	p.Ref(0)
	p.Ref(1)
	p.Term(im) // builds a -> b
	u := &UnifyWriter{}
	u.Term(im)
	u.Ref(1)
	u.Ref(0) // states b -> a
	b.AddAxiom("bogus", []Type{v, v}, p, u)

	data, err := b.Write()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "unify mismatch") {
		t.Fatalf("expected unify mismatch; got %v", err)
	}
}

func TestVerifyRejectsNonProvableConclusion(t *testing.T) {
	b := NewBuilder()
	s := b.AddSort("syn", 0) // not provable
	v := NewRegularType(s, 0)

	p := &ProofWriter{}
	p.Ref(0)
	u := &UnifyWriter{}
	u.Ref(0)
	b.AddAxiom("bad", []Type{v}, p, u)

	data, err := b.Write()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "not provable") {
		t.Fatalf("expected provability error; got %v", err)
	}
}

func TestVerifyRejectsBoundReturnType(t *testing.T) {
	b := NewBuilder()
	wff := b.AddSort("wff", SortMods(SortProvable))
	v := NewRegularType(wff, 0)
	b.AddTerm("bad", []Type{v}, NewBoundType(wff, 1))

	data, err := b.Write()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "bound return type") {
		t.Fatalf("expected bound return type error; got %v", err)
	}
}

// A term's declared return type may only depend on bound variables the
// binders actually introduce.
func TestVerifyRejectsUndeclaredReturnDeps(t *testing.T) {
	b := NewBuilder()
	wff := b.AddSort("wff", SortMods(SortProvable))
	v := NewRegularType(wff, 0)
	b.AddTerm("bad", []Type{v}, NewRegularType(wff, 1))

	data, err := b.Write()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "undeclared bound variables") {
		t.Fatalf("expected return deps error; got %v", err)
	}
}

// Applying an assertion reads the stated conclusion from the top of the
// stack, above the substitution arguments.
func TestThmConclusionOnStackTop(t *testing.T) {
	build := func(conclusionLast bool) []byte {
		b := NewBuilder()
		wff := b.AddSort("wff", SortMods(SortProvable))
		v := NewRegularType(wff, 0)
		im := b.AddTerm("im", []Type{v, v}, v)

		// any (a b: wff): a -> b
		p := &ProofWriter{}
		p.Ref(0)
		p.Ref(1)
		p.Term(im)
		u := &UnifyWriter{}
		u.Term(im)
		u.Ref(0)
		u.Ref(1)
		any := b.AddAxiom("any", []Type{v, v}, p, u)

		// th (a: wff): a -> (a -> a), by instantiating any at b := a -> a.
		p = &ProofWriter{}
		target := func() {
			p.Ref(0)
			p.Ref(0)
			p.Ref(0)
			p.Term(im)
			p.Term(im)
		}
		if !conclusionLast {
			target()
		}
		p.Ref(0)
		p.Ref(0)
		p.Ref(0)
		p.Term(im)
		if conclusionLast {
			target()
		}
		p.Thm(any)
		u = &UnifyWriter{}
		u.Term(im)
		u.Ref(0)
		u.Term(im)
		u.Ref(0)
		u.Ref(0)
		b.AddThm("th", []Type{v}, p, u)

		data, err := b.Write()
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if _, err := Verify(build(true)); err != nil {
		t.Fatalf("conclusion on top should verify; got %v", err)
	}
	if _, err := Verify(build(false)); err == nil {
		t.Fatal("conclusion below the arguments should be rejected")
	}
}

func TestVerifyRejectsStackJunk(t *testing.T) {
	b := NewBuilder()
	wff := b.AddSort("wff", SortMods(SortProvable))
	v := NewRegularType(wff, 0)

	p := &ProofWriter{}
	p.Ref(0)
	p.Ref(0) // leaves an extra expression behind
	u := &UnifyWriter{}
	u.Ref(0)
	b.AddAxiom("junk", []Type{v}, p, u)

	data, err := b.Write()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(data); err == nil || !strings.Contains(err.Error(), "stack not empty") {
		t.Fatalf("expected stack not empty; got %v", err)
	}
}

func TestDeclStreamOrder(t *testing.T) {
	data, err := PropCalc()
	if err != nil {
		t.Fatal(err)
	}
	f, err := ParseFile(data)
	if err != nil {
		t.Fatal(err)
	}
	decls, err := f.DeclStream()
	if err != nil {
		t.Fatal(err)
	}
	var kinds []StmtKind
	for {
		stmt, _, ok, err := decls.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		kinds = append(kinds, stmt.Kind)
	}
	want := []StmtKind{StmtSort, StmtTermDef, StmtTermDef, StmtAxiom, StmtAxiom, StmtAxiom, StmtAxiom, StmtThm}
	if len(kinds) != len(want) {
		t.Fatalf("got %d statements; want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("statement %d: got %s; want %s", i, kinds[i], want[i])
		}
	}
}
