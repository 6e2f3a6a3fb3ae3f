package mm0

import (
	"strings"

	"github.com/pkg/errors"

	"mmcheck/pkg/mmb"
)

// SortSig is a declared sort with its modifiers.
type SortSig struct {
	Name string
	Mods mmb.SortMods
}

// TermSig is a declared term constructor's signature.
type TermSig struct {
	Name     string
	ArgSorts []string
	Ret      string
}

// Binder is one named argument of an assertion.
type Binder struct {
	Name string
	Sort string
}

// Assertion is an elaborated axiom or theorem statement. Binders list the
// explicit binders first, then the ambient variables in order of first
// use; that order is also the .mmb binder order.
type Assertion struct {
	Name    string
	Theorem bool
	Binders []Binder
	Hyps    []*Fmla
	Concl   *Fmla
}

// Spec is an elaborated .mm0 file: the environment an .mmb proof file is
// expected to produce.
type Spec struct {
	Sorts   []SortSig
	Terms   []TermSig
	Asserts []Assertion

	delims   map[rune]bool
	prefixes map[string]notation
	infixes  map[string]notation
	vars     []Binder // ambient var declarations, in order
}

// Term looks up a term signature by name.
func (s *Spec) Term(name string) (TermSig, bool) {
	for _, t := range s.Terms {
		if t.Name == name {
			return t, true
		}
	}
	return TermSig{}, false
}

// Sort looks up a sort by name.
func (s *Spec) Sort(name string) (SortSig, bool) {
	for _, srt := range s.Sorts {
		if srt.Name == name {
			return srt, true
		}
	}
	return SortSig{}, false
}

// Assert looks up an assertion by name.
func (s *Spec) Assert(name string) (Assertion, bool) {
	for _, a := range s.Asserts {
		if a.Name == name {
			return a, true
		}
	}
	return Assertion{}, false
}

func stripMath(math string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(math, "$"), "$"))
}

func sortModsOf(mods []string) mmb.SortMods {
	var m uint8
	for _, mod := range mods {
		switch mod {
		case "pure":
			m |= mmb.SortPure
		case "strict":
			m |= mmb.SortStrict
		case "provable":
			m |= mmb.SortProvable
		case "free":
			m |= mmb.SortFree
		}
	}
	return mmb.SortMods(m)
}

// Elaborate turns a parsed .mm0 file into a Spec, checking declarations
// as it goes: names must be fresh, sorts declared, formulas well-sorted.
func Elaborate(file *SpecFile) (*Spec, error) {
	s := &Spec{
		delims:   map[rune]bool{},
		prefixes: map[string]notation{},
		infixes:  map[string]notation{},
	}
	for _, decl := range file.Decls {
		var err error
		switch {
		case decl.Delimiter != nil:
			for _, r := range stripMath(decl.Delimiter.Math) {
				if r != ' ' {
					s.delims[r] = true
				}
			}
		case decl.Sort != nil:
			err = s.elabSort(decl.Sort)
		case decl.Var != nil:
			err = s.elabVar(decl.Var)
		case decl.Term != nil:
			err = s.elabTerm(decl.Term)
		case decl.Notation != nil:
			err = s.elabNotation(decl.Notation)
		case decl.Assert != nil:
			err = s.elabAssert(decl.Assert)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ParseSpec parses and elaborates .mm0 source in one go.
func ParseSpec(src string) (*Spec, error) {
	file, err := ParseSpecFile(src)
	if err != nil {
		return nil, err
	}
	return Elaborate(file)
}

func (s *Spec) elabSort(decl *SortDecl) error {
	if _, ok := s.Sort(decl.Name); ok {
		return errors.Errorf("duplicate sort: %s", decl.Name)
	}
	if len(s.Sorts) >= 128 {
		return errors.New("too many sorts")
	}
	s.Sorts = append(s.Sorts, SortSig{Name: decl.Name, Mods: sortModsOf(decl.Mods)})
	return nil
}

func (s *Spec) elabVar(decl *VarDecl) error {
	if _, ok := s.Sort(decl.Sort); !ok {
		return errors.Errorf("var declaration uses nonexistent sort: %s", decl.Sort)
	}
	for _, name := range decl.Names {
		for _, v := range s.vars {
			if v.Name == name {
				return errors.Errorf("duplicate var: %s", name)
			}
		}
		s.vars = append(s.vars, Binder{Name: name, Sort: decl.Sort})
	}
	return nil
}

func (s *Spec) elabTerm(decl *TermDecl) error {
	if _, ok := s.Term(decl.Name); ok {
		return errors.Errorf("duplicate term: %s", decl.Name)
	}
	sig := TermSig{Name: decl.Name}
	for _, group := range decl.Binders {
		if _, ok := s.Sort(group.Sort); !ok {
			return errors.Errorf("term %s binder uses nonexistent sort: %s", decl.Name, group.Sort)
		}
		for range group.Names {
			sig.ArgSorts = append(sig.ArgSorts, group.Sort)
		}
	}
	// Arrow form: every sort before the last is another argument.
	for i, name := range decl.Sorts {
		if _, ok := s.Sort(name); !ok {
			return errors.Errorf("term %s uses nonexistent sort: %s", decl.Name, name)
		}
		if i < len(decl.Sorts)-1 {
			sig.ArgSorts = append(sig.ArgSorts, name)
		} else {
			sig.Ret = name
		}
	}
	s.Terms = append(s.Terms, sig)
	return nil
}

func (s *Spec) elabNotation(decl *NotationDecl) error {
	sig, ok := s.Term(decl.Term)
	if !ok {
		return errors.Errorf("notation for nonexistent term: %s", decl.Term)
	}
	tok := stripMath(decl.Tok)
	if tok == "" {
		return errors.Errorf("notation for %s has an empty token", decl.Term)
	}
	if _, ok := s.prefixes[tok]; ok {
		return errors.Errorf("duplicate notation token: %s", tok)
	}
	if _, ok := s.infixes[tok]; ok {
		return errors.Errorf("duplicate notation token: %s", tok)
	}
	n := notation{term: decl.Term, prec: decl.Prec}
	switch decl.Kind {
	case "prefix":
		if len(sig.ArgSorts) != 1 {
			return errors.Errorf("prefix notation needs a unary term; %s has %d args", decl.Term, len(sig.ArgSorts))
		}
		n.kind = notationPrefix
		s.prefixes[tok] = n
	case "infixl", "infixr":
		if len(sig.ArgSorts) != 2 {
			return errors.Errorf("infix notation needs a binary term; %s has %d args", decl.Term, len(sig.ArgSorts))
		}
		if decl.Kind == "infixl" {
			n.kind = notationInfixL
		} else {
			n.kind = notationInfixR
		}
		s.infixes[tok] = n
	}
	return nil
}

func (s *Spec) elabAssert(decl *AssertDecl) error {
	if _, ok := s.Assert(decl.Name); ok {
		return errors.Errorf("duplicate assertion: %s", decl.Name)
	}
	a := Assertion{Name: decl.Name, Theorem: decl.Kind == "theorem"}
	for _, group := range decl.Binders {
		if _, ok := s.Sort(group.Sort); !ok {
			return errors.Errorf("assertion %s binder uses nonexistent sort: %s", decl.Name, group.Sort)
		}
		for _, name := range group.Names {
			a.Binders = append(a.Binders, Binder{Name: name, Sort: group.Sort})
		}
	}

	fmlas := make([]*Fmla, len(decl.Fmlas))
	for i, math := range decl.Fmlas {
		f, err := s.parseFmla(stripMath(math))
		if err != nil {
			return errors.Wrapf(err, "assertion %s", decl.Name)
		}
		fmlas[i] = f
	}

	// Ambient variables join the binder list in order of first use.
	for _, f := range fmlas {
		if err := s.bindVars(&a, f); err != nil {
			return errors.Wrapf(err, "assertion %s", decl.Name)
		}
	}

	for i, f := range fmlas {
		sort, err := s.sortOf(&a, f)
		if err != nil {
			return errors.Wrapf(err, "assertion %s", decl.Name)
		}
		sig, _ := s.Sort(sort)
		if !sig.Mods.Provable() {
			return errors.Errorf("assertion %s: formula %d has non-provable sort %s", decl.Name, i, sort)
		}
	}

	a.Hyps = fmlas[:len(fmlas)-1]
	a.Concl = fmlas[len(fmlas)-1]
	s.Asserts = append(s.Asserts, a)
	return nil
}

func (s *Spec) bindVars(a *Assertion, f *Fmla) error {
	if f.Var != "" {
		for _, b := range a.Binders {
			if b.Name == f.Var {
				return nil
			}
		}
		for _, v := range s.vars {
			if v.Name == f.Var {
				a.Binders = append(a.Binders, v)
				return nil
			}
		}
		return errors.Errorf("undeclared variable: %s", f.Var)
	}
	for _, arg := range f.Args {
		if err := s.bindVars(a, arg); err != nil {
			return err
		}
	}
	return nil
}

// sortOf infers and checks the sort of a formula.
func (s *Spec) sortOf(a *Assertion, f *Fmla) (string, error) {
	if f.Var != "" {
		for _, b := range a.Binders {
			if b.Name == f.Var {
				return b.Sort, nil
			}
		}
		return "", errors.Errorf("undeclared variable: %s", f.Var)
	}
	sig, ok := s.Term(f.Term)
	if !ok {
		return "", errors.Errorf("nonexistent term: %s", f.Term)
	}
	if len(f.Args) != len(sig.ArgSorts) {
		return "", errors.Errorf("term %s wants %d args; given %d", f.Term, len(sig.ArgSorts), len(f.Args))
	}
	for i, arg := range f.Args {
		argSort, err := s.sortOf(a, arg)
		if err != nil {
			return "", err
		}
		if argSort != sig.ArgSorts[i] {
			return "", errors.Errorf("term %s arg %d: have sort %s; want %s", f.Term, i, argSort, sig.ArgSorts[i])
		}
	}
	return sig.Ret, nil
}
