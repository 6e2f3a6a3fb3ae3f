package mmb

import "fmt"

// Env is the result of verifying an .mmb file: every exported declaration,
// with names from the index when the file has one.
type Env struct {
	Sorts   []SortDecl
	Terms   []TermDecl
	Asserts []AssertDecl
}

// SortDecl is a verified sort declaration.
type SortDecl struct {
	Name string
	Mods SortMods
}

// TermDecl is a verified term constructor or definition.
type TermDecl struct {
	ID   TermID
	Name string
	Args []Type
	Ret  Type
	Def  bool
}

// AssertDecl is a verified axiom or theorem, with its hypotheses and
// conclusion as checked expressions over the binder variables.
type AssertDecl struct {
	ID    ThmID
	Name  string
	Kind  StmtKind
	Args  []Type
	Hyps  []Expr
	Concl Expr
}

func (env *Env) sortName(ix *NameIndex, id SortID) string {
	if ix != nil {
		if name, err := ix.SortName(id); err == nil {
			return name
		}
	}
	return fmt.Sprintf("s%d", id)
}

func (env *Env) termName(ix *NameIndex, id TermID) string {
	if ix != nil {
		if name, err := ix.TermName(id); err == nil {
			return name
		}
	}
	return fmt.Sprintf("t%d", id)
}

func (env *Env) thmName(ix *NameIndex, id ThmID) string {
	if ix != nil {
		if name, err := ix.ThmName(id); err == nil {
			return name
		}
	}
	return fmt.Sprintf("T%d", id)
}

// Sort looks up a sort declaration by name.
func (env *Env) Sort(name string) (SortDecl, bool) {
	for _, s := range env.Sorts {
		if s.Name == name {
			return s, true
		}
	}
	return SortDecl{}, false
}

// Term looks up a term declaration by name.
func (env *Env) Term(name string) (TermDecl, bool) {
	for _, t := range env.Terms {
		if t.Name == name {
			return t, true
		}
	}
	return TermDecl{}, false
}

// Assert looks up an assertion by name.
func (env *Env) Assert(name string) (AssertDecl, bool) {
	for _, a := range env.Asserts {
		if a.Name == name {
			return a, true
		}
	}
	return AssertDecl{}, false
}
