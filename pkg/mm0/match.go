package mm0

import (
	"github.com/pkg/errors"

	"mmcheck/pkg/mmb"
)

// Match checks that a verified .mmb environment is exactly the one this
// spec describes: same sorts in order with the same modifiers, matching
// term signatures, and every assertion statement equal to the verified
// statement up to binder naming.
func Match(spec *Spec, env *mmb.Env) error {
	if len(env.Sorts) != len(spec.Sorts) {
		return errors.Errorf("spec has %d sorts; proof file has %d", len(spec.Sorts), len(env.Sorts))
	}
	sortNames := make(map[mmb.SortID]string)
	for i, want := range spec.Sorts {
		got := env.Sorts[i]
		if got.Name != want.Name {
			return errors.Errorf("sort %d: spec says %s; proof file says %s", i, want.Name, got.Name)
		}
		if got.Mods != want.Mods {
			return errors.Errorf("sort %s: spec says %s; proof file says %s", want.Name, want.Mods, got.Mods)
		}
		sortNames[mmb.SortID(i)] = want.Name
	}

	if len(env.Terms) != len(spec.Terms) {
		return errors.Errorf("spec has %d terms; proof file has %d", len(spec.Terms), len(env.Terms))
	}
	termNames := make(map[mmb.TermID]string)
	for i, want := range spec.Terms {
		got := env.Terms[i]
		if got.Name != want.Name {
			return errors.Errorf("term %d: spec says %s; proof file says %s", i, want.Name, got.Name)
		}
		if len(got.Args) != len(want.ArgSorts) {
			return errors.Errorf("term %s: spec says %d args; proof file says %d", want.Name, len(want.ArgSorts), len(got.Args))
		}
		for j, argSort := range want.ArgSorts {
			if sortNames[got.Args[j].Sort()] != argSort {
				return errors.Errorf("term %s arg %d: spec says sort %s", want.Name, j, argSort)
			}
		}
		if sortNames[got.Ret.Sort()] != want.Ret {
			return errors.Errorf("term %s: spec says return sort %s", want.Name, want.Ret)
		}
		termNames[got.ID] = want.Name
	}

	if len(env.Asserts) != len(spec.Asserts) {
		return errors.Errorf("spec has %d assertions; proof file has %d", len(spec.Asserts), len(env.Asserts))
	}
	for i, want := range spec.Asserts {
		got := env.Asserts[i]
		if got.Name != want.Name {
			return errors.Errorf("assertion %d: spec says %s; proof file says %s", i, want.Name, got.Name)
		}
		if want.Theorem != (got.Kind == mmb.StmtThm) {
			return errors.Errorf("assertion %s: spec and proof file disagree on axiom vs theorem", want.Name)
		}
		if err := matchAssert(want, got, sortNames, termNames); err != nil {
			return errors.Wrapf(err, "assertion %s", want.Name)
		}
	}
	return nil
}

func matchAssert(want Assertion, got mmb.AssertDecl, sortNames map[mmb.SortID]string, termNames map[mmb.TermID]string) error {
	if len(got.Args) != len(want.Binders) {
		return errors.Errorf("spec says %d binders; proof file says %d", len(want.Binders), len(got.Args))
	}
	for i, binder := range want.Binders {
		if sortNames[got.Args[i].Sort()] != binder.Sort {
			return errors.Errorf("binder %s: spec says sort %s", binder.Name, binder.Sort)
		}
	}
	if len(got.Hyps) != len(want.Hyps) {
		return errors.Errorf("spec says %d hypotheses; proof file says %d", len(want.Hyps), len(got.Hyps))
	}
	for i, hyp := range want.Hyps {
		if err := matchFmla(want, hyp, got.Hyps[i], termNames); err != nil {
			return errors.Wrapf(err, "hypothesis %d", i)
		}
	}
	return errors.Wrap(matchFmla(want, want.Concl, got.Concl, termNames), "conclusion")
}

// matchFmla compares a spec formula against a verified expression. Binder
// position gives the variable correspondence: the i-th binder of the spec
// assertion is heap variable i.
func matchFmla(a Assertion, want *Fmla, got mmb.Expr, termNames map[mmb.TermID]string) error {
	if want.Var != "" {
		v, ok := got.(*mmb.EVar)
		if !ok {
			return errors.Errorf("spec says variable %s; proof file has %s", want.Var, mmb.FormatExpr(got, nil))
		}
		if v.Idx >= len(a.Binders) || a.Binders[v.Idx].Name != want.Var {
			return errors.Errorf("spec says variable %s; proof file has v%d", want.Var, v.Idx)
		}
		return nil
	}
	app, ok := got.(*mmb.EApp)
	if !ok {
		return errors.Errorf("spec says application of %s; proof file has a variable", want.Term)
	}
	if termNames[app.Term] != want.Term {
		return errors.Errorf("spec says application of %s; proof file applies %s", want.Term, termNames[app.Term])
	}
	if len(app.Args) != len(want.Args) {
		return errors.Errorf("application of %s: arity mismatch", want.Term)
	}
	for i, arg := range want.Args {
		if err := matchFmla(a, arg, app.Args[i], termNames); err != nil {
			return err
		}
	}
	return nil
}
