package mmcheck

import (
	"fmt"
	"strings"

	"mmcheck/pkg/mmb"
	pp "mmcheck/pkg/prettyprint"
)

// DescribeEnv renders a verified environment as a human-readable listing,
// one declaration per line.
func DescribeEnv(f *mmb.File, env *mmb.Env) string {
	docs := make([]pp.Doc, 0, len(env.Sorts)+len(env.Terms)+len(env.Asserts))
	for _, sort := range env.Sorts {
		// Mods.String() includes the word "sort".
		docs = append(docs, pp.Textf("%s %s", sort.Mods, sort.Name))
	}
	for _, term := range env.Terms {
		kind := "term"
		if term.Def {
			kind = "def"
		}
		argSorts := make([]string, len(term.Args))
		for idx, arg := range term.Args {
			argSorts[idx] = sortName(f, arg.Sort())
		}
		docs = append(docs, pp.Textf(
			"%s %s: %s > %s",
			kind, term.Name, strings.Join(argSorts, " "), sortName(f, term.Ret.Sort()),
		))
	}
	for _, assert := range env.Asserts {
		docs = append(docs, pp.Seq([]pp.Doc{
			pp.Textf("%s %s %s:", assert.Kind, assert.Name, formatBinders(f, assert.Args)),
			pp.Newline,
			pp.Indent(2, pp.Text(formatAssertBody(f, assert))),
		}))
	}
	return pp.Join(docs, pp.Newline).String()
}

// assertInfos extracts the axioms and theorems of an environment.
func assertInfos(f *mmb.File, env *mmb.Env) []AssertInfo {
	infos := make([]AssertInfo, len(env.Asserts))
	for idx, assert := range env.Asserts {
		hyps := make([]string, len(assert.Hyps))
		for hypIdx, hyp := range assert.Hyps {
			hyps[hypIdx] = mmb.FormatExpr(hyp, f.Index)
		}
		infos[idx] = AssertInfo{
			Name:    assert.Name,
			Kind:    assert.Kind.String(),
			Hyps:    hyps,
			Concl:   mmb.FormatExpr(assert.Concl, f.Index),
			Binders: len(assert.Args),
		}
	}
	return infos
}

func formatBinders(f *mmb.File, args []mmb.Type) string {
	binders := make([]string, len(args))
	for idx, arg := range args {
		binder := fmt.Sprintf("v%d: %s", idx, sortName(f, arg.Sort()))
		if arg.Bound() {
			binder = "{" + binder + "}"
		} else {
			binder = "(" + binder + ")"
		}
		binders[idx] = binder
	}
	return strings.Join(binders, " ")
}

func formatAssertBody(f *mmb.File, assert mmb.AssertDecl) string {
	parts := make([]string, 0, len(assert.Hyps)+1)
	for _, hyp := range assert.Hyps {
		parts = append(parts, mmb.FormatExpr(hyp, f.Index))
	}
	parts = append(parts, mmb.FormatExpr(assert.Concl, f.Index))
	return strings.Join(parts, " > ")
}

func sortName(f *mmb.File, id mmb.SortID) string {
	if f.Index != nil {
		if name, err := f.Index.SortName(id); err == nil {
			return name
		}
	}
	return fmt.Sprintf("s%d", id)
}
