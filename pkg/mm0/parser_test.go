package mm0

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropCalc(t *testing.T) {
	spec, err := ParseSpec(PropCalcSource)
	require.NoError(t, err)

	require.Len(t, spec.Sorts, 1)
	assert.Equal(t, "wff", spec.Sorts[0].Name)
	assert.True(t, spec.Sorts[0].Mods.Provable())

	require.Len(t, spec.Terms, 2)
	im, ok := spec.Term("im")
	require.True(t, ok)
	assert.Equal(t, []string{"wff", "wff"}, im.ArgSorts)
	assert.Equal(t, "wff", im.Ret)

	require.Len(t, spec.Asserts, 5)

	ax1, ok := spec.Assert("ax_1")
	require.True(t, ok)
	assert.Equal(t, "(im a (im b a))", ax1.Concl.String())
	assert.Len(t, ax1.Hyps, 0)
	assert.Equal(t, []Binder{{"a", "wff"}, {"b", "wff"}}, ax1.Binders)

	ax2, ok := spec.Assert("ax_2")
	require.True(t, ok)
	assert.Equal(t,
		"(im (im a (im b c)) (im (im a b) (im a c)))",
		ax2.Concl.String())

	ax3, ok := spec.Assert("ax_3")
	require.True(t, ok)
	assert.Equal(t, "(im (im (not a) (not b)) (im b a))", ax3.Concl.String())

	mp, ok := spec.Assert("ax_mp")
	require.True(t, ok)
	require.Len(t, mp.Hyps, 2)
	assert.Equal(t, "a", mp.Hyps[0].String())
	assert.Equal(t, "(im a b)", mp.Hyps[1].String())
	assert.Equal(t, "b", mp.Concl.String())

	id, ok := spec.Assert("id")
	require.True(t, ok)
	assert.True(t, id.Theorem)
	assert.Equal(t, "(im a a)", id.Concl.String())
	assert.Equal(t, []Binder{{"a", "wff"}}, id.Binders)
}

func TestInfixAssociativity(t *testing.T) {
	spec, err := ParseSpec(`
		delimiter $ ( ) $;
		provable sort wff;
		var a b c: wff;
		term conj (p q: wff): wff;
		infixl conj: $/\$ prec 30;
		axiom left: $ a /\ b /\ c $;
	`)
	require.NoError(t, err)
	left, ok := spec.Assert("left")
	require.True(t, ok)
	assert.Equal(t, "(conj (conj a b) c)", left.Concl.String())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"undeclared variable",
			`provable sort wff; term p: wff; axiom bad: $ q $;`,
			"undeclared variable: q",
		},
		{
			"duplicate sort",
			`sort s; sort s;`,
			"duplicate sort",
		},
		{
			"nonexistent sort in term",
			`term f: foo;`,
			"nonexistent sort",
		},
		{
			"notation for missing term",
			`provable sort wff; infixr im: $->$ prec 25;`,
			"notation for nonexistent term",
		},
		{
			"prefix notation on binary term",
			`provable sort wff; term im (p q: wff): wff; prefix im: $->$ prec 25;`,
			"prefix notation needs a unary term",
		},
		{
			"non-provable conclusion",
			`sort syn; var x: syn; axiom bad: $ x $;`,
			"non-provable sort",
		},
		{
			"arity mismatch",
			`delimiter $ ( ) $;
			 provable sort wff;
			 term im (p q: wff): wff;
			 axiom bad: $ (im) $;`,
			"unexpected ) in formula",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseSpec(c.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestTokenizeMath(t *testing.T) {
	delims := map[rune]bool{'(': true, ')': true, '~': true}
	toks := tokenizeMath("(~a -> ~b) -> b -> a", delims)
	assert.Equal(t,
		[]string{"(", "~", "a", "->", "~", "b", ")", "->", "b", "->", "a"},
		toks)
}
