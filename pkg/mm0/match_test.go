package mm0

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mmcheck/pkg/mmb"
)

func TestMatchPropCalc(t *testing.T) {
	spec, err := ParseSpec(PropCalcSource)
	require.NoError(t, err)

	data, err := mmb.PropCalc()
	require.NoError(t, err)
	env, err := mmb.Verify(data)
	require.NoError(t, err)

	require.NoError(t, Match(spec, env))
}

func TestMatchCatchesMissingAxiom(t *testing.T) {
	src := strings.Replace(PropCalcSource, "axiom ax_3: $ (~a -> ~b) -> b -> a $;\n", "", 1)
	spec, err := ParseSpec(src)
	require.NoError(t, err)

	data, err := mmb.PropCalc()
	require.NoError(t, err)
	env, err := mmb.Verify(data)
	require.NoError(t, err)

	err = Match(spec, env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "assertions")
}

func TestMatchCatchesChangedStatement(t *testing.T) {
	// Flip ax_3's conclusion: the proof file proves b -> a.
	src := strings.Replace(PropCalcSource,
		"axiom ax_3: $ (~a -> ~b) -> b -> a $;",
		"axiom ax_3: $ (~a -> ~b) -> a -> b $;", 1)
	spec, err := ParseSpec(src)
	require.NoError(t, err)

	data, err := mmb.PropCalc()
	require.NoError(t, err)
	env, err := mmb.Verify(data)
	require.NoError(t, err)

	err = Match(spec, env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ax_3")
}

func TestMatchCatchesSortModifiers(t *testing.T) {
	src := strings.Replace(PropCalcSource, "provable sort wff;", "pure provable sort wff;", 1)
	spec, err := ParseSpec(src)
	require.NoError(t, err)

	data, err := mmb.PropCalc()
	require.NoError(t, err)
	env, err := mmb.Verify(data)
	require.NoError(t, err)

	err = Match(spec, env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sort wff")
}
