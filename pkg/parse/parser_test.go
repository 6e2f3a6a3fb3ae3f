package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCheck(t *testing.T) {
	stmt, err := Parse(`CHECK prop "TU0wQg==" SPEC "c29ydCB3ZmY7"`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Check)
	assert.Equal(t, "prop", stmt.Check.Name)
	assert.Equal(t, "TU0wQg==", stmt.Check.Proof)
	require.NotNil(t, stmt.Check.Spec)
	assert.Equal(t, "c29ydCB3ZmY7", *stmt.Check.Spec)
}

func TestParseCheckWithoutSpec(t *testing.T) {
	stmt, err := Parse(`CHECK prop "TU0wQg=="`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Check)
	assert.Nil(t, stmt.Check.Spec)
}

func TestParseOthers(t *testing.T) {
	stmt, err := Parse(`GET prop LIVE`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Get)
	assert.Equal(t, "prop", stmt.Get.Name)
	assert.True(t, stmt.Get.Live)

	stmt, err = Parse(`AXIOMS prop`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Axioms)

	stmt, err = Parse(`LIST`)
	require.NoError(t, err)
	require.NotNil(t, stmt.List)

	stmt, err = Parse(`DROP prop`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Drop)

	stmt, err = Parse(`WATCH`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Watch)
	assert.Nil(t, stmt.Watch.Name)

	stmt, err = Parse(`WATCH prop`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Watch)
	require.NotNil(t, stmt.Watch.Name)
	assert.Equal(t, "prop", *stmt.Watch.Name)
}

func TestParseLowercaseKeywords(t *testing.T) {
	stmt, err := Parse(`check prop "TU0wQg==" spec "c29ydCB3ZmY7"`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Check)
	assert.Equal(t, "prop", stmt.Check.Name)

	stmt, err = Parse(`get prop live`)
	require.NoError(t, err)
	require.NotNil(t, stmt.Get)
	assert.True(t, stmt.Get.Live)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"CHECK",
		"CHECK prop",
		"SELECT * FROM envs",
	} {
		_, err := Parse(input)
		assert.Error(t, err, "input: %q", input)
	}
}
