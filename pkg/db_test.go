package mmcheck

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmcheck/pkg/mm0"
	"mmcheck/pkg/mmb"
)

const propListing = `provable sort wff
term im: wff wff > wff
term not: wff > wff
axiom ax_1 (v0: wff) (v1: wff):
  (im v0 (im v1 v0))
axiom ax_2 (v0: wff) (v1: wff) (v2: wff):
  (im (im v0 (im v1 v2)) (im (im v0 v1) (im v0 v2)))
axiom ax_3 (v0: wff) (v1: wff):
  (im (im (not v0) (not v1)) (im v1 v0))
axiom ax_mp (v0: wff) (v1: wff):
  v0 > (im v0 v1) > v1
theorem id (v0: wff):
  (im v0 v0)`

func propProofB64(t *testing.T) string {
	t.Helper()
	proof, err := mmb.PropCalc()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(proof)
}

func propSpecB64() string {
	return base64.StdEncoding.EncodeToString([]byte(mm0.PropCalcSource))
}

func TestCheckScript(t *testing.T) {
	proofB64 := propProofB64(t)
	junkB64 := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 64)))

	server := runSimpleTestScript(t, []simpleTestStmt{
		{
			stmt: `CHECK prop "` + proofB64 + `" SPEC "` + propSpecB64() + `"`,
			ack:  "checked prop: 1 sorts, 2 terms, 4 axioms, 1 theorems",
		},
		{
			query:   "AXIOMS prop",
			listing: propListing,
		},
		{
			// Re-checking under the same name replaces the environment.
			stmt: `CHECK prop "` + proofB64 + `"`,
			ack:  "checked prop: 1 sorts, 2 terms, 4 axioms, 1 theorems",
		},
		{
			stmt:  `CHECK junk "` + junkB64 + `"`,
			error: "proof check failed for junk: mmb: bad magic 0x78787878",
		},
		{
			stmt:  `CHECK bad "!!!"`,
			error: "validation error: bad base64 in proof file: illegal base64 data at input byte 0",
		},
		{
			stmt:  "DROP missing",
			error: "no such environment: missing",
		},
		{
			stmt: "DROP prop",
			ack:  "dropped prop",
		},
		{
			query: "AXIOMS prop",
			error: "no such environment: prop",
		},
	})
	defer server.Close()
}

func TestGetAndList(t *testing.T) {
	server, client, err := NewTestServer()
	require.NoError(t, err)
	defer server.Close()
	defer client.Close()

	proof, err := mmb.PropCalc()
	require.NoError(t, err)

	ack, err := client.CheckProof("prop", proof, mm0.PropCalcSource)
	require.NoError(t, err)
	assert.Equal(t, "checked prop: 1 sorts, 2 terms, 4 axioms, 1 theorems", ack)

	res, err := client.Query("GET prop")
	require.NoError(t, err)
	require.NotNil(t, res.Env)
	assert.Equal(t, "prop", res.Env.Name)
	assert.Equal(t, 1, res.Env.Sorts)
	assert.Equal(t, 2, res.Env.Terms)
	assert.Equal(t, 4, res.Env.Axioms)
	assert.Equal(t, 1, res.Env.Theorems)
	assert.Equal(t, len(proof), res.Env.ProofBytes)
	assert.True(t, res.Env.HasSpec)
	assert.NotEmpty(t, res.Env.ID)

	_, err = client.CheckProof("prop2", proof, "")
	require.NoError(t, err)

	res, err = client.Query("LIST")
	require.NoError(t, err)
	require.Len(t, res.Envs, 2)
	assert.Equal(t, "prop", res.Envs[0].Name)
	assert.Equal(t, "prop2", res.Envs[1].Name)
	assert.False(t, res.Envs[1].HasSpec)

	_, err = client.Query("GET missing")
	require.EqualError(t, err, "no such environment: missing")
}

func TestAxiomsStructured(t *testing.T) {
	server, client, err := NewTestServer()
	require.NoError(t, err)
	defer server.Close()
	defer client.Close()

	proof, err := mmb.PropCalc()
	require.NoError(t, err)
	_, err = client.CheckProof("prop", proof, "")
	require.NoError(t, err)

	res, err := client.Query("AXIOMS prop")
	require.NoError(t, err)

	want := []AssertInfo{
		{Name: "ax_1", Kind: "axiom", Concl: "(im v0 (im v1 v0))", Binders: 2},
		{Name: "ax_2", Kind: "axiom", Concl: "(im (im v0 (im v1 v2)) (im (im v0 v1) (im v0 v2)))", Binders: 3},
		{Name: "ax_3", Kind: "axiom", Concl: "(im (im (not v0) (not v1)) (im v1 v0))", Binders: 2},
		{Name: "ax_mp", Kind: "axiom", Hyps: []string{"v0", "(im v0 v1)"}, Concl: "v1", Binders: 2},
		{Name: "id", Kind: "theorem", Concl: "(im v0 v0)", Binders: 1},
	}
	if diff := cmp.Diff(want, res.Asserts); diff != "" {
		t.Fatalf("axioms mismatch (-want +got):\n%s", diff)
	}
}

func TestSpecMismatch(t *testing.T) {
	server, client, err := NewTestServer()
	require.NoError(t, err)
	defer server.Close()
	defer client.Close()

	proof, err := mmb.PropCalc()
	require.NoError(t, err)

	// A declaration file with an extra axiom the proof file doesn't have.
	badSpec := mm0.PropCalcSource + "\naxiom ax_4: $ a -> a $;\n"
	_, err = client.CheckProof("prop", proof, badSpec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proof file for prop does not match its declaration file")

	// The failed check must not have stored anything.
	_, err = client.Query("GET prop")
	require.EqualError(t, err, "no such environment: prop")
}

// TestRestart tests that stored environments survive a process restart.
func TestRestart(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "test.data")

	// Check, shutdown.
	db, err := NewDatabase(dataFile)
	require.NoError(t, err)

	proof, err := mmb.PropCalc()
	require.NoError(t, err)
	_, err = db.CheckProof("prop", proof, mm0.PropCalcSource)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Start 'er back up again and see if our environment is still there.
	db2, err := NewDatabase(dataFile)
	require.NoError(t, err)
	defer db2.Close()

	info, err := db2.GetEnv("prop")
	require.NoError(t, err)
	assert.True(t, info.HasSpec)

	f, env, err := db2.LoadEnv("prop")
	require.NoError(t, err)
	assert.Equal(t, propListing, DescribeEnv(f, env))
}

func TestWatch(t *testing.T) {
	server, client, err := NewTestServer()
	require.NoError(t, err)
	defer server.Close()
	defer client.Close()

	watchCh, err := client.Watch("WATCH prop")
	require.NoError(t, err)

	proof, err := mmb.PropCalc()
	require.NoError(t, err)

	// The env_update is pushed before the CHECK ack, so read it while the
	// CHECK round trip is in flight.
	ackCh := make(chan error, 1)
	go func() {
		_, err := client.CheckProof("prop", proof, "")
		ackCh <- err
	}()

	update := <-watchCh.Updates
	require.Equal(t, EnvUpdateMessage, update.Type)
	require.NotNil(t, update.EnvUpdateMessage)
	assert.Equal(t, EnvChecked, update.EnvUpdateMessage.Action)
	assert.Equal(t, "prop", update.EnvUpdateMessage.Env.Name)
	require.NoError(t, <-ackCh)

	go func() {
		_, err := client.Exec("DROP prop")
		ackCh <- err
	}()

	update = <-watchCh.Updates
	require.Equal(t, EnvUpdateMessage, update.Type)
	assert.Equal(t, EnvDropped, update.EnvUpdateMessage.Action)
	assert.Equal(t, "prop", update.EnvUpdateMessage.Env.Name)
	require.NoError(t, <-ackCh)

	// A watcher on another name stays quiet; the all-envs watcher fires.
	otherCh, err := client.Watch("WATCH other")
	require.NoError(t, err)
	allCh, err := client.Watch("WATCH")
	require.NoError(t, err)

	go func() {
		_, err := client.CheckProof("prop", proof, "")
		ackCh <- err
	}()

	// The two watchers are notified in no particular order; read both
	// concurrently.
	updates := make(chan *MessageToClient, 2)
	go func() { updates <- <-watchCh.Updates }()
	go func() { updates <- <-allCh.Updates }()
	for i := 0; i < 2; i++ {
		update = <-updates
		require.Equal(t, EnvUpdateMessage, update.Type)
		assert.Equal(t, EnvChecked, update.EnvUpdateMessage.Action)
	}
	require.NoError(t, <-ackCh)

	select {
	case update := <-otherCh.Updates:
		t.Fatalf("unexpected update for other: %+v", update)
	default:
	}
}
