package mmcheck

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmcheck/pkg/mm0"
	"mmcheck/pkg/mmb"
)

func newTestHandler(t *testing.T) (*Database, http.Handler) {
	t.Helper()
	dir, err := os.MkdirTemp("", "")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	database, handler, err := newServerInternal(dir + "/test.data")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return database, handler
}

func TestCheckEndpoint(t *testing.T) {
	_, handler := newTestHandler(t)
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	proof, err := mmb.PropCalc()
	require.NoError(t, err)

	// Raw body.
	resp, err := http.Post(httpServer.URL+"/check/prop", "application/octet-stream", bytes.NewReader(proof))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	info := EnvInfo{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "prop", info.Name)
	assert.Equal(t, 4, info.Axioms)
	assert.False(t, info.HasSpec)

	// Multipart form with proof and spec.
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	proofPart, err := form.CreateFormFile("proof", "prop.mmb")
	require.NoError(t, err)
	_, err = proofPart.Write(proof)
	require.NoError(t, err)
	specPart, err := form.CreateFormFile("spec", "prop.mm0")
	require.NoError(t, err)
	_, err = specPart.Write([]byte(mm0.PropCalcSource))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err = http.Post(httpServer.URL+"/check/prop", form.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info = EnvInfo{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.True(t, info.HasSpec)

	// Bad proof file.
	resp, err = http.Post(httpServer.URL+"/check/junk", "application/octet-stream", bytes.NewReader([]byte("not an mmb file")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Bad name.
	resp, err = http.Post(httpServer.URL+"/check/bad%20name", "application/octet-stream", bytes.NewReader(proof))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Listing.
	resp, err = http.Get(httpServer.URL + "/envs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var infos []EnvInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "prop", infos[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := newTestHandler(t)
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	for _, name := range []string{"next_connection_id", "stored_envs", "check_latency_ns", "go_goroutines"} {
		assert.Contains(t, string(body), name)
	}
}
