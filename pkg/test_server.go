package mmcheck

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"

	"github.com/phayes/freeport"

	"mmcheck/pkg/util"
)

func NewTestServer() (*Server, *Client, error) {
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		return nil, nil, err
	}
	defer os.RemoveAll(dir)

	port, err := freeport.GetFreePort()
	if err != nil {
		return nil, nil, err
	}

	server, err := NewServer(dir+"/test.data", "localhost", port)
	if err != nil {
		return nil, nil, err
	}
	// Bind before handing out the URL so the client can't dial a port
	// nobody is listening on yet.
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, nil, err
	}
	go func() {
		err := server.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	url := fmt.Sprintf("ws://localhost:%d/ws", port)
	client, err := NewClient(url)
	if err != nil {
		return nil, nil, err
	}

	return server, client, nil
}

// stmt => expect error or ack
// query => expect error or listing
type simpleTestStmt struct {
	stmt  string
	query string

	ack     string
	error   string
	listing string
}

type testServerRef struct {
	server *Server
	client *Client
}

func (tsr *testServerRef) Close() {
	tsr.server.Close()
	tsr.client.Close()
}

// runSimpleTestScript spins up a test server and runs statements on it,
// checking each result. It doesn't support watchers; only initial results
// are checked.
func runSimpleTestScript(t *testing.T, cases []simpleTestStmt) *testServerRef {
	server, client, err := NewTestServer()
	if err != nil {
		t.Fatal(err)
	}

	for idx, testCase := range cases {
		// Run a statement.
		if testCase.stmt != "" {
			result, err := client.Exec(testCase.stmt)
			if util.AssertError(t, idx, testCase.error, err) {
				continue
			}
			if result != testCase.ack {
				t.Fatalf(`case %d: expected ack "%s"; got "%s"`, idx, testCase.ack, result)
			}
			continue
		}
		// Run a query.
		if testCase.query != "" {
			res, err := client.Query(testCase.query)
			if util.AssertError(t, idx, testCase.error, err) {
				continue
			}
			if res.Listing != testCase.listing {
				t.Fatalf("case %d: expected:\n%s\ngot:\n%s", idx, testCase.listing, res.Listing)
			}
		}
	}

	return &testServerRef{
		server: server,
		client: client,
	}
}
