package mmcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clog "mmcheck/pkg/log"
)

type Server struct {
	db         *Database
	httpServer *http.Server
}

func NewServer(dataFile string, host string, port int) (*Server, error) {
	database, handler, err := newServerInternal(dataFile)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{Addr: fmt.Sprintf("%s:%d", host, port), Handler: handler}

	return &Server{
		db:         database,
		httpServer: httpServer,
	}, nil
}

func newServerInternal(dataFile string) (*Database, http.Handler, error) {
	// open database
	database, err := NewDatabase(dataFile)
	if err != nil {
		return nil, nil, err
	}
	clog.Base().Info().Str("data_file", dataFile).Msg("opened data file")

	// set up HTTP server
	mux := http.NewServeMux()

	// One-shot check endpoint: POST a raw .mmb file (or a multipart form
	// with "proof" and "spec" files) to store an environment.
	mux.HandleFunc("POST /check/{name}", func(resp http.ResponseWriter, req *http.Request) {
		handleCheckRequest(database, resp, req)
	})

	mux.HandleFunc("GET /envs", func(resp http.ResponseWriter, req *http.Request) {
		infos, err := database.ListEnvs()
		if err != nil {
			http.Error(resp, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Header().Set("Content-Type", "application/json")
		json.NewEncoder(resp).Encode(infos)
	})

	// Serve metrics.
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(database.metrics.registry, promhttp.HandlerOpts{}),
	)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Serve WebSocket endpoint for DB traffic.
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(_ *http.Request) bool { return true }, // TODO: security... only do this in dev mode (...)
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			clog.Base().Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		database.addConnection(conn)
	})

	return database, mux, nil
}

func handleCheckRequest(database *Database, resp http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")

	proof, spec, err := readCheckRequest(req)
	if err != nil {
		http.Error(resp, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := database.CheckProof(name, proof, spec)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if _, ok := err.(*badEnvName); ok {
			status = http.StatusBadRequest
		}
		http.Error(resp, err.Error(), status)
		return
	}

	resp.Header().Set("Content-Type", "application/json")
	json.NewEncoder(resp).Encode(info)
}

func readCheckRequest(req *http.Request) (proof []byte, spec string, err error) {
	defer req.Body.Close()

	mediaType := req.Header.Get("Content-Type")
	if strings.HasPrefix(mediaType, "multipart/form-data") {
		if err := req.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", err
		}
		proofFile, _, err := req.FormFile("proof")
		if err != nil {
			return nil, "", fmt.Errorf("multipart form needs a \"proof\" file: %v", err)
		}
		defer proofFile.Close()
		proof, err = io.ReadAll(proofFile)
		if err != nil {
			return nil, "", err
		}
		if specFile, _, err := req.FormFile("spec"); err == nil {
			defer specFile.Close()
			specBytes, err := io.ReadAll(specFile)
			if err != nil {
				return nil, "", err
			}
			spec = string(specBytes)
		}
		return proof, spec, nil
	}

	proof, err = io.ReadAll(req.Body)
	return proof, "", err
}

// DB exposes the underlying database, e.g. for directory watching.
func (s *Server) DB() *Database {
	return s.db
}

func (s *Server) ListenAndServe() error {
	clog.Base().Info().Str("addr", s.httpServer.Addr).Msg("serving HTTP")
	return s.httpServer.ListenAndServe()
}

// Serve serves HTTP on an already bound listener.
func (s *Server) Serve(ln net.Listener) error {
	clog.Base().Info().Str("addr", ln.Addr().String()).Msg("serving HTTP")
	return s.httpServer.Serve(ln)
}

func (s *Server) Close() error {
	clog.Base().Info().Msg("closing storage layer")
	if err := s.db.Close(); err != nil {
		return err
	}
	clog.Base().Info().Msg("closing http server")
	if err := s.httpServer.Close(); err != nil {
		return err
	}
	return nil
}
