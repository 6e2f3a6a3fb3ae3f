package mmcheck

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"mmcheck/pkg/mm0"
	"mmcheck/pkg/mmb"
)

var (
	envsBucket   = []byte("envs")
	proofsBucket = []byte("proofs")
	specsBucket  = []byte("specs")

	envNameRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)
)

// EnvInfo is the stored metadata for a checked environment.
type EnvInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CheckedAt  time.Time `json:"checked_at"`
	Sorts      int       `json:"sorts"`
	Terms      int       `json:"terms"`
	Axioms     int       `json:"axioms"`
	Theorems   int       `json:"theorems"`
	ProofBytes int       `json:"proof_bytes"`
	HasSpec    bool      `json:"has_spec"`
}

type Database struct {
	boltDB           *bolt.DB
	mu               sync.Mutex
	connections      map[connectionID]*connection
	nextConnectionID int
	watchers         *watcherSet

	ctx     context.Context
	metrics *metrics
}

func NewDatabase(dataFile string) (*Database, error) {
	boltDB, openErr := bolt.Open(dataFile, 0600, nil)
	if openErr != nil {
		return nil, openErr
	}

	err := boltDB.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{envsBucket, proofsBucket, specsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		boltDB.Close()
		return nil, err
	}

	database := &Database{
		boltDB:           boltDB,
		connections:      make(map[connectionID]*connection),
		nextConnectionID: 0,
		watchers:         newWatcherSet(),
		ctx:              context.Background(),
	}
	database.metrics = newMetrics(database)

	return database, nil
}

// addConnection connects a websocket to the database, s.t. the database
// will interact with the connection.
func (db *Database) addConnection(wsConn *websocket.Conn) {
	db.mu.Lock()
	conn := newConnection(wsConn, db, db.nextConnectionID)
	db.nextConnectionID++
	db.connections[conn.id] = conn
	db.mu.Unlock()
	conn.handleStatements()
}

func (db *Database) removeConn(conn *connection) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.connections, conn.id)
	db.watchers.removeWatchersForConn(conn.id)
	close(conn.done)
}

func (db *Database) Close() error {
	return db.boltDB.Close()
}

func (db *Database) validateStatement(statement *Statement) error {
	switch {
	case statement.Check != nil:
		return db.validateCheck(statement.Check)
	case statement.Get != nil:
		return validateEnvName(statement.Get.Name)
	case statement.Axioms != nil:
		return validateEnvName(statement.Axioms.Name)
	case statement.Drop != nil:
		return validateEnvName(statement.Drop.Name)
	case statement.Watch != nil:
		if statement.Watch.Name != nil {
			return validateEnvName(*statement.Watch.Name)
		}
		return nil
	case statement.List != nil:
		return nil
	}
	return errors.New("unknown statement type")
}

func (db *Database) validateCheck(check *Check) error {
	if err := validateEnvName(check.Name); err != nil {
		return err
	}
	if _, err := decodeBase64("proof file", check.Proof); err != nil {
		return err
	}
	if check.Spec != nil {
		if _, err := decodeBase64("declaration file", *check.Spec); err != nil {
			return err
		}
	}
	return nil
}

func validateEnvName(name string) error {
	if !envNameRegexp.MatchString(name) {
		return &badEnvName{Name: name}
	}
	return nil
}

// CheckProof verifies an .mmb proof file, optionally matches it against an
// .mm0 declaration file, and stores the environment under the given name.
// A previously stored environment with the same name is replaced.
func (db *Database) CheckProof(name string, proof []byte, spec string) (*EnvInfo, error) {
	if err := validateEnvName(name); err != nil {
		return nil, err
	}

	env, err := mmb.Verify(proof)
	if err != nil {
		return nil, &verifyError{Name: name, error: err}
	}
	if spec != "" {
		parsed, err := mm0.ParseSpec(spec)
		if err != nil {
			return nil, &specMismatch{Name: name, error: err}
		}
		if err := mm0.Match(parsed, env); err != nil {
			return nil, &specMismatch{Name: name, error: err}
		}
	}

	info := &EnvInfo{
		ID:         uuid.NewString(),
		Name:       name,
		CheckedAt:  time.Now().UTC(),
		Sorts:      len(env.Sorts),
		Terms:      len(env.Terms),
		ProofBytes: len(proof),
		HasSpec:    spec != "",
	}
	for _, assert := range env.Asserts {
		if assert.Kind == mmb.StmtAxiom {
			info.Axioms++
		} else {
			info.Theorems++
		}
	}

	err = db.boltDB.Update(func(tx *bolt.Tx) error {
		encoded, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := tx.Bucket(envsBucket).Put([]byte(name), encoded); err != nil {
			return err
		}
		if err := tx.Bucket(proofsBucket).Put([]byte(name), proof); err != nil {
			return err
		}
		specsBucketRef := tx.Bucket(specsBucket)
		if spec == "" {
			return specsBucketRef.Delete([]byte(name))
		}
		return specsBucketRef.Put([]byte(name), []byte(spec))
	})
	if err != nil {
		return nil, errors.Wrap(err, "storing environment")
	}

	db.watchers.notify(&EnvUpdate{Action: EnvChecked, Env: info})

	return info, nil
}

// GetEnv returns stored metadata for one environment.
func (db *Database) GetEnv(name string) (*EnvInfo, error) {
	var info *EnvInfo
	err := db.boltDB.View(func(tx *bolt.Tx) error {
		encoded := tx.Bucket(envsBucket).Get([]byte(name))
		if encoded == nil {
			return &noSuchEnv{Name: name}
		}
		info = &EnvInfo{}
		return json.Unmarshal(encoded, info)
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// LoadEnv re-verifies a stored proof file and returns the full environment.
func (db *Database) LoadEnv(name string) (*mmb.File, *mmb.Env, error) {
	var proof []byte
	err := db.boltDB.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(proofsBucket).Get([]byte(name))
		if stored == nil {
			return &noSuchEnv{Name: name}
		}
		proof = make([]byte, len(stored))
		copy(proof, stored)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	f, err := mmb.ParseFile(proof)
	if err != nil {
		return nil, nil, &verifyError{Name: name, error: err}
	}
	env, err := mmb.VerifyFile(f)
	if err != nil {
		return nil, nil, &verifyError{Name: name, error: err}
	}
	return f, env, nil
}

// ListEnvs returns metadata for all stored environments, sorted by name.
func (db *Database) ListEnvs() ([]*EnvInfo, error) {
	var infos []*EnvInfo
	err := db.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(envsBucket).ForEach(func(_ []byte, encoded []byte) error {
			info := &EnvInfo{}
			if err := json.Unmarshal(encoded, info); err != nil {
				return err
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// DropEnv removes a stored environment.
func (db *Database) DropEnv(name string) error {
	var dropped *EnvInfo
	err := db.boltDB.Update(func(tx *bolt.Tx) error {
		encoded := tx.Bucket(envsBucket).Get([]byte(name))
		if encoded == nil {
			return &noSuchEnv{Name: name}
		}
		dropped = &EnvInfo{}
		if err := json.Unmarshal(encoded, dropped); err != nil {
			return err
		}
		if err := tx.Bucket(envsBucket).Delete([]byte(name)); err != nil {
			return err
		}
		if err := tx.Bucket(proofsBucket).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(specsBucket).Delete([]byte(name))
	})
	if err != nil {
		return err
	}

	db.watchers.notify(&EnvUpdate{Action: EnvDropped, Env: dropped})

	return nil
}
