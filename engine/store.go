package engine

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/capscript/compiler/hash"
	"github.com/chazu/capscript/vm"
)

// ErrProgramNotFound indicates the store holds no program for a source.
var ErrProgramNotFound = errors.New("program not found")

var storeLog = commonlog.GetLogger("capscript.store")

// StoredProgram is one row of the program store.
type StoredProgram struct {
	SourceKey   hash.Key
	Source      string
	Pipeline    string
	ASTHash     hash.Key
	ProgramHash hash.Key
	Program     *vm.Program
	CreatedAt   time.Time
}

// Store persists compiled programs in SQLite, keyed by the hash of the exact
// source text and the optimizer pipeline that produced the program. It backs
// the in-memory Cache across process restarts.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenStore opens (creating if needed) the program store at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		source_key TEXT NOT NULL,
		pipeline TEXT NOT NULL,
		source TEXT NOT NULL,
		ast_hash TEXT NOT NULL,
		program_hash TEXT NOT NULL,
		program BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (source_key, pipeline)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	storeLog.Debugf("opened program store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a compiled program.
func (s *Store) Save(p *StoredProgram) error {
	data, err := vm.MarshalProgram(p.Program)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO programs
			(source_key, pipeline, source, ast_hash, program_hash, program, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SourceKey.Hex(), p.Pipeline, p.Source, p.ASTHash.Hex(), p.ProgramHash.Hex(), data, created.Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

// Load retrieves the program compiled from exactly source by the named
// pipeline. It returns ErrProgramNotFound when there is none.
func (s *Store) Load(source, pipeline string) (*StoredProgram, error) {
	key := hash.SourceKey(source)

	var (
		stored      string
		astHex      string
		programHex  string
		data        []byte
		createdUnix int64
	)
	err := s.db.QueryRow(
		"SELECT source, ast_hash, program_hash, program, created_at FROM programs WHERE source_key = ? AND pipeline = ?",
		key.Hex(), pipeline,
	).Scan(&stored, &astHex, &programHex, &data, &createdUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}
	if stored != source {
		// Hash collision; treat as a miss.
		return nil, ErrProgramNotFound
	}

	program, err := vm.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", key, err)
	}
	astHash, err := parseKey(astHex)
	if err != nil {
		return nil, err
	}
	programHash, err := parseKey(programHex)
	if err != nil {
		return nil, err
	}

	return &StoredProgram{
		SourceKey:   key,
		Source:      stored,
		Pipeline:    pipeline,
		ASTHash:     astHash,
		ProgramHash: programHash,
		Program:     program,
		CreatedAt:   time.Unix(createdUnix, 0),
	}, nil
}

// Count returns the number of stored programs.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM programs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting programs: %w", err)
	}
	return n, nil
}

func parseKey(s string) (hash.Key, error) {
	k, err := hash.ParseKey(s)
	if err != nil {
		return hash.Key{}, fmt.Errorf("corrupt hash %q: %w", s, err)
	}
	return k, nil
}
