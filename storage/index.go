package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/luca-patrignani/monopoly-replica/ledger"
)

// Commit is one row of the commit index.
type Commit struct {
	Replica     string
	Index       int
	Hash        string
	PrevHash    string
	Phase       string
	Clock       uint64
	Message     string
	Path        string
	CommittedAt time.Time
}

type index struct {
	db   *sql.DB
	once sync.Once
}

func openIndex(path string) (*index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commits (
			replica TEXT NOT NULL,
			idx INTEGER NOT NULL,
			hash TEXT NOT NULL,
			prev_hash TEXT NOT NULL,
			phase TEXT NOT NULL,
			clock INTEGER NOT NULL,
			message TEXT NOT NULL,
			path TEXT NOT NULL,
			committed_at TEXT NOT NULL,
			PRIMARY KEY (replica, idx)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (ix *index) meta(key string) (string, bool, error) {
	var v string
	err := ix.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (ix *index) setMeta(key, value string) error {
	_, err := ix.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (ix *index) record(b ledger.Block, path string) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO commits (replica, idx, hash, prev_hash, phase, clock, message, path, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Replica,
		b.Index,
		b.Hash,
		b.PrevHash,
		string(b.State.Phase),
		int64(b.State.Clock),
		b.Message,
		path,
		time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("index block %d of %s: %w", b.Index, b.Replica, err)
	}
	return nil
}

func (ix *index) commits(replica string) ([]Commit, error) {
	rows, err := ix.db.Query(
		`SELECT replica, idx, hash, prev_hash, phase, clock, message, path, committed_at
		 FROM commits WHERE replica = ? ORDER BY idx`, replica)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Commit
	for rows.Next() {
		var (
			c     Commit
			clock int64
			at    string
		)
		if err := rows.Scan(&c.Replica, &c.Index, &c.Hash, &c.PrevHash, &c.Phase, &clock, &c.Message, &c.Path, &at); err != nil {
			return nil, err
		}
		c.Clock = uint64(clock)
		if c.CommittedAt, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (ix *index) replicas() ([]string, error) {
	rows, err := ix.db.Query(`SELECT DISTINCT replica FROM commits ORDER BY replica`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (ix *index) close() error {
	var err error
	ix.once.Do(func() {
		err = ix.db.Close()
	})
	return err
}
