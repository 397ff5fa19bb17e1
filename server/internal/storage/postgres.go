package storage

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/minio/blake2b-simd"

	"AESFlow/server/internal/protocol"
)

// DB wraps the database connection and provides the trace archive queries
type DB struct {
	conn *sql.DB
}

// Config contains database connection configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// NewWithConn wraps an already opened connection
func NewWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS cipher_runs (
		id BIGSERIAL PRIMARY KEY,
		fingerprint VARCHAR(64) UNIQUE NOT NULL,
		operation VARCHAR(16) NOT NULL,
		key_bits INT NOT NULL,
		iv VARCHAR(32) NOT NULL,
		ciphertext TEXT NOT NULL,
		padded_length INT NOT NULL,
		final_result TEXT NOT NULL,
		trace JSONB NOT NULL,
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	);

	ALTER TABLE cipher_runs ADD COLUMN IF NOT EXISTS ciphertext TEXT NOT NULL DEFAULT '';

	CREATE INDEX IF NOT EXISTS idx_cipher_runs_created_at ON cipher_runs(created_at DESC);
	`

// InitSchema creates the archive table
func (db *DB) InitSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schema)
	return err
}

// Fingerprint identifies a run by the public inputs of the call: operation,
// key size, IV and ciphertext. Two archived runs with the same fingerprint
// are the same run.
func Fingerprint(op protocol.Operation, keyBits int, ivHex, ciphertextHex string) (string, error) {
	h, err := blake2b.New(&blake2b.Config{Size: 32})
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00%s", op, keyBits, ivHex, ciphertextHex)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveRun archives a traced run and returns its ID. Saving the same run
// twice returns the existing ID.
func (db *DB) SaveRun(ctx context.Context, run *protocol.Run) (int64, error) {
	fp, err := Fingerprint(run.Operation, run.KeyBits, run.IVHex, run.CiphertextHex)
	if err != nil {
		return 0, err
	}

	traceJSON, err := json.Marshal(run.Trace)
	if err != nil {
		return 0, fmt.Errorf("failed to encode trace: %w", err)
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO cipher_runs (fingerprint, operation, key_bits, iv, ciphertext, padded_length, final_result, trace)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (fingerprint) DO UPDATE SET fingerprint = EXCLUDED.fingerprint
		RETURNING id`,
		fp, string(run.Operation), run.KeyBits, run.IVHex, run.CiphertextHex, run.PaddedLength, run.FinalResult, traceJSON,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	run.ID = id
	run.Fingerprint = fp
	return id, nil
}

// GetRun retrieves an archived run by ID, or nil if it does not exist
func (db *DB) GetRun(ctx context.Context, id int64) (*protocol.Run, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, fingerprint, operation, key_bits, iv, ciphertext, padded_length, final_result, trace, created_at
		FROM cipher_runs WHERE id = $1`,
		id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*protocol.Run, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, fingerprint, operation, key_bits, iv, ciphertext, padded_length, final_result, trace, created_at
		FROM cipher_runs ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*protocol.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*protocol.Run, error) {
	var (
		run       protocol.Run
		operation string
		traceJSON []byte
	)

	err := s.Scan(&run.ID, &run.Fingerprint, &operation, &run.KeyBits, &run.IVHex,
		&run.CiphertextHex, &run.PaddedLength, &run.FinalResult, &traceJSON, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Operation = protocol.Operation(operation)

	if len(traceJSON) > 0 {
		run.Trace = &protocol.StepTrace{}
		if err := json.Unmarshal(traceJSON, run.Trace); err != nil {
			return nil, fmt.Errorf("failed to decode trace for run %d: %w", run.ID, err)
		}
	}
	return &run, nil
}
