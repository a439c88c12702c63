package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/reservewatch/ledger/internal/seal"
	"github.com/reservewatch/ledger/models"
)

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore persists the ledger in an insert-only table. Per-tenant append
// ordering is enforced with a per-tenant advisory lock plus a monotonic seq
// column; the unique (tenant_id, seq) constraint backstops both.
type PostgresStore struct {
	db     *sql.DB
	sealer *seal.Sealer
}

// NewPostgresStore opens the connection, pings it, and creates the ledger
// table if it does not exist yet.
func NewPostgresStore(params ConnectionParams, sealer *seal.Sealer) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db, sealer: sealer}, nil
}

func createTables(db *sql.DB) error {
	// No UPDATE or DELETE is ever issued against this table.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS forecast_ledger (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			artifact JSONB NOT NULL,
			content_hash TEXT NOT NULL,
			signature TEXT NOT NULL,
			signed_at TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, seq)
		)
	`)
	return err
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Append seals the artifact and inserts it with the next per-tenant sequence
// number. The transactional advisory lock serializes concurrent appends for
// the same tenant; appends for different tenants do not contend.
func (s *PostgresStore) Append(ctx context.Context, tenantID string, artifact models.ProjectionArtifact) (models.SealedRecord, error) {
	rec, err := s.sealer.Seal(tenantID, artifact)
	if err != nil {
		return models.SealedRecord{}, err
	}

	artifactJSON, err := json.Marshal(rec.Artifact)
	if err != nil {
		return models.SealedRecord{}, fmt.Errorf("marshal artifact: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.SealedRecord{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tenantID); err != nil {
		return models.SealedRecord{}, fmt.Errorf("acquire tenant lock: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forecast_ledger (id, tenant_id, seq, artifact, content_hash, signature, signed_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6
		FROM forecast_ledger WHERE tenant_id = $2
	`, rec.ID, tenantID, artifactJSON, rec.Integrity.Hash, rec.Signature, rec.Integrity.SignedAt)
	if err != nil {
		return models.SealedRecord{}, fmt.Errorf("append record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.SealedRecord{}, err
	}
	return rec, nil
}

// GetHistory returns up to limit most-recent records, newest first, verifying
// each against the current key set.
func (s *PostgresStore) GetHistory(ctx context.Context, tenantID string, limit int) ([]models.VerifiedRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, artifact, content_hash, signature, signed_at
		FROM forecast_ledger
		WHERE tenant_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.VerifiedRecord, 0, limit)
	for rows.Next() {
		var (
			rec          models.SealedRecord
			artifactJSON []byte
		)
		rec.TenantID = tenantID
		if err := rows.Scan(&rec.ID, &artifactJSON, &rec.Integrity.Hash, &rec.Signature, &rec.Integrity.SignedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(artifactJSON, &rec.Artifact); err != nil {
			return nil, fmt.Errorf("unmarshal artifact %s: %w", rec.ID, err)
		}
		out = append(out, models.VerifiedRecord{
			Record:       rec,
			Verification: s.sealer.Verify(rec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
