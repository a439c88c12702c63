// Package groundtruth supplies the tenant risk state the accuracy deriver
// grades against, and the directory of tenants the aggregator fans out over.
// Nothing in this package is owned by the ledger core; it is the concrete
// edge of the "tenant store" collaborator.
package groundtruth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

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

// ErrUnknownTenant is returned when no risk state exists for a tenant.
var ErrUnknownTenant = errors.New("groundtruth: unknown tenant")

// RiskStateStore reads and writes current tenant risk state in Postgres.
// It implements both models.GroundTruthProvider and models.TenantDirectory.
type RiskStateStore struct {
	db *sql.DB
}

// NewRiskStateStore connects, pings, and creates the risk-state table if it
// does not exist.
func NewRiskStateStore(params ConnectionParams) (*RiskStateStore, error) {
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

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tenant_risk_state (
			tenant_id TEXT PRIMARY KEY,
			risk_tier TEXT NOT NULL,
			trend TEXT NOT NULL,
			tier_delta_last INT NOT NULL DEFAULT 0,
			reserve_rate_bps INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		return nil, err
	}

	return &RiskStateStore{db: db}, nil
}

// NewRiskStateStoreFromDB wraps an existing connection (shared pools, tests).
func NewRiskStateStoreFromDB(db *sql.DB) *RiskStateStore {
	return &RiskStateStore{db: db}
}

func (s *RiskStateStore) Close() error {
	return s.db.Close()
}

// Snapshot returns the tenant's current risk state.
func (s *RiskStateStore) Snapshot(ctx context.Context, tenantID string) (models.GroundTruthSnapshot, error) {
	var snap models.GroundTruthSnapshot
	snap.TenantID = tenantID

	err := s.db.QueryRowContext(ctx, `
		SELECT risk_tier, trend, tier_delta_last, reserve_rate_bps
		FROM tenant_risk_state
		WHERE tenant_id = $1
	`, tenantID).Scan(&snap.CurrentRiskTier, &snap.Trend, &snap.TierDeltaLast, &snap.CurrentReserveRateBps)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.GroundTruthSnapshot{}, fmt.Errorf("%w: %s", ErrUnknownTenant, tenantID)
		}
		return models.GroundTruthSnapshot{}, err
	}
	return snap, nil
}

// Upsert records the tenant's latest observed risk state.
func (s *RiskStateStore) Upsert(ctx context.Context, snap models.GroundTruthSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenant_risk_state (
			tenant_id, risk_tier, trend, tier_delta_last, reserve_rate_bps, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id)
		DO UPDATE SET
			risk_tier = EXCLUDED.risk_tier,
			trend = EXCLUDED.trend,
			tier_delta_last = EXCLUDED.tier_delta_last,
			reserve_rate_bps = EXCLUDED.reserve_rate_bps,
			updated_at = EXCLUDED.updated_at
	`, snap.TenantID, snap.CurrentRiskTier, snap.Trend, snap.TierDeltaLast, snap.CurrentReserveRateBps, time.Now())
	return err
}

// ListTenants returns every tenant with recorded risk state.
func (s *RiskStateStore) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tenant_id FROM tenant_risk_state ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tenants, nil
}
