package models

import "context"

// Store is the append-only ledger of sealed forecasts. Append is the only
// mutation; records are never updated or removed.
type Store interface {
	Append(ctx context.Context, tenantID string, artifact ProjectionArtifact) (SealedRecord, error)
	GetHistory(ctx context.Context, tenantID string, limit int) ([]VerifiedRecord, error)
}

// ForecastEngine serves the live forecast for a tenant.
type ForecastEngine interface {
	CurrentForecast(ctx context.Context, tenantID string) (*CurrentForecast, error)
}

// GroundTruthProvider supplies a tenant's current risk state on demand.
type GroundTruthProvider interface {
	Snapshot(ctx context.Context, tenantID string) (GroundTruthSnapshot, error)
}

// TenantDirectory lists every tenant known to the platform.
type TenantDirectory interface {
	ListTenants(ctx context.Context) ([]string, error)
}
