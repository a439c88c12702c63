package models

import (
	"time"
)

// RiskTier is the closed set of tiers a tenant can be placed in.
type RiskTier string

const (
	TierLow      RiskTier = "LOW"
	TierElevated RiskTier = "ELEVATED"
	TierHigh     RiskTier = "HIGH"
	TierCritical RiskTier = "CRITICAL"
)

// Trend is the closed set of risk trend directions.
type Trend string

const (
	TrendImproving     Trend = "IMPROVING"
	TrendStable        Trend = "STABLE"
	TrendDeteriorating Trend = "DETERIORATING"
)

// WriteReason records why a forecast was written. Provenance only:
// nothing downstream branches on it.
type WriteReason string

const (
	WriteReasonScheduled WriteReason = "SCHEDULED_RECOMPUTE"
	WriteReasonManual    WriteReason = "MANUAL_TRIGGER"
	WriteReasonThreshold WriteReason = "THRESHOLD_CROSSING"
)

// InputSnapshot captures the risk-state inputs the model consumed.
type InputSnapshot struct {
	ObservedTier    RiskTier `json:"observed_tier"`
	ObservedTrend   Trend    `json:"observed_trend"`
	DisputeVelocity float64  `json:"dispute_velocity"`
	ExposureVolume  float64  `json:"exposure_volume"`
}

// ModelConstants are the versioned coefficients a model run was parameterized with.
type ModelConstants struct {
	Version            string  `json:"version"`
	ReserveFloorBps    int     `json:"reserve_floor_bps"`
	TierEscalationRate float64 `json:"tier_escalation_rate"`
	DecayHalfLifeDays  int     `json:"decay_half_life_days"`
}

// HorizonOutput is one projected exposure figure for a single forecast horizon.
type HorizonOutput struct {
	HorizonDays       int     `json:"horizon_days"`
	ProjectedExposure float64 `json:"projected_exposure"`
	ConfidenceLow     float64 `json:"confidence_low"`
	ConfidenceHigh    float64 `json:"confidence_high"`
}

// ProjectionArtifact is one immutable forecast payload as produced by the
// forecast engine. Once written to the ledger it is never mutated.
type ProjectionArtifact struct {
	ProjectedAt             time.Time       `json:"projected_at"`
	WriteReason             WriteReason     `json:"write_reason"`
	InputSnapshot           InputSnapshot   `json:"input_snapshot"`
	AppliedConstants        ModelConstants  `json:"applied_constants"`
	WindowOutputs           []HorizonOutput `json:"window_outputs"`
	ProjectedTier           RiskTier        `json:"projected_tier"`
	ProjectedTrend          Trend           `json:"projected_trend"`
	ProjectedReserveRateBps int             `json:"projected_reserve_rate_bps"`
	InstabilitySignal       float64         `json:"instability_signal"`
	ModelVersion            string          `json:"model_version"`
}

// RecordIntegrity is the seal stamped onto an artifact at write time.
type RecordIntegrity struct {
	Hash     string    `json:"hash"` // hex SHA-256 of the canonical artifact
	SignedAt time.Time `json:"signed_at"`
}

// SealedRecord wraps one artifact together with its seal.
type SealedRecord struct {
	ID        string             `json:"id"`
	TenantID  string             `json:"tenant_id"`
	Artifact  ProjectionArtifact `json:"artifact"`
	Integrity RecordIntegrity    `json:"integrity"`
	Signature string             `json:"signature"` // hex HMAC-SHA256 of the canonical artifact
}

// Verification reason codes.
const (
	VerifyOK                = "OK"
	VerifyHashMismatch      = "HASH_MISMATCH"
	VerifySignatureMismatch = "SIGNATURE_MISMATCH"
)

// VerificationResult is recomputed at read time, never stored. A record that
// fails verification stays visible with the failure flagged.
type VerificationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// VerifiedRecord pairs a stored record with its fresh verification.
type VerifiedRecord struct {
	Record       SealedRecord       `json:"record"`
	Verification VerificationResult `json:"verification"`
}

// GroundTruthSnapshot is the tenant's current, live risk state. It is supplied
// by the tenant store on every derivation call and is never owned here.
type GroundTruthSnapshot struct {
	TenantID              string   `json:"tenant_id"`
	CurrentRiskTier       RiskTier `json:"current_risk_tier"`
	Trend                 Trend    `json:"trend"`
	TierDeltaLast         int      `json:"tier_delta_last"`
	CurrentReserveRateBps int      `json:"current_reserve_rate_bps"`
}

// AccuracyRecord grades one historical forecast against the current ground truth.
// Positive ReserveRateVarianceBps means the forecast overestimated required reserve.
type AccuracyRecord struct {
	RecordID               string    `json:"record_id"`
	ProjectedAt            time.Time `json:"projected_at"`
	TierAccurate           bool      `json:"tier_accurate"`
	TrendAccurate          bool      `json:"trend_accurate"`
	ReserveRateVarianceBps int       `json:"reserve_rate_variance_bps"`
	ModelVersion           string    `json:"model_version"`
}

// AccuracySet is the full grading of one tenant's history. Ephemeral:
// recomputed on every call, never persisted.
type AccuracySet struct {
	TenantID     string           `json:"tenant_id"`
	Records      []AccuracyRecord `json:"records"`
	Evaluated    int              `json:"evaluated"`
	TierCorrect  int              `json:"tier_correct"`
	TrendCorrect int              `json:"trend_correct"`
}

// AggregateAccuracy is the network-wide accuracy figure. Accuracy and variance
// fields stay nil until the significance thresholds are met: noise is never
// presented as signal.
type AggregateAccuracy struct {
	GeneratedAt                time.Time `json:"generated_at"`
	TenantsWithData            int       `json:"tenants_with_data"`
	TotalEvaluations           int       `json:"total_evaluations"`
	MeetsSignificanceThreshold bool      `json:"meets_significance_threshold"`
	TierAccuracy               *float64  `json:"tier_accuracy,omitempty"`
	TrendAccuracy              *float64  `json:"trend_accuracy,omitempty"`
	MeanVarianceBps            *int      `json:"mean_variance_bps,omitempty"`
	MedianVarianceBps          *int      `json:"median_variance_bps,omitempty"`
	StdDevVarianceBps          *int      `json:"std_dev_variance_bps,omitempty"`
	ActiveVersions             []string  `json:"active_versions"`
	VersionStability           bool      `json:"version_stability"`
}

// InterventionDelta is a what-if adjustment the forecast engine attaches to a
/// current forecast (e.g. "enable holdback: reserve rate drops 120bps").
type InterventionDelta struct {
	Name                    string  `json:"name"`
	ProjectedReserveRateBps int     `json:"projected_reserve_rate_bps"`
	ExposureDelta           float64 `json:"exposure_delta"`
}

// CurrentForecast is the live forecast for a tenant as served by the engine,
// together with any intervention deltas it attached.
type CurrentForecast struct {
	Artifact      ProjectionArtifact  `json:"artifact"`
	Interventions []InterventionDelta `json:"interventions,omitempty"`
}

// Report is the point-in-time trust document composed for external
// presentation. IntegrityHash covers {forecast, accuracy, generated_at} so the
// recipient can confirm this report instance was not altered after generation.
type Report struct {
	TenantID      string           `json:"tenant_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Forecast      *CurrentForecast `json:"forecast"`
	Accuracy      AccuracySet      `json:"accuracy"`
	Ledger        []VerifiedRecord `json:"ledger"`
	IntegrityHash string           `json:"integrity_hash"`
}
