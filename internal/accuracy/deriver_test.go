package accuracy

import (
	"testing"
	"time"

	"github.com/reservewatch/ledger/models"
)

func record(tier models.RiskTier, trend models.Trend, reserveBps int, version string) models.VerifiedRecord {
	return models.VerifiedRecord{
		Record: models.SealedRecord{
			ID: "rec-" + version,
			Artifact: models.ProjectionArtifact{
				ProjectedAt:             time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
				ProjectedTier:           tier,
				ProjectedTrend:          trend,
				ProjectedReserveRateBps: reserveBps,
				ModelVersion:            version,
			},
		},
		Verification: models.VerificationResult{Valid: true, Reason: models.VerifyOK},
	}
}

func TestDeriveInsufficientHistory(t *testing.T) {
	truth := models.GroundTruthSnapshot{TenantID: "acct_1", CurrentRiskTier: models.TierLow, Trend: models.TrendStable}

	tests := []struct {
		name    string
		history []models.VerifiedRecord
	}{
		{"empty history", nil},
		{"single record", []models.VerifiedRecord{record(models.TierLow, models.TrendStable, 100, "v1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Derive(tt.history, truth)
			if len(set.Records) != 0 {
				t.Errorf("Derive() returned %d records, want 0", len(set.Records))
			}
			if set.Evaluated != 0 {
				t.Errorf("Derive() evaluated %d, want 0", set.Evaluated)
			}
		})
	}
}

func TestDeriveGrading(t *testing.T) {
	truth := models.GroundTruthSnapshot{
		TenantID:              "acct_1",
		CurrentRiskTier:       models.TierElevated,
		Trend:                 models.TrendDeteriorating,
		CurrentReserveRateBps: 300,
	}

	history := []models.VerifiedRecord{
		record(models.TierElevated, models.TrendDeteriorating, 350, "v1"), // both right, overestimated
		record(models.TierHigh, models.TrendDeteriorating, 250, "v1"),     // tier wrong, underestimated
		record(models.TierElevated, models.TrendStable, 300, "v2"),        // trend wrong, exact
	}

	set := Derive(history, truth)

	if set.Evaluated != 3 {
		t.Fatalf("Evaluated = %d, want 3", set.Evaluated)
	}
	if set.TierCorrect != 2 {
		t.Errorf("TierCorrect = %d, want 2", set.TierCorrect)
	}
	if set.TrendCorrect != 2 {
		t.Errorf("TrendCorrect = %d, want 2", set.TrendCorrect)
	}

	wantVariance := []int{50, -50, 0}
	for i, want := range wantVariance {
		if got := set.Records[i].ReserveRateVarianceBps; got != want {
			t.Errorf("record %d variance = %d, want %d", i, got, want)
		}
	}
}

func TestDeriveIgnoresVerificationStatus(t *testing.T) {
	truth := models.GroundTruthSnapshot{TenantID: "acct_1", CurrentRiskTier: models.TierLow, Trend: models.TrendStable}

	flagged := record(models.TierLow, models.TrendStable, 100, "v1")
	flagged.Verification = models.VerificationResult{Valid: false, Reason: models.VerifyHashMismatch}

	set := Derive([]models.VerifiedRecord{flagged, record(models.TierLow, models.TrendStable, 110, "v1")}, truth)

	if set.Evaluated != 2 {
		t.Errorf("Evaluated = %d, want 2 (tamper-flagged records still graded)", set.Evaluated)
	}
}
