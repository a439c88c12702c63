package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservewatch/ledger/internal/canonical"
	"github.com/reservewatch/ledger/internal/ledger"
	"github.com/reservewatch/ledger/internal/seal"
	"github.com/reservewatch/ledger/models"
)

type staticTruth models.GroundTruthSnapshot

func (s staticTruth) Snapshot(_ context.Context, _ string) (models.GroundTruthSnapshot, error) {
	return models.GroundTruthSnapshot(s), nil
}

func TestCompose(t *testing.T) {
	sealer, err := seal.New("report-test-secret", "")
	require.NoError(t, err)
	store := ledger.NewMemoryStore(sealer)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, "acct_1", models.ProjectionArtifact{
			ProjectedAt:             time.Date(2026, 2, 1, 0, i, 0, 0, time.UTC),
			ProjectedTier:           models.TierHigh,
			ProjectedTrend:          models.TrendDeteriorating,
			ProjectedReserveRateBps: 400 + i,
			ModelVersion:            "v2",
		})
		require.NoError(t, err)
	}

	truth := staticTruth{
		TenantID:              "acct_1",
		CurrentRiskTier:       models.TierHigh,
		Trend:                 models.TrendDeteriorating,
		CurrentReserveRateBps: 380,
	}

	forecast := &models.CurrentForecast{
		Artifact: models.ProjectionArtifact{
			ProjectedAt:             time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			ProjectedTier:           models.TierHigh,
			ProjectedReserveRateBps: 410,
			ModelVersion:            "v2",
		},
		Interventions: []models.InterventionDelta{
			{Name: "enable_holdback", ProjectedReserveRateBps: 290, ExposureDelta: -3000},
		},
	}

	rep, err := NewComposer(store, truth).Compose(ctx, "acct_1", forecast)
	require.NoError(t, err)

	assert.Equal(t, "acct_1", rep.TenantID)
	assert.Same(t, forecast, rep.Forecast)
	require.Len(t, rep.Ledger, 3)
	// Newest first in the excerpt.
	assert.Equal(t, 402, rep.Ledger[0].Record.Artifact.ProjectedReserveRateBps)
	for _, vr := range rep.Ledger {
		assert.True(t, vr.Verification.Valid)
	}

	assert.Equal(t, 3, rep.Accuracy.Evaluated)
	assert.Equal(t, 3, rep.Accuracy.TierCorrect)

	// The recipient can independently recompute the integrity declaration.
	want, err := canonical.Hash(integritySubject{
		Forecast:    rep.Forecast,
		Accuracy:    rep.Accuracy,
		GeneratedAt: rep.GeneratedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, want, rep.IntegrityHash)
}

func TestComposeThinHistoryHasEmptyAccuracy(t *testing.T) {
	sealer, err := seal.New("report-test-secret", "")
	require.NoError(t, err)
	store := ledger.NewMemoryStore(sealer)
	ctx := context.Background()

	_, err = store.Append(ctx, "acct_1", models.ProjectionArtifact{
		ProjectedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ProjectedTier: models.TierLow,
		ModelVersion:  "v1",
	})
	require.NoError(t, err)

	rep, err := NewComposer(store, staticTruth{TenantID: "acct_1"}).Compose(ctx, "acct_1", nil)
	require.NoError(t, err)

	assert.Len(t, rep.Ledger, 1)
	assert.Empty(t, rep.Accuracy.Records)
	assert.NotEmpty(t, rep.IntegrityHash)
}

func TestComposeRecomputesEachCall(t *testing.T) {
	sealer, err := seal.New("report-test-secret", "")
	require.NoError(t, err)
	store := ledger.NewMemoryStore(sealer)
	ctx := context.Background()
	composer := NewComposer(store, staticTruth{TenantID: "acct_1", CurrentRiskTier: models.TierLow})

	first, err := composer.Compose(ctx, "acct_1", nil)
	require.NoError(t, err)
	assert.Empty(t, first.Ledger)

	for i := 0; i < 2; i++ {
		_, err := store.Append(ctx, "acct_1", models.ProjectionArtifact{
			ProjectedAt:   time.Date(2026, 2, 1, 0, i, 0, 0, time.UTC),
			ProjectedTier: models.TierLow,
			ModelVersion:  "v1",
		})
		require.NoError(t, err)
	}

	second, err := composer.Compose(ctx, "acct_1", nil)
	require.NoError(t, err)
	assert.Len(t, second.Ledger, 2)
	assert.Equal(t, 2, second.Accuracy.Evaluated)
}
