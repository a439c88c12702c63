package seal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservewatch/ledger/models"
)

func testArtifact() models.ProjectionArtifact {
	return models.ProjectionArtifact{
		ProjectedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		WriteReason: models.WriteReasonScheduled,
		InputSnapshot: models.InputSnapshot{
			ObservedTier:    models.TierElevated,
			ObservedTrend:   models.TrendStable,
			DisputeVelocity: 0.4,
			ExposureVolume:  125000,
		},
		AppliedConstants: models.ModelConstants{
			Version:            "rc-2026.02",
			ReserveFloorBps:    50,
			TierEscalationRate: 1.4,
			DecayHalfLifeDays:  30,
		},
		WindowOutputs: []models.HorizonOutput{
			{HorizonDays: 30, ProjectedExposure: 8200, ConfidenceLow: 6100, ConfidenceHigh: 10400},
			{HorizonDays: 90, ProjectedExposure: 21500, ConfidenceLow: 14000, ConfidenceHigh: 30000},
		},
		ProjectedTier:           models.TierElevated,
		ProjectedTrend:          models.TrendStable,
		ProjectedReserveRateBps: 325,
		InstabilitySignal:       0.12,
		ModelVersion:            "v3",
	}
}

func TestSealVerifyRoundTrip(t *testing.T) {
	s, err := New("test-master-secret", "")
	require.NoError(t, err)

	rec, err := s.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "acct_1", rec.TenantID)
	assert.Len(t, rec.Integrity.Hash, 64)
	assert.Len(t, rec.Signature, 64)
	assert.False(t, rec.Integrity.SignedAt.IsZero())

	res := s.Verify(rec)
	assert.True(t, res.Valid)
	assert.Equal(t, models.VerifyOK, res.Reason)
}

func TestVerifyDetectsArtifactTampering(t *testing.T) {
	s, err := New("test-master-secret", "")
	require.NoError(t, err)

	rec, err := s.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	rec.Artifact.ProjectedReserveRateBps++

	res := s.Verify(rec)
	assert.False(t, res.Valid)
	assert.Equal(t, models.VerifyHashMismatch, res.Reason)
}

func TestVerifyDetectsHashTampering(t *testing.T) {
	s, err := New("test-master-secret", "")
	require.NoError(t, err)

	rec, err := s.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	// Flip one hex digit of the stored hash.
	mutated := []byte(rec.Integrity.Hash)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	rec.Integrity.Hash = string(mutated)

	res := s.Verify(rec)
	assert.False(t, res.Valid)
	assert.Equal(t, models.VerifyHashMismatch, res.Reason)
}

func TestVerifyDetectsSignatureTampering(t *testing.T) {
	s, err := New("test-master-secret", "")
	require.NoError(t, err)

	rec, err := s.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	mutated := []byte(rec.Signature)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	rec.Signature = string(mutated)

	res := s.Verify(rec)
	assert.False(t, res.Valid)
	assert.Equal(t, models.VerifySignatureMismatch, res.Reason)
}

func TestVerifyWrongKeyIsSignatureMismatch(t *testing.T) {
	signer, err := New("old-secret", "")
	require.NoError(t, err)
	rec, err := signer.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	verifier, err := New("new-secret", "")
	require.NoError(t, err)

	res := verifier.Verify(rec)
	assert.False(t, res.Valid)
	assert.Equal(t, models.VerifySignatureMismatch, res.Reason)
}

func TestVerifyAcceptsPreviousKeyAfterRotation(t *testing.T) {
	signer, err := New("old-secret", "")
	require.NoError(t, err)
	rec, err := signer.Seal("acct_1", testArtifact())
	require.NoError(t, err)

	rotated, err := New("new-secret", "old-secret")
	require.NoError(t, err)

	res := rotated.Verify(rec)
	assert.True(t, res.Valid)
	assert.Equal(t, models.VerifyOK, res.Reason)

	// And records sealed under the new secret verify too.
	fresh, err := rotated.Seal("acct_1", testArtifact())
	require.NoError(t, err)
	assert.True(t, rotated.Verify(fresh).Valid)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("", "")
	assert.Error(t, err)
}
