// Package accuracy backtests a tenant's ledger history against the tenant's
// current ground truth. Every historical forecast, however old, is graded
// against what is now known to have actually happened; records are never
// compared with each other.
package accuracy

import (
	"github.com/reservewatch/ledger/models"
)

// MinHistory is the floor below which grading is indistinguishable from
// noise. Shorter histories produce an empty record set, not an error.
const MinHistory = 2

// Derive grades every record in history against truth. Grading is independent
// of each record's verification status; callers that want to exclude flagged
// records filter before calling.
func Derive(history []models.VerifiedRecord, truth models.GroundTruthSnapshot) models.AccuracySet {
	set := models.AccuracySet{TenantID: truth.TenantID, Records: []models.AccuracyRecord{}}
	if len(history) < MinHistory {
		return set
	}

	for _, vr := range history {
		art := vr.Record.Artifact
		rec := models.AccuracyRecord{
			RecordID:      vr.Record.ID,
			ProjectedAt:   art.ProjectedAt,
			TierAccurate:  art.ProjectedTier == truth.CurrentRiskTier,
			TrendAccurate: art.ProjectedTrend == truth.Trend,
			// Positive: the forecast overestimated required reserve.
			ReserveRateVarianceBps: art.ProjectedReserveRateBps - truth.CurrentReserveRateBps,
			ModelVersion:           art.ModelVersion,
		}

		set.Records = append(set.Records, rec)
		set.Evaluated++
		if rec.TierAccurate {
			set.TierCorrect++
		}
		if rec.TrendAccurate {
			set.TrendCorrect++
		}
	}
	return set
}
