// Package report assembles the point-in-time trust document for one tenant.
// Composition is stateless: ledger excerpt, verification results, and accuracy
// grading are re-derived on every call, never cached.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reservewatch/ledger/internal/accuracy"
	"github.com/reservewatch/ledger/internal/canonical"
	"github.com/reservewatch/ledger/models"
)

// LedgerExcerptLimit caps how much history a report carries.
const LedgerExcerptLimit = 50

// Composer builds reports from the ledger and the tenant's live risk state.
type Composer struct {
	store  models.Store
	truth  models.GroundTruthProvider
	logger zerolog.Logger
}

func NewComposer(store models.Store, truth models.GroundTruthProvider) *Composer {
	return &Composer{
		store:  store,
		truth:  truth,
		logger: log.With().Str("component", "report_composer").Logger(),
	}
}

// integritySubject is the exact shape the report-level hash covers. The
// recipient recomputes the hash over {forecast, accuracy, generated_at} to
// confirm the report was not altered after generation; this is separate from
// each ledger record's own seal.
type integritySubject struct {
	Forecast    *models.CurrentForecast `json:"forecast"`
	Accuracy    models.AccuracySet      `json:"accuracy"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Compose builds a fresh report for tenantID around the supplied current
// forecast (the forecast engine is the caller's collaborator, not ours).
func (c *Composer) Compose(ctx context.Context, tenantID string, forecast *models.CurrentForecast) (*models.Report, error) {
	history, err := c.store.GetHistory(ctx, tenantID, LedgerExcerptLimit)
	if err != nil {
		return nil, fmt.Errorf("report: ledger read for %s: %w", tenantID, err)
	}

	truth, err := c.truth.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("report: ground truth for %s: %w", tenantID, err)
	}

	accuracySet := accuracy.Derive(history, truth)
	generatedAt := time.Now().UTC()

	hash, err := canonical.Hash(integritySubject{
		Forecast:    forecast,
		Accuracy:    accuracySet,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("report: integrity hash: %w", err)
	}

	flagged := 0
	for _, vr := range history {
		if !vr.Verification.Valid {
			flagged++
		}
	}
	if flagged > 0 {
		c.logger.Warn().Str("tenant", tenantID).Int("flagged", flagged).
			Msg("report carries records that failed verification")
	}

	return &models.Report{
		TenantID:      tenantID,
		GeneratedAt:   generatedAt,
		Forecast:      forecast,
		Accuracy:      accuracySet,
		Ledger:        history,
		IntegrityHash: hash,
	}, nil
}
