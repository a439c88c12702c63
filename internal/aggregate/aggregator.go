// Package aggregate rolls per-tenant accuracy gradings into one network-wide
// figure, gated behind minimum-sample thresholds so that thin evidence is
// never presented as signal.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/reservewatch/ledger/internal/accuracy"
	"github.com/reservewatch/ledger/models"
)

// Significance thresholds. Both must hold before any accuracy or variance
// statistic is exposed.
const (
	MinTenants     = 5
	MinEvaluations = 20
)

// HistoryLimit bounds the per-tenant history read during a pass.
const HistoryLimit = 50

// maxConcurrentTenants bounds the fan-out; the pass is read-only so the limit
// exists only to keep pressure on the store predictable.
const maxConcurrentTenants = 8

// Aggregator fans out over every known tenant, derives accuracy against each
// tenant's own ground truth, and accumulates the totals. It owns no state
// between calls.
type Aggregator struct {
	store   models.Store
	truth   models.GroundTruthProvider
	tenants models.TenantDirectory
	logger  zerolog.Logger
}

func New(store models.Store, truth models.GroundTruthProvider, tenants models.TenantDirectory) *Aggregator {
	return &Aggregator{
		store:   store,
		truth:   truth,
		tenants: tenants,
		logger:  log.With().Str("component", "aggregator").Logger(),
	}
}

// tenantContribution is what one tenant adds to the running totals.
type tenantContribution struct {
	evaluated    int
	tierCorrect  int
	trendCorrect int
	variances    []int
	versions     []string
}

// Aggregate runs one full pass. A failure on one tenant is logged and skipped;
// it never aborts the rest of the pass. Only a failure to list tenants at all
// is returned as an error.
func (a *Aggregator) Aggregate(ctx context.Context) (*models.AggregateAccuracy, error) {
	tenantIDs, err := a.tenants.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu            sync.Mutex
		contributions []tenantContribution
		versionSet    = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTenants)

	for _, tenantID := range tenantIDs {
		tenantID := tenantID
		g.Go(func() error {
			contrib, versions, ok := a.evaluateTenant(gctx, tenantID)

			mu.Lock()
			defer mu.Unlock()
			for _, v := range versions {
				versionSet[v] = struct{}{}
			}
			if ok {
				contributions = append(contributions, contrib)
			}
			return nil // per-tenant failures never fail the group
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := &models.AggregateAccuracy{
		GeneratedAt:     time.Now().UTC(),
		TenantsWithData: len(contributions),
		ActiveVersions:  sortedKeys(versionSet),
	}
	agg.VersionStability = len(agg.ActiveVersions) <= 1

	var (
		tierCorrect  int
		trendCorrect int
		variances    []int
	)
	for _, c := range contributions {
		agg.TotalEvaluations += c.evaluated
		tierCorrect += c.tierCorrect
		trendCorrect += c.trendCorrect
		variances = append(variances, c.variances...)
	}

	agg.MeetsSignificanceThreshold = agg.TenantsWithData >= MinTenants && agg.TotalEvaluations >= MinEvaluations
	if !agg.MeetsSignificanceThreshold {
		return agg, nil
	}

	tierPct := roundedPercent(tierCorrect, agg.TotalEvaluations)
	trendPct := roundedPercent(trendCorrect, agg.TotalEvaluations)
	agg.TierAccuracy = &tierPct
	agg.TrendAccuracy = &trendPct

	absVariances := make([]int, len(variances))
	for i, v := range variances {
		if v < 0 {
			v = -v
		}
		absVariances[i] = v
	}
	mean := meanBps(absVariances)
	median := medianBps(absVariances)
	stdDev := stdDevBps(absVariances)
	agg.MeanVarianceBps = &mean
	agg.MedianVarianceBps = &median
	agg.StdDevVarianceBps = &stdDev

	return agg, nil
}

// evaluateTenant fetches one tenant's history and grades it. ok is false when
// the tenant contributes no evaluations (fetch failure or thin history); the
// model versions of every record seen are reported either way.
func (a *Aggregator) evaluateTenant(ctx context.Context, tenantID string) (tenantContribution, []string, bool) {
	history, err := a.store.GetHistory(ctx, tenantID, HistoryLimit)
	if err != nil {
		a.logger.Warn().Err(err).Str("tenant", tenantID).Msg("history fetch failed, skipping tenant")
		return tenantContribution{}, nil, false
	}

	versions := make([]string, 0, len(history))
	for _, vr := range history {
		versions = append(versions, vr.Record.Artifact.ModelVersion)
	}

	if len(history) < accuracy.MinHistory {
		return tenantContribution{}, versions, false
	}

	truth, err := a.truth.Snapshot(ctx, tenantID)
	if err != nil {
		a.logger.Warn().Err(err).Str("tenant", tenantID).Msg("ground truth fetch failed, skipping tenant")
		return tenantContribution{}, versions, false
	}

	set := accuracy.Derive(history, truth)
	contrib := tenantContribution{
		evaluated:    set.Evaluated,
		tierCorrect:  set.TierCorrect,
		trendCorrect: set.TrendCorrect,
	}
	for _, rec := range set.Records {
		contrib.variances = append(contrib.variances, rec.ReserveRateVarianceBps)
	}
	return contrib, versions, true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
