// Package ledger provides the append-only store of sealed forecast records,
// one ordered sequence per tenant. Append is the only mutation the package
// exposes; nothing here can rewrite or drop a record once written.
package ledger

import (
	"context"
	"sync"

	"github.com/reservewatch/ledger/internal/seal"
	"github.com/reservewatch/ledger/models"
)

// DefaultHistoryLimit caps a bounded-history read when the caller passes a
// non-positive limit.
const DefaultHistoryLimit = 50

// MemoryStore keeps per-tenant sequences in process memory. Appends for the
// same tenant serialize on the store mutex; reads return copies so a caller
// can never reach back into the stored slice.
type MemoryStore struct {
	mu      sync.RWMutex
	sealer  *seal.Sealer
	records map[string][]models.SealedRecord
}

func NewMemoryStore(sealer *seal.Sealer) *MemoryStore {
	return &MemoryStore{
		sealer:  sealer,
		records: make(map[string][]models.SealedRecord),
	}
}

// Append seals the artifact and appends it to the tenant's sequence.
func (s *MemoryStore) Append(_ context.Context, tenantID string, artifact models.ProjectionArtifact) (models.SealedRecord, error) {
	rec, err := s.sealer.Seal(tenantID, artifact)
	if err != nil {
		return models.SealedRecord{}, err
	}

	s.mu.Lock()
	s.records[tenantID] = append(s.records[tenantID], rec)
	s.mu.Unlock()

	return rec, nil
}

// GetHistory returns up to limit most-recent records, newest first, each with
// a freshly computed verification result. An unknown tenant yields an empty
// slice, not an error.
func (s *MemoryStore) GetHistory(_ context.Context, tenantID string, limit int) ([]models.VerifiedRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	seq := s.records[tenantID]
	if len(seq) > limit {
		seq = seq[len(seq)-limit:]
	}
	recent := make([]models.SealedRecord, len(seq))
	copy(recent, seq)
	s.mu.RUnlock()

	// Verification happens outside the critical section; it is pure CPU.
	out := make([]models.VerifiedRecord, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, models.VerifiedRecord{
			Record:       recent[i],
			Verification: s.sealer.Verify(recent[i]),
		})
	}
	return out, nil
}
