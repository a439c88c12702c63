// Package seal computes and re-verifies the integrity seal carried by every
// ledger record: a SHA-256 content hash plus an HMAC-SHA256 signature, both
// over the canonical artifact bytes.
package seal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/reservewatch/ledger/internal/canonical"
	"github.com/reservewatch/ledger/models"
)

// hkdfLabel is baked into key derivation. Changing it rotates every derived
// key and therefore invalidates all existing signatures.
const hkdfLabel = "reservewatch/ledger seal v1"

const keyLen = 32

// Sealer signs artifacts with a key derived from the configured master secret
// and verifies records against the {current, previous} key set, so a secret
// rotation does not flag the whole ledger as tampered.
type Sealer struct {
	current  []byte
	previous []byte // nil when no rotation has happened
	clock    func() time.Time
}

// New derives the signing key from masterSecret. previousSecret may be empty;
// when set, records signed under it still verify as OK.
func New(masterSecret, previousSecret string) (*Sealer, error) {
	if masterSecret == "" {
		return nil, fmt.Errorf("seal: master secret is required")
	}
	cur, err := deriveKey(masterSecret)
	if err != nil {
		return nil, err
	}
	s := &Sealer{current: cur, clock: time.Now}
	if previousSecret != "" {
		prev, err := deriveKey(previousSecret)
		if err != nil {
			return nil, err
		}
		s.previous = prev
	}
	return s, nil
}

// WithClock overrides the seal timestamp source for testing.
func (s *Sealer) WithClock(clock func() time.Time) *Sealer {
	s.clock = clock
	return s
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, keyLen)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfLabel))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}
	return key, nil
}

// Seal canonicalizes the artifact, hashes and signs it, and returns the
// sealed record. A canonicalization failure is a producer bug; callers
// treat it as fatal.
func (s *Sealer) Seal(tenantID string, artifact models.ProjectionArtifact) (models.SealedRecord, error) {
	payload, err := canonical.Bytes(artifact)
	if err != nil {
		return models.SealedRecord{}, fmt.Errorf("seal: artifact not canonicalizable: %w", err)
	}

	sum := sha256.Sum256(payload)

	return models.SealedRecord{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Artifact: artifact,
		Integrity: models.RecordIntegrity{
			Hash:     hex.EncodeToString(sum[:]),
			SignedAt: s.clock(),
		},
		Signature: s.sign(s.current, payload),
	}, nil
}

// Verify recomputes hash and signature from the stored artifact and compares
// them with the stored seal. Failures are reported in the result, never as an
// error: a tampered record must stay visible with its flag, not disappear.
func (s *Sealer) Verify(rec models.SealedRecord) models.VerificationResult {
	payload, err := canonical.Bytes(rec.Artifact)
	if err != nil {
		// Stored artifact no longer canonicalizes; treat as content tampering.
		return models.VerificationResult{Valid: false, Reason: models.VerifyHashMismatch}
	}

	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != rec.Integrity.Hash {
		return models.VerificationResult{Valid: false, Reason: models.VerifyHashMismatch}
	}

	if hmac.Equal([]byte(rec.Signature), []byte(s.sign(s.current, payload))) {
		return models.VerificationResult{Valid: true, Reason: models.VerifyOK}
	}
	if s.previous != nil && hmac.Equal([]byte(rec.Signature), []byte(s.sign(s.previous, payload))) {
		return models.VerificationResult{Valid: true, Reason: models.VerifyOK}
	}
	return models.VerificationResult{Valid: false, Reason: models.VerifySignatureMismatch}
}

func (s *Sealer) sign(key, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
