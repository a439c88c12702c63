// Package canonical fixes the deterministic byte form used for hashing and
// signing ledger artifacts: encoding/json marshaling (struct tag order is
// irrelevant after transformation) followed by RFC 8785 (JCS) normalization,
// which sorts object keys by UTF-8 bytes and pins number formatting.
//
// This form is load-bearing. Changing it silently invalidates every
// previously sealed record, so it must never change for v1 records.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Bytes returns the canonical JSON representation of v.
// Failure means v cannot be represented as JSON at all, which indicates a
// bug in the producer rather than a runtime condition.
func Bytes(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonical: jcs transform: %w", err)
	}
	return out, nil
}

// Hash returns the hex SHA-256 digest of the canonical form of v.
func Hash(v any) (string, error) {
	b, err := Bytes(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
