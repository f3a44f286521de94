// Package cache keeps lookup results in a pluggable store with per-tier expiry
// and a bounded number of entries.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Tier classifies a cached record; each tier expires on its own schedule.
type Tier string

const (
	TierData     Tier = "data"
	TierAI       Tier = "ai"
	TierNotFound Tier = "not_found"
)

// Namespaces of the persisted cache state.
const (
	NamespaceSalary = "salary"
	NamespaceMatch  = "match"
)

// Record is a single cached value.
type Record struct {
	Key      string          `json:"key"`
	Tier     Tier            `json:"tier"`
	Value    json.RawMessage `json:"value"`
	CachedAt time.Time       `json:"cachedAt"`
}

// Expired reports whether the record is older than ttl at now. A non-positive ttl
// never expires.
func (r *Record) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(r.CachedAt) >= ttl
}

// Fingerprint derives a stable key from the given parts. Parts are trimmed and
// lowercased before hashing.
func Fingerprint(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(part))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:])
}
