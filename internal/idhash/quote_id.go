package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeQuoteID computes a deterministic quote ID using SHA256.
// Formula: SHA256(route_key|source|observed_at_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeQuoteID(routeKey string, source string, observedAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", routeKey, source, observedAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
