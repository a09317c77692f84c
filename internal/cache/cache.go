package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

// DefaultTTL bounds how long a cached batch is served.
const DefaultTTL = 24 * time.Hour

// Cache stores validated batches by request fingerprint. Lookups are best
// effort: callers treat errors as misses.
type Cache interface {
	Get(ctx context.Context, fingerprint string) ([]exam.RawItem, bool, error)
	Set(ctx context.Context, fingerprint string, items []exam.RawItem, ttl time.Duration) error
}

// Fingerprint is the hex SHA-256 of the request's canonical JSON form
// (core, plan items, difficulty, session id, batch index).
func Fingerprint(req itemgen.BatchRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		// BatchRequest holds only strings, ints and slices of them.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
