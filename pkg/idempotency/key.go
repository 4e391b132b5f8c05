// Package idempotency derives stable request keys so repeated
// submissions of the same documents do not create duplicate conversion
// records or duplicate outbox events.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// GenerateKey produces a deterministic key for a conversion request.
// Source file names are sorted so upload order does not matter, and the
// timestamp is truncated to the minute so rapid retries of the same
// request collapse to one key.
func GenerateKey(fileNames []string, useCase string, timestamp time.Time) string {
	sorted := make([]string, len(fileNames))
	copy(sorted, fileNames)
	sort.Strings(sorted)

	parts := append(sorted, useCase, timestamp.Truncate(time.Minute).Format(time.RFC3339))
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// GenerateContentKey produces a key from document content rather than
// file names, for callers that post extracted text directly.
func GenerateContentKey(contents []string, useCase string) string {
	hashes := make([]string, len(contents))
	for i, c := range contents {
		h := sha256.Sum256([]byte(c))
		hashes[i] = hex.EncodeToString(h[:])
	}
	sort.Strings(hashes)

	parts := append(hashes, useCase)
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
