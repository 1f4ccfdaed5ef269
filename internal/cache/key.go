package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// NoCategory is the sentinel used when a request carries no category.
const NoCategory = "none"

// Key identifies one normalized (challenge, category) pair.
// Hash is sha256 of "<normalized challenge>|<category>".
type Key struct {
	Category string // slugged category, or NoCategory
	Hash     string
}

// String converts the structured key into the final string used in Redis/map.
func (k Key) String() string {
	// advice:<CATEGORY_SLUG>:<HASH_HEX>
	return fmt.Sprintf("advice:%s:%s", k.Category, k.Hash)
}

// NormalizeChallenge trims, lowercases, and collapses internal whitespace.
// Two challenges that normalize identically share a cache entry.
func NormalizeChallenge(challenge string) string {
	return strings.Join(strings.Fields(strings.ToLower(challenge)), " ")
}

// BuildKey derives the cache key for a challenge and optional category
// (empty string means no category).
func BuildKey(challenge, category string) Key {
	category = strings.TrimSpace(category)
	if category == "" {
		category = NoCategory
	}

	normalized := NormalizeChallenge(challenge) + "|" + category

	sum := sha256.Sum256([]byte(normalized))

	return Key{
		Category: slugCategory(category),
		Hash:     hex.EncodeToString(sum[:]),
	}
}

func slugCategory(category string) string {
	return strings.Join(strings.Fields(strings.ToLower(category)), "-")
}

// parseKey splits an advice:<category>:<hash> string back into parts,
// used by the logging decorator for structured fields.
func parseKey(key string) (Key, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "advice" {
		return Key{}, false
	}
	return Key{Category: parts[1], Hash: parts[2]}, true
}
