package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// Cache defines the interface for per-adapter query-result caching
type Cache interface {
	Get(key string) (*model.QueryResult, bool)
	Set(key string, value *model.QueryResult, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Key generates a cache key for a query against a named adapter. All
// option fields that change the result shape participate in the key.
func Key(serverName, query string, limit, maxAgeDays int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d", serverName, query, limit, maxAgeDays)))
	return "knowledgeweb:v1:" + hex.EncodeToString(hash[:])
}
