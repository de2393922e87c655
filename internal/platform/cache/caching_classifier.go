// Package cache provides caching implementations for usecase interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"deepfake_backend/internal/feature/detection/domain/entity"
)

// Classifier is the subset of the detection usecase that can be cached.
type Classifier interface {
	Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
}

// CachingClassifier decorates a Classifier with Redis caching.
// Results are keyed by the SHA-256 of the raw image bytes and the model version,
// which is safe because classification is a pure function of both.
type CachingClassifier struct {
	inner     Classifier
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	version   string
}

// NewCachingClassifier decorates a Classifier with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "classify".
// version identifies the loaded weights so that results from other weights are never served.
func NewCachingClassifier(rdb *redis.Client, ttl time.Duration, inner Classifier, namespace, version string) *CachingClassifier {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "classify"
	}
	return &CachingClassifier{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		version:   version,
	}
}

// Classify returns a cached result when present, otherwise delegates and stores the result.
// Errors from the inner classifier are returned as is and never cached.
func (c *CachingClassifier) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Classify(ctx, imageData)
	}

	key := c.cacheKey(imageData)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.ClassificationResult
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the model
	out, err := c.inner.Classify(ctx, imageData)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for the given image bytes.
func (c *CachingClassifier) cacheKey(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	if c.version == "" {
		return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
	}
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(c.version), hex.EncodeToString(sum[:]))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
