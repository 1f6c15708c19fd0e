package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ResponseCache stores successful GET responses in Redis. Writes bump a
// generation counter that is part of every key, so any change to the
// catalogue makes older entries unreachable until they expire.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration, prefix string) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "theatre:cache"
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (rc *ResponseCache) Enabled() bool {
	return rc != nil && rc.rdb != nil
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (rc *ResponseCache) generationKey() string {
	return rc.prefix + ":generation"
}

func (rc *ResponseCache) generation(ctx context.Context) int64 {
	gen, err := rc.rdb.Get(ctx, rc.generationKey()).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// Key builds the cache key for a route and raw query at a given generation.
func (rc *ResponseCache) Key(gen int64, route, rawQuery string) string {
	sum := sha1.Sum([]byte(route + "?" + rawQuery))
	return fmt.Sprintf("%s:%d:%x", rc.prefix, gen, sum[:])
}

func (rc *ResponseCache) Invalidate(ctx context.Context) error {
	if !rc.Enabled() {
		return nil
	}
	return rc.rdb.Incr(ctx, rc.generationKey()).Err()
}

// Cache serves GET requests from Redis and invalidates on successful writes.
func (rc *ResponseCache) Cache() gin.HandlerFunc {
	if !rc.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			rc.invalidateAfter(c)
			return
		}

		ctx := c.Request.Context()
		key := rc.Key(rc.generation(ctx), c.Request.URL.Path, c.Request.URL.RawQuery)

		if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := rc.rdb.Set(context.Background(), key, payload, rc.ttl).Err(); err != nil {
			GetLogger(c).Sugar().Warnw("failed to store cached response", "key", key, "error", err)
		}
	}
}

// InvalidateOnWrite only bumps the generation; it is used on routes whose
// reads are per-user but whose writes change cached catalogue data.
func (rc *ResponseCache) InvalidateOnWrite() gin.HandlerFunc {
	if !rc.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		rc.invalidateAfter(c)
	}
}

func (rc *ResponseCache) invalidateAfter(c *gin.Context) {
	c.Next()
	if c.Writer.Status() >= http.StatusBadRequest {
		return
	}
	if err := rc.Invalidate(context.Background()); err != nil {
		GetLogger(c).Sugar().Warnw("failed to invalidate response cache", "error", err)
	}
}
