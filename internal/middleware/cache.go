package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-review/internal/config"
	"github.com/iliyamo/restaurant-review/internal/logging"
)

const skipCacheKey = "cache_skip"

// SkipCache marks the current response as not cacheable. Handlers call
// it for degraded pages (database unavailable, detail warnings) so a
// transient failure is not served from the cache after recovery.
func SkipCache(c echo.Context) { c.Set(skipCacheKey, true) }

func cacheSkipped(c echo.Context) bool {
	v, _ := c.Get(skipCacheKey).(bool)
	return v
}

// recorder tees the response body into buf until limit bytes; past the
// limit the response is still sent but marked overflowed.
type recorder struct {
	http.ResponseWriter
	status     int
	buf        bytes.Buffer
	limit      int
	overflowed bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.overflowed {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflowed = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// generationKey holds a counter bumped by every successful member write.
// It is part of every cache key, so a write orphans all cached pages.
func generationKey(cfg config.CacheConfig) string { return cfg.Prefix + ":gen" }

func generation(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client) (string, error) {
	gen, err := rdb.Get(ctx, generationKey(cfg)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// cacheKey hashes the parts selected by cfg.KeyStrategy. Views carry the
// session username, so the session uid is always part of the key.
func cacheKey(cfg config.CacheConfig, c echo.Context, gen string) string {
	r := c.Request()
	parts := []string{"g", gen, "u", userID(c)}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", c.Path())
	case "method_route":
		parts = append(parts, "method", r.Method, "route", c.Path())
	case "method_route_query":
		parts = append(parts, "method", r.Method, "route", r.URL.Path, "q", r.URL.RawQuery)
	default: // route_query
		parts = append(parts, "route", r.URL.Path, "q", r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// entry layout: [4 bytes status][4 bytes header length][header JSON][body]
func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

func decodeEntry(bs []byte) (int, http.Header, []byte, bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status := int(binary.BigEndian.Uint32(bs[0:4]))
	n := int(binary.BigEndian.Uint32(bs[4:8]))
	if n < 0 || 8+n > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if n > 0 {
		if err := json.Unmarshal(bs[8:8+n], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+n:], true
}

// NewRedisCache serves repeated GETs from redis. Only complete 200
// responses that no handler marked with SkipCache are stored; headers are
// kept so a hit is byte-identical to the original. With caching disabled
// or no client it is a pass-through. Entries written before the last
// NewCacheInvalidator bump are never served.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			gen, err := generation(c.Request().Context(), cfg, rdb)
			if err != nil {
				logging.Debug().Err(err).Msg("cache generation unavailable")
				return next(c)
			}
			key := cacheKey(cfg, c, gen)
			res := c.Response()

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if status, hdr, body, ok := decodeEntry(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							res.Header().Add(k, v)
						}
					}
					res.Header().Set("X-Cache", "HIT")
					res.WriteHeader(status)
					_, err := res.Write(body)
					return err
				}
			}

			rec := &recorder{ResponseWriter: res.Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			res.Writer = rec
			res.Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflowed || cacheSkipped(c) {
				return nil
			}

			hdr := res.Header().Clone()
			hdr.Del("X-Cache")
			entry, err := encodeEntry(rec.status, hdr, rec.buf.Bytes())
			if err != nil {
				return nil
			}
			// the request context may already be cancelled
			if err := rdb.SetEx(context.Background(), key, entry, ttl).Err(); err != nil {
				logging.Debug().Err(err).Str("key", key).Msg("cache store failed")
			}
			return nil
		}
	}
}

// NewCacheInvalidator bumps the cache generation after a successful
// non-GET response, so pages cached by NewRedisCache are rebuilt on the
// next request. With caching disabled or no client it is a pass-through.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if c.Request().Method == http.MethodGet {
				return err
			}
			if status := c.Response().Status; err != nil || status < 200 || status >= 300 {
				return err
			}
			if ierr := rdb.Incr(context.Background(), generationKey(cfg)).Err(); ierr != nil {
				logging.Warn().Err(ierr).Str("path", c.Path()).Msg("cache invalidation failed")
			}
			return nil
		}
	}
}
