package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    size      int64
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit > 0 && cw.size+int64(len(b)) > cw.limit {
        cw.truncated = true
    } else {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// ResponseCache stores successful GET responses in Redis and drops every
// stored entry after a successful write so reads never outlive the data
// they were built from.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log *zap.Logger
}

// NewResponseCache returns a cache over rdb.  A nil rdb yields a cache
// whose middleware passes every request through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *ResponseCache {
    if log == nil {
        log = zap.NewNop()
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

func (rc *ResponseCache) enabled() bool {
    return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

// Middleware serves cached responses for cacheable methods and
// invalidates the cache after any other request that succeeds.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if !rc.enabled() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !rc.cfg.Cacheable(c.Request().Method) {
                if err := next(c); err != nil {
                    return err
                }
                if c.Response().Status < http.StatusBadRequest {
                    ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
                    defer cancel()
                    if err := rc.Invalidate(ctx); err != nil {
                        rc.log.Warn("cache: invalidate failed", zap.Error(err))
                    }
                }
                return nil
            }
            return rc.serve(c, next)
        }
    }
}

func (rc *ResponseCache) serve(c echo.Context, next echo.HandlerFunc) error {
    ctx := c.Request().Context()
    key := rc.key(c)

    if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
        if status, hdr, body, ok := decodePayload(bs); ok {
            for k, vals := range hdr {
                if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, headerRequestID) {
                    continue
                }
                for _, v := range vals {
                    c.Response().Header().Add(k, v)
                }
            }
            c.Response().Header().Set("X-Cache", "HIT")
            c.Response().WriteHeader(status)
            _, _ = c.Response().Write(body)
            return nil
        }
    }

    cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(rc.cfg.MaxBodyBytes)}
    c.Response().Writer = cw
    c.Response().Header().Set("X-Cache", "MISS")

    if err := next(c); err != nil {
        return err
    }
    if cw.status != http.StatusOK || cw.truncated {
        return nil
    }
    hdr := c.Response().Header().Clone()
    hdr.Del("X-Cache")
    payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
    if err != nil {
        return nil
    }
    if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
        rc.log.Warn("cache: store failed", zap.String("key", key), zap.Error(err))
    }
    return nil
}

// Invalidate deletes every entry under the configured prefix.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
    if !rc.enabled() {
        return nil
    }
    var keys []string
    iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 100).Iterator()
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        return fmt.Errorf("scan cache keys: %w", err)
    }
    if len(keys) == 0 {
        return nil
    }
    if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
        return fmt.Errorf("delete cache keys: %w", err)
    }
    return nil
}

// key builds a stable cache key from the caller, the request path and,
// depending on KeyStrategy, the method and query string.  The caller is
// always part of it so a response authorised for one user is never
// replayed to another.
func (rc *ResponseCache) key(c echo.Context) string {
    r := c.Request()
    parts := []string{"user", principal(c), "path", r.URL.Path}
    switch strings.ToLower(rc.cfg.KeyStrategy) {
    case "route":
    case "method_route":
        parts = append(parts, "method", r.Method)
    case "method_route_query":
        parts = append(parts, "method", r.Method, "q", r.URL.RawQuery)
    default: // "route_query"
        parts = append(parts, "q", r.URL.RawQuery)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}
