package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuvio/menu-api/internal/config"
)

func TestCaptureWriterMarksTruncation(t *testing.T) {
	newWriter := func(limit int64) *captureWriter {
		return &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: limit}
	}

	t.Run("body within limit is captured whole", func(t *testing.T) {
		cw := newWriter(10)
		_, _ = cw.Write([]byte("abcd"))
		_, _ = cw.Write([]byte("efgh"))
		assert.False(t, cw.truncated)
		assert.Equal(t, "abcdefgh", cw.buf.String())
	})

	t.Run("body exactly at limit is captured whole", func(t *testing.T) {
		cw := newWriter(8)
		_, _ = cw.Write([]byte("abcd"))
		_, _ = cw.Write([]byte("efgh"))
		assert.False(t, cw.truncated)
		assert.Equal(t, "abcdefgh", cw.buf.String())
	})

	t.Run("body beyond limit is flagged, never storable", func(t *testing.T) {
		cw := newWriter(8)
		_, _ = cw.Write([]byte("abcdefgh"))
		_, _ = cw.Write([]byte("i"))
		assert.True(t, cw.truncated)
		assert.Equal(t, int64(8), int64(cw.buf.Len()))
		assert.Equal(t, int64(9), cw.size)
	})

	t.Run("single write crossing the limit is flagged", func(t *testing.T) {
		cw := newWriter(4)
		_, _ = cw.Write([]byte("abcdefgh"))
		assert.True(t, cw.truncated)
		assert.Equal(t, "abcd", cw.buf.String())
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		cw := newWriter(0)
		_, _ = cw.Write(make([]byte, 1<<16))
		assert.False(t, cw.truncated)
		assert.Equal(t, 1<<16, cw.buf.Len())
	})

	t.Run("client still receives the full body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
		_, _ = cw.Write([]byte("abcdefgh"))
		assert.Equal(t, "abcdefgh", rec.Body.String())
	})
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": {"application/json"},
		"X-Custom":     {"a", "b"},
	}
	body := []byte(`{"items":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, make([]byte, 7)} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok, "len=%d", len(bs))
	}
}

func TestDecodePayloadRejectsBadHeaderLength(t *testing.T) {
	payload, err := encodePayload(http.StatusOK, http.Header{}, []byte("x"))
	require.NoError(t, err)
	// Claim a header longer than the payload itself.
	payload[4], payload[5], payload[6], payload[7] = 0xFF, 0xFF, 0xFF, 0xFF
	_, _, _, ok := decodePayload(payload)
	assert.False(t, ok)
}

func TestCacheKeyFromStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "menucache"}

	newCtx := func(target string) echo.Context {
		e := echo.New()
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		return e.NewContext(req, nil)
	}

	t.Run("same route and query collide", func(t *testing.T) {
		a := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza?lang=en"))
		b := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza?lang=en"))
		assert.Equal(t, a, b)
	})

	t.Run("different tenants differ", func(t *testing.T) {
		a := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza"))
		b := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/burger"))
		assert.NotEqual(t, a, b)
	})

	t.Run("query participates by default", func(t *testing.T) {
		a := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza?lang=en"))
		b := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza?lang=ar"))
		assert.NotEqual(t, a, b)
	})

	t.Run("route strategy ignores query", func(t *testing.T) {
		routeCfg := cfg
		routeCfg.KeyStrategy = "route"
		a := cacheKeyFrom(routeCfg, newCtx("http://x/api/meals/restaurant/pizza?lang=en"))
		b := cacheKeyFrom(routeCfg, newCtx("http://x/api/meals/restaurant/pizza?lang=ar"))
		assert.Equal(t, a, b)
	})

	t.Run("prefix leads the key", func(t *testing.T) {
		key := cacheKeyFrom(cfg, newCtx("http://x/api/meals/restaurant/pizza"))
		assert.Contains(t, key, "menucache:")
	})
}
