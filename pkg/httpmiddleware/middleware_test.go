package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestWrap_Order(t *testing.T) {
	var trail []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(okHandler(), mark("outer"), mark("middle"), mark("inner"))
	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "middle", "inner"}, trail)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, seen)
	})

	t.Run("echoed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		w := serve(h, r)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})

	t.Run("invalid replaced", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		w := serve(h, r)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
}

func TestCORS(t *testing.T) {
	t.Run("preflight any origin", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"*"}, MaxAge: 600})(okHandler())
		r := httptest.NewRequest(http.MethodOptions, "/products", nil)
		r.Header.Set("Origin", "http://example.com")
		r.Header.Set("Access-Control-Request-Method", "GET")
		r.Header.Set("Access-Control-Request-Headers", "Content-Type")

		w := serve(h, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("simple request from listed origin", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"https://Shop.example"}})(okHandler())
		r := httptest.NewRequest(http.MethodGet, "/products", nil)
		r.Header.Set("Origin", "https://shop.example")

		w := serve(h, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://Shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example"}})(okHandler())
		r := httptest.NewRequest(http.MethodGet, "/products", nil)
		r.Header.Set("Origin", "https://evil.example")

		w := serve(h, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogRequests_CountsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	counter, err := NewRequestCounter(nil)
	require.NoError(t, err)

	h := Wrap(okHandler(), InjectLogger(zap.New(core)), LogRequests(counter))

	for range 3 {
		serve(h, httptest.NewRequest(http.MethodGet, "/orders?id=u1", nil))
	}

	assert.Equal(t, int64(3), counter.Total())
	entries := logs.FilterMessage("Incoming request").All()
	require.Len(t, entries, 3)
	last := entries[2].ContextMap()
	assert.Equal(t, int64(3), last["total_requests"])
	assert.Equal(t, "id=u1", last["query"])
	assert.Equal(t, "/orders", last["path"])
}

func TestLogRequests_Concurrent(t *testing.T) {
	counter, err := NewRequestCounter(nil)
	require.NoError(t, err)
	h := LogRequests(counter)(okHandler())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), counter.Total())
}

func TestInjectLogger_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Wrap(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		zctx.From(r.Context()).Info("inside")
	}), RequestID(), InjectLogger(zap.New(core)))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	serve(h, r)

	entries := logs.FilterMessage("inside").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}
