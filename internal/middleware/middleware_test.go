package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/geoshooter/internal/telemetry"
	"github.com/mcoot/geoshooter/internal/testutil"
)

func TestLogging_RecordsStatus(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, logs.String(), `"status":418`)
	assert.Contains(t, logs.String(), `"size":15`)
	assert.Contains(t, logs.String(), `"path":"/api/v1/health"`)
}

func TestResponseWriter_HijackWithoutSupport(t *testing.T) {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	_, _, err := rw.Hijack()
	assert.Error(t, err)
	assert.False(t, rw.Hijacked())
}

func TestResponseWriter_HijackPassesThrough(t *testing.T) {
	hijacked := make(chan bool, 1)
	server := httptest.NewServer(Logging(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*ResponseWriter)
		if !ok {
			hijacked <- false
			return
		}
		conn, _, err := rw.Hijack()
		if err == nil {
			_, _ = conn.Write([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
			_ = conn.Close()
		}
		hijacked <- rw.Hijacked()
	})))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.True(t, <-hijacked)
}

func TestRecovery_WritesErrorResponse(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	handler := Recovery(logger, telemetry.NewNoop(), DefaultPanicHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "boom")
}

func TestRecovery_SkipsHandlerAfterHijack(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	handled := make(chan bool, 1)
	panicHandler := func(w http.ResponseWriter, r *http.Request, err any) {
		handled <- true
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_, _ = conn.Write([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
			_ = conn.Close()
		}
		panic("after upgrade")
	})
	chain := Logging(logger)(Recovery(logger, telemetry.NewNoop(), panicHandler)(inner))
	server := httptest.NewServer(chain)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "upgraded connection ended")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, logs.String(), "after upgrade")
	assert.Empty(t, handled)
}
