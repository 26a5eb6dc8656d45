package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRequestLog(t *testing.T, register func(r *gin.Engine), req *http.Request) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(CorrelationID(), Logger(slog.New(slog.NewJSONHandler(&buf, nil))))
	register(r)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "expected exactly one JSON log line, got %q", buf.String())
	return entry
}

func TestLogger(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name      string
		method    string
		target    string
		status    int
		withOwner bool
		level     string
		path      string
	}{
		{name: "success logs at info", method: http.MethodGet, target: "/accounts?limit=5", status: http.StatusOK, level: "INFO", path: "/accounts?limit=5"},
		{name: "created with owner", method: http.MethodPost, target: "/accounts", status: http.StatusCreated, withOwner: true, level: "INFO", path: "/accounts"},
		{name: "client error logs at warn", method: http.MethodGet, target: "/accounts/missing", status: http.StatusNotFound, withOwner: true, level: "WARN", path: "/accounts/missing"},
		{name: "server error logs at error", method: http.MethodPost, target: "/fund", status: http.StatusServiceUnavailable, level: "ERROR", path: "/fund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", "ledger-test")
			req.Header.Set(CorrelationIDHeader, "corr-"+tt.level)

			entry := captureRequestLog(t, func(r *gin.Engine) {
				r.Handle(tt.method, req.URL.Path, func(c *gin.Context) {
					if tt.withOwner {
						c.Set(OwnerIDKey, ownerID)
					}
					c.Status(tt.status)
				})
			}, req)

			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "HTTP request", entry["msg"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.path, entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.Equal(t, "ledger-test", entry["user_agent"])
			assert.Equal(t, "corr-"+tt.level, entry["correlation_id"])
			assert.Contains(t, entry, "latency")

			if tt.withOwner {
				assert.Equal(t, ownerID.String(), entry["owner_id"])
			} else {
				assert.NotContains(t, entry, "owner_id")
			}
		})
	}
}

func TestLogger_GeneratedCorrelationIDAndErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/accounts/1/status", nil)

	entry := captureRequestLog(t, func(r *gin.Engine) {
		r.PATCH("/accounts/1/status", func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.Status(http.StatusBadRequest)
		})
	}, req)

	id, ok := entry["correlation_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Contains(t, entry["errors"], assert.AnError.Error())
}
