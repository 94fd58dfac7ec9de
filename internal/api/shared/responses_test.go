package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithErrorAndLog(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	req := httptest.NewRequest(http.MethodGet, "/api/owners/ann@example.com/card", nil)
	ctx := SetTraceID(req.Context())
	ctx = logger.WithLogger(ctx, log)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("dial postgres://loyalty:hunter22@db:5432 failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "An unexpected error occurred", resp.Error)
	assert.Equal(t, GetTraceID(ctx), resp.TraceID)

	logger.AssertLogField(t, buf, "level", "ERROR")
	logger.AssertLogField(t, buf, "path", "/api/owners/a***@example.com/card")
	assert.NotContains(t, buf.String(), "hunter22")
}

func TestRespondWithErrorAndLogLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		level  string
	}{
		{name: "client error", status: http.StatusNotFound, level: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, opts: []ResponseOption{WithElevatedLogLevel()}, level: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, level: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := logger.GetTestLogger(t)
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))

			RespondWithErrorAndLog(httptest.NewRecorder(), req, tt.status, "msg", nil, tt.opts...)

			logger.AssertLogField(t, buf, "level", tt.level)
		})
	}
}
