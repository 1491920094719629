package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{
		"/health",
		"/api/v1/register",
		"/api/v1/login",
		"/api/v1/logout",
		"/api/v1/account",
		"/api/v1/deposits",
		"/api/v1/withdrawals",
		"/api/v1/transactions",
		"/api/v1/advice",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}

func TestGetSwagger_ReturnsIndependentCopies(t *testing.T) {
	first, err := GetSwagger()
	require.NoError(t, err)
	first.Servers = nil

	second, err := GetSwagger()
	require.NoError(t, err)
	assert.NotEmpty(t, second.Servers)
}

func TestDocsRoutes(t *testing.T) {
	mux := http.NewServeMux()
	require.NoError(t, RegisterDocsRoutes(mux))

	t.Run("root redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/docs", rec.Header().Get("Location"))
	})

	t.Run("swagger ui", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "swagger-ui")
	})

	t.Run("openapi document", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "3.0.3", body["openapi"])
	})
}

func TestRequestValidator(t *testing.T) {
	validate, err := RequestValidator(testLogger())
	require.NoError(t, err)

	var reached bool
	handler := validate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		// the validator must leave the body readable
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // test handler
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))

	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
		wantStatus  int
	}{
		{
			name:        "valid deposit",
			method:      http.MethodPost,
			target:      "/api/v1/deposits",
			body:        `{"amount":"250.00","description":"Paycheck"}`,
			contentType: "application/json",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "deposit without amount",
			method:      http.MethodPost,
			target:      "/api/v1/deposits",
			body:        `{"description":"Paycheck"}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "numeric amount",
			method:      http.MethodPost,
			target:      "/api/v1/withdrawals",
			body:        `{"amount":250}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "missing body",
			method:      http.MethodPost,
			target:      "/api/v1/login",
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "login missing password",
			method:      http.MethodPost,
			target:      "/api/v1/login",
			body:        `{"username":"alice"}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:       "limit out of range",
			method:     http.MethodGet,
			target:     "/api/v1/transactions?limit=0",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "limit not a number",
			method:     http.MethodGet,
			target:     "/api/v1/transactions?limit=ten",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "valid limit",
			method:     http.MethodGet,
			target:     "/api/v1/transactions?limit=5",
			wantStatus: http.StatusOK,
		},
		{
			name:       "undocumented path passes through",
			method:     http.MethodGet,
			target:     "/docs",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusBadRequest {
				assert.False(t, reached)
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, ErrorCodeInvalidRequest, resp.Error)
				assert.NotEmpty(t, resp.Message)
				return
			}
			assert.True(t, reached)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusPaymentRequired, ErrorCodeInsufficientFunds, "no money")

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"insufficient_funds","message":"no money"}`, rec.Body.String())
}
