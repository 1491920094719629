package advice

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benx421/bankmt/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() models.AdviceRequest {
	return models.AdviceRequest{
		Transactions: []models.AdviceTransaction{
			{Description: "Groceries", Amount: decimal.RequireFromString("-40.50")},
			{Description: "Salary", Amount: decimal.RequireFromString("250")},
		},
		Balance: decimal.RequireFromString("1209.50"),
	}
}

func TestClient_RequestAdvice(t *testing.T) {
	var got requestPayload
	var auth, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"advice":"Cut back on groceries."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key-123", time.Second, testLogger())
	advice, err := client.RequestAdvice(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Cut back on groceries.", advice)
	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "application/json", contentType)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "Groceries", got.Transactions[0].Description)
	assert.InDelta(t, -40.5, got.Transactions[0].Amount, 1e-9)
	assert.InDelta(t, 250.0, got.Transactions[1].Amount, 1e-9)
	assert.InDelta(t, 1209.5, got.AccountBalance, 1e-9)
}

func TestClient_NoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"advice":"ok"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", time.Second, testLogger()).RequestAdvice(context.Background(), sampleRequest())
	assert.NoError(t, err)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: "status 500",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantErr: "decode",
		},
		{
			name: "empty advice",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"advice":""}`))
			},
			wantErr: ErrEmptyAdvice.Error(),
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
			wantErr: "advice request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "", 100*time.Millisecond, testLogger())
			_, err := client.RequestAdvice(context.Background(), sampleRequest())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", 100*time.Millisecond, testLogger())
	_, err := client.RequestAdvice(context.Background(), sampleRequest())
	assert.Error(t, err)
}
