package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recvlabs/recv/internal/config"
	paymentdomain "github.com/recvlabs/recv/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ReCV-PRO-abc-1893456000", req.OrderID)
		assert.Equal(t, int64(4900), req.Amount)

		json.NewEncoder(w).Encode(paymentdomain.VerificationResult{
			Status: paymentdomain.StatusCompleted,
			Amount: req.Amount,
		})
	}))
	defer srv.Close()

	client, err := NewClient(config.Config{
		Payment: config.PaymentConfig{VerifyURL: srv.URL, APIKey: "secret"},
	})
	require.NoError(t, err)

	result, err := client.VerifyTransaction(context.Background(), "ReCV-PRO-abc-1893456000", 4900)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusCompleted, result.Status)
	assert.Equal(t, int64(4900), result.Amount)
}

func TestVerifyTransactionProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(config.Config{
		Payment: config.PaymentConfig{VerifyURL: srv.URL},
	})
	require.NoError(t, err)

	_, err = client.VerifyTransaction(context.Background(), "ReCV-PRO-abc-1893456000", 4900)
	assert.ErrorContains(t, err, "status 502")
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(config.Config{})
	assert.Error(t, err)
}
