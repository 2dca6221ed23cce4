package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clickpaysolution/PaymentGateway/banks"
	"github.com/clickpaysolution/PaymentGateway/services"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetProfileFromMerchantService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchants/m1/info", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"id":            "m1",
			"businessName":  "Chai Point",
			"upiId":         "chaipoint@icici",
			"preferredBank": "icici",
		})
	}))
	defer srv.Close()

	logger, _ := zap.NewDevelopment()
	client := services.NewMerchantClient(srv.URL, banks.ProviderAxis, nil, logger)

	profile := client.GetProfile(context.Background(), "m1")
	assert.Equal(t, "m1", profile.MerchantID)
	assert.Equal(t, "chaipoint@icici", profile.UPIID)
	// Provider names are normalized to their canonical uppercase form.
	assert.Equal(t, "ICICI", profile.PreferredBank)
}

func TestGetProfileFallsBackWhenUnavailable(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	client := services.NewMerchantClient("http://127.0.0.1:1", banks.ProviderAxis, nil, logger)

	profile := client.GetProfile(context.Background(), "m1")
	assert.NotNil(t, profile)
	assert.Equal(t, "m1", profile.MerchantID)
	assert.Equal(t, banks.ProviderAxis, profile.PreferredBank)
	assert.Equal(t, "merchant@axis", profile.UPIID)
}

func TestGetProfileFillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"businessName": "Bare Merchant"})
	}))
	defer srv.Close()

	logger, _ := zap.NewDevelopment()
	client := services.NewMerchantClient(srv.URL, banks.ProviderKotak, nil, logger)

	profile := client.GetProfile(context.Background(), "m7")
	assert.Equal(t, "m7", profile.MerchantID)
	assert.Equal(t, banks.ProviderKotak, profile.PreferredBank)
	assert.Equal(t, "merchant@kotak", profile.UPIID)
}
