package banks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func testRequest() *BankPaymentRequest {
	return &BankPaymentRequest{
		TransactionID: "TXN1700000000000ABCDEF",
		Amount:        decimal.NewFromFloat(499.50),
		Currency:      "INR",
		CallbackURL:   "https://merchant.example/callback",
		Description:   "Order 42",
	}
}

func allAdapters(creds Credentials) []BankAdapter {
	logger := testLogger()
	return []BankAdapter{
		NewHDFCAdapter(creds, logger),
		NewICICIAdapter(creds, logger),
		NewKotakAdapter(creds, logger),
		NewAxisAdapter(creds, logger),
	}
}

func TestCreatePaymentSuccessHDFC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payments/create", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "MERCH1", r.Header.Get("X-Merchant-ID"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MERCH1", body["merchant_id"])
		assert.Equal(t, "499.50", body["amount"])
		assert.NotEmpty(t, body["signature"])

		json.NewEncoder(w).Encode(map[string]string{
			"transaction_id": "HDFC_99887766",
			"status":         "PENDING",
			"payment_url":    "https://hdfc.example/pay/99887766",
			"qr_code":        "upi://pay?pa=merchant@hdfc&am=499.50",
		})
	}))
	defer srv.Close()

	a := NewHDFCAdapter(Credentials{BaseURL: srv.URL, APIKey: "key-1", APISecret: "sec-1", MerchantID: "MERCH1"}, testLogger())
	resp := a.CreatePayment(context.Background(), testRequest())

	assert.Equal(t, "HDFC_99887766", resp.BankTransactionID)
	assert.Equal(t, BankStatusPending, resp.Status)
	assert.Equal(t, "https://hdfc.example/pay/99887766", resp.PaymentURL)
	assert.NotEmpty(t, resp.QRCodeData)
}

func TestCreatePaymentSuccessAxis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/payments/initiate", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		json.NewEncoder(w).Encode(map[string]string{
			"txnId":       "AXIS_12345678",
			"txnStatus":   "PENDING",
			"paymentLink": "https://axis.example/pay/12345678",
		})
	}))
	defer srv.Close()

	a := NewAxisAdapter(Credentials{BaseURL: srv.URL, APIKey: "key-4", APISecret: "sec-4", MerchantID: "MERCH1"}, testLogger())
	resp := a.CreatePayment(context.Background(), testRequest())

	assert.Equal(t, "AXIS_12345678", resp.BankTransactionID)
	assert.Equal(t, "https://axis.example/pay/12345678", resp.PaymentURL)
}

// When the bank API is unreachable every adapter must synthesize a pending
// response with a trackable id and a complete payment URI rather than fail
// the payment.
func TestCreatePaymentFallbackWhenBankUnreachable(t *testing.T) {
	creds := Credentials{BaseURL: "http://127.0.0.1:1", APISecret: "sec", MerchantID: "MERCH1"}

	for _, a := range allAdapters(creds) {
		req := testRequest()
		before := time.Now()
		resp := a.CreatePayment(context.Background(), req)

		assert.Equal(t, BankStatusPending, resp.Status, a.Name())
		assert.True(t, strings.HasPrefix(resp.BankTransactionID, a.Name()+"_"), a.Name())
		assert.Len(t, resp.BankTransactionID, len(a.Name())+9, a.Name())
		assert.Equal(t, req.TransactionID, resp.MerchantTransactionID, a.Name())

		// The synthesized link must carry the full parameter set a UPI app
		// expects, byte for byte.
		wantURL := "upi://pay?pa=merchant@" + strings.ToLower(a.Name()) +
			"&am=499.50&tr=" + req.TransactionID + "&tn=Order 42&cu=INR"
		assert.Equal(t, wantURL, resp.PaymentURL, a.Name())

		expiry := resp.ExpiresAt.Sub(before)
		assert.InDelta(t, PaymentExpiry.Seconds(), expiry.Seconds(), 5, a.Name())
	}
}

func TestCreatePaymentFallbackDefaultsDescription(t *testing.T) {
	creds := Credentials{BaseURL: "http://127.0.0.1:1", APISecret: "sec", MerchantID: "MERCH1"}

	req := testRequest()
	req.Description = ""
	resp := NewAxisAdapter(creds, testLogger()).CreatePayment(context.Background(), req)

	assert.Equal(t, "upi://pay?pa=merchant@axis&am=499.50&tr="+req.TransactionID+"&tn=Payment&cu=INR",
		resp.PaymentURL)
}

func TestCheckStatusFallbackReportsPending(t *testing.T) {
	creds := Credentials{BaseURL: "http://127.0.0.1:1", APISecret: "sec"}

	for _, a := range allAdapters(creds) {
		resp := a.CheckStatus(context.Background(), "BANK_TXN_1")
		assert.Equal(t, BankStatusPending, resp.Status, a.Name())
		assert.Equal(t, "BANK_TXN_1", resp.BankTransactionID, a.Name())
	}
}

// Refunds are the one operation that must surface failure instead of
// simulating success.
func TestRefundFallbackReportsFailure(t *testing.T) {
	creds := Credentials{BaseURL: "http://127.0.0.1:1", APISecret: "sec"}

	for _, a := range allAdapters(creds) {
		resp := a.Refund(context.Background(), "BANK_TXN_1", decimal.NewFromInt(100))
		assert.Equal(t, BankStatusFailed, resp.Status, a.Name())
		assert.Equal(t, "REFUND_FAILED", resp.ErrorCode, a.Name())
		assert.NotEmpty(t, resp.ErrorMessage, a.Name())
	}
}

func TestCheckStatusSuccessICICI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payment/inquiry/ICICI_55443322", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"bank_reference_no": "ICICI_55443322",
			"status":            "SUCCESS",
			"amount":            "499.50",
		})
	}))
	defer srv.Close()

	a := NewICICIAdapter(Credentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s", MerchantID: "M"}, testLogger())
	resp := a.CheckStatus(context.Background(), "ICICI_55443322")

	assert.Equal(t, BankStatusSuccess, resp.Status)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(499.50)))
}

func TestRefundSuccessKotak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/v2/refund", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"refundId": "REF_KOTAK_1",
			"status":   "SUCCESS",
		})
	}))
	defer srv.Close()

	a := NewKotakAdapter(Credentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s", MerchantID: "M"}, testLogger())
	resp := a.Refund(context.Background(), "KOTAK_11223344", decimal.NewFromInt(250))

	assert.Equal(t, BankStatusSuccess, resp.Status)
	assert.Equal(t, "REF_KOTAK_1", resp.BankTransactionID)
}

func TestWebhookSignatureVerificationPerProvider(t *testing.T) {
	payload := []byte(`{"txnId":"AXIS_1","txnStatus":"SUCCESS"}`)

	axis := NewAxisAdapter(Credentials{APISecret: "axis-secret"}, testLogger())
	hdfc := NewHDFCAdapter(Credentials{APISecret: "hdfc-secret"}, testLogger())

	sig := signHMAC("axis-secret", payload)
	assert.True(t, axis.VerifyWebhookSignature(payload, sig))
	// Same payload signed with another provider's secret must not verify.
	assert.False(t, hdfc.VerifyWebhookSignature(payload, sig))
}
