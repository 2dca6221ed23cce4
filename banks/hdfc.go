package banks

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HDFCAdapter talks to the HDFC UPI gateway. HDFC signs requests with an
// HMAC over the undelimited concatenation merchantID+txnID+amount+timestamp
// and uses snake_case response fields.
type HDFCAdapter struct {
	creds  Credentials
	client *http.Client
	logger *zap.Logger
}

func NewHDFCAdapter(creds Credentials, logger *zap.Logger) *HDFCAdapter {
	return &HDFCAdapter{creds: creds, client: newBankHTTPClient(), logger: logger}
}

func (a *HDFCAdapter) Name() string { return ProviderHDFC }

func (a *HDFCAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.creds.APIKey,
		"X-Merchant-ID": a.creds.MerchantID,
	}
}

func (a *HDFCAdapter) signRequest(txnID, amount, timestamp string) string {
	return signHMAC(a.creds.APISecret, []byte(a.creds.MerchantID+txnID+amount+timestamp))
}

func (a *HDFCAdapter) CreatePayment(ctx context.Context, req *BankPaymentRequest) *BankPaymentResponse {
	amount := req.Amount.StringFixed(2)
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	payload := map[string]interface{}{
		"merchant_id":    a.creds.MerchantID,
		"order_id":       req.TransactionID,
		"amount":         amount,
		"currency":       req.Currency,
		"payment_method": "UPI",
		"callback_url":   req.CallbackURL,
		"description":    req.Description,
		"timestamp":      timestamp,
		"signature":      a.signRequest(req.TransactionID, amount, timestamp),
	}
	if req.UPIID != "" {
		payload["upi_id"] = req.UPIID
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payments/create", a.headers(), payload)
	if err != nil {
		a.logger.Warn("HDFC create failed, synthesizing pending response", zap.Error(err))
		return pendingFallback(req, ProviderHDFC, "merchant@hdfc")
	}

	return &BankPaymentResponse{
		BankTransactionID:     str(body, "transaction_id"),
		MerchantTransactionID: req.TransactionID,
		Status:                str(body, "status"),
		Amount:                req.Amount,
		Currency:              req.Currency,
		PaymentURL:            str(body, "payment_url"),
		QRCodeData:            str(body, "qr_code"),
	}
}

func (a *HDFCAdapter) CheckStatus(ctx context.Context, bankTransactionID string) *BankPaymentResponse {
	body, err := getJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payments/status/"+bankTransactionID, a.headers())
	if err != nil {
		a.logger.Warn("HDFC status check failed, reporting pending",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return statusUnknown(bankTransactionID)
	}

	resp := &BankPaymentResponse{
		BankTransactionID: str(body, "transaction_id"),
		Status:            str(body, "status"),
	}
	if amt, err := decimal.NewFromString(str(body, "amount")); err == nil {
		resp.Amount = amt
	}
	return resp
}

func (a *HDFCAdapter) Refund(ctx context.Context, bankTransactionID string, amount decimal.Decimal) *BankPaymentResponse {
	payload := map[string]interface{}{
		"transaction_id": bankTransactionID,
		"refund_amount":  amount.StringFixed(2),
		"refund_id":      "REF_" + shortRef(),
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payments/refund", a.headers(), payload)
	if err != nil {
		a.logger.Error("HDFC refund failed",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return refundFailure(bankTransactionID, "REFUND_FAILED", "failed to process refund with HDFC")
	}

	return &BankPaymentResponse{
		BankTransactionID: str(body, "refund_id"),
		Status:            str(body, "status"),
	}
}

func (a *HDFCAdapter) VerifyWebhookSignature(payload []byte, signature string) bool {
	return verifyHMAC(a.creds.APISecret, payload, signature)
}
