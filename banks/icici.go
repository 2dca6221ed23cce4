package banks

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ICICIAdapter talks to the ICICI payment API. ICICI authenticates with
// HTTP Basic credentials, signs the colon-delimited canonical string
// merchantCode:referenceNo:amount:timestamp, and names its reference fields
// after the "reference" convention rather than "transaction".
type ICICIAdapter struct {
	creds  Credentials
	client *http.Client
	logger *zap.Logger
}

func NewICICIAdapter(creds Credentials, logger *zap.Logger) *ICICIAdapter {
	return &ICICIAdapter{creds: creds, client: newBankHTTPClient(), logger: logger}
}

func (a *ICICIAdapter) Name() string { return ProviderICICI }

func (a *ICICIAdapter) headers() map[string]string {
	basic := base64.StdEncoding.EncodeToString([]byte(a.creds.APIKey + ":" + a.creds.APISecret))
	return map[string]string{
		"Authorization":   "Basic " + basic,
		"X-Merchant-Code": a.creds.MerchantID,
	}
}

func (a *ICICIAdapter) secureHash(referenceNo, amount, timestamp string) string {
	return signHMAC(a.creds.APISecret, []byte(a.creds.MerchantID+":"+referenceNo+":"+amount+":"+timestamp))
}

func (a *ICICIAdapter) CreatePayment(ctx context.Context, req *BankPaymentRequest) *BankPaymentResponse {
	amount := req.Amount.StringFixed(2)
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	payload := map[string]interface{}{
		"merchant_code": a.creds.MerchantID,
		"reference_no":  req.TransactionID,
		"amount":        amount,
		"currency_code": req.Currency,
		"payment_type":  "UPI",
		"return_url":    req.CallbackURL,
		"description":   req.Description,
		"request_time":  timestamp,
		"secure_hash":   a.secureHash(req.TransactionID, amount, timestamp),
	}
	if req.UPIID != "" {
		payload["upi_vpa"] = req.UPIID
	}

	headers := a.headers()
	headers["X-Request-Time"] = timestamp

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payment/initiate", headers, payload)
	if err != nil {
		a.logger.Warn("ICICI initiate failed, synthesizing pending response", zap.Error(err))
		return pendingFallback(req, ProviderICICI, "merchant@icici")
	}

	return &BankPaymentResponse{
		BankTransactionID:     str(body, "bank_reference_no"),
		MerchantTransactionID: req.TransactionID,
		Status:                str(body, "status"),
		Amount:                req.Amount,
		Currency:              req.Currency,
		PaymentURL:            str(body, "payment_url"),
		QRCodeData:            str(body, "qr_string"),
	}
}

func (a *ICICIAdapter) CheckStatus(ctx context.Context, bankTransactionID string) *BankPaymentResponse {
	body, err := getJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payment/inquiry/"+bankTransactionID, a.headers())
	if err != nil {
		a.logger.Warn("ICICI inquiry failed, reporting pending",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return statusUnknown(bankTransactionID)
	}

	resp := &BankPaymentResponse{
		BankTransactionID: str(body, "bank_reference_no"),
		Status:            str(body, "status"),
	}
	if amt, err := decimal.NewFromString(str(body, "amount")); err == nil {
		resp.Amount = amt
	}
	return resp
}

func (a *ICICIAdapter) Refund(ctx context.Context, bankTransactionID string, amount decimal.Decimal) *BankPaymentResponse {
	payload := map[string]interface{}{
		"original_reference": bankTransactionID,
		"refund_amount":      amount.StringFixed(2),
		"refund_reference":   "REF_ICICI_" + shortRef(),
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v1/payment/refund", a.headers(), payload)
	if err != nil {
		a.logger.Error("ICICI refund failed",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return refundFailure(bankTransactionID, "REFUND_FAILED", "failed to process refund with ICICI")
	}

	return &BankPaymentResponse{
		BankTransactionID: str(body, "refund_reference"),
		Status:            str(body, "status"),
	}
}

func (a *ICICIAdapter) VerifyWebhookSignature(payload []byte, signature string) bool {
	return verifyHMAC(a.creds.APISecret, payload, signature)
}
