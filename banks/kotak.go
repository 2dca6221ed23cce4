package banks

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// KotakAdapter talks to the Kotak v2 payments API. Kotak signs the
// pipe-delimited canonical string merchantID|txnID|amount|timestamp, pins an
// X-API-Version header, and uses camelCase payload fields.
type KotakAdapter struct {
	creds  Credentials
	client *http.Client
	logger *zap.Logger
}

func NewKotakAdapter(creds Credentials, logger *zap.Logger) *KotakAdapter {
	return &KotakAdapter{creds: creds, client: newBankHTTPClient(), logger: logger}
}

func (a *KotakAdapter) Name() string { return ProviderKotak }

func (a *KotakAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.creds.APIKey,
		"X-Merchant-ID": a.creds.MerchantID,
		"X-API-Version": "2.0",
	}
}

func (a *KotakAdapter) signRequest(txnID, amount, timestamp string) string {
	return signHMAC(a.creds.APISecret, []byte(a.creds.MerchantID+"|"+txnID+"|"+amount+"|"+timestamp))
}

func (a *KotakAdapter) CreatePayment(ctx context.Context, req *BankPaymentRequest) *BankPaymentResponse {
	amount := req.Amount.StringFixed(2)
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	payload := map[string]interface{}{
		"merchantId":    a.creds.MerchantID,
		"transactionId": req.TransactionID,
		"amount":        amount,
		"currency":      req.Currency,
		"paymentMethod": "UPI",
		"successUrl":    req.CallbackURL,
		"failureUrl":    req.CallbackURL,
		"description":   req.Description,
		"timestamp":     timestamp,
		"signature":     a.signRequest(req.TransactionID, amount, timestamp),
	}
	if req.UPIID != "" {
		payload["upiHandle"] = req.UPIID
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/payments/v2/create", a.headers(), payload)
	if err != nil {
		a.logger.Warn("Kotak create failed, synthesizing pending response", zap.Error(err))
		return pendingFallback(req, ProviderKotak, "merchant@kotak")
	}

	return &BankPaymentResponse{
		BankTransactionID:     str(body, "transactionId"),
		MerchantTransactionID: req.TransactionID,
		Status:                str(body, "status"),
		Amount:                req.Amount,
		Currency:              req.Currency,
		PaymentURL:            str(body, "paymentUrl"),
		QRCodeData:            str(body, "qrCode"),
	}
}

func (a *KotakAdapter) CheckStatus(ctx context.Context, bankTransactionID string) *BankPaymentResponse {
	body, err := getJSON(ctx, a.client, a.creds.BaseURL+"/payments/v2/status/"+bankTransactionID, a.headers())
	if err != nil {
		a.logger.Warn("Kotak status check failed, reporting pending",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return statusUnknown(bankTransactionID)
	}

	resp := &BankPaymentResponse{
		BankTransactionID: str(body, "transactionId"),
		Status:            str(body, "status"),
	}
	if amt, err := decimal.NewFromString(str(body, "amount")); err == nil {
		resp.Amount = amt
	}
	return resp
}

func (a *KotakAdapter) Refund(ctx context.Context, bankTransactionID string, amount decimal.Decimal) *BankPaymentResponse {
	payload := map[string]interface{}{
		"transactionId": bankTransactionID,
		"refundAmount":  amount.StringFixed(2),
		"refundId":      "REF_KOTAK_" + shortRef(),
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/payments/v2/refund", a.headers(), payload)
	if err != nil {
		a.logger.Error("Kotak refund failed",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return refundFailure(bankTransactionID, "REFUND_FAILED", "failed to process refund with Kotak")
	}

	return &BankPaymentResponse{
		BankTransactionID: str(body, "refundId"),
		Status:            str(body, "status"),
	}
}

func (a *KotakAdapter) VerifyWebhookSignature(payload []byte, signature string) bool {
	return verifyHMAC(a.creds.APISecret, payload, signature)
}
