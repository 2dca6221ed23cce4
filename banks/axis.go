package banks

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AxisAdapter talks to the Axis v2 payments API, the designated default
// provider. Axis computes its checksum over txnID|merchantID|amount|timestamp
// (transaction first), sends a fresh X-Request-ID per call, and prefixes its
// response fields with txn.
type AxisAdapter struct {
	creds  Credentials
	client *http.Client
	logger *zap.Logger
}

func NewAxisAdapter(creds Credentials, logger *zap.Logger) *AxisAdapter {
	return &AxisAdapter{creds: creds, client: newBankHTTPClient(), logger: logger}
}

func (a *AxisAdapter) Name() string { return ProviderAxis }

func (a *AxisAdapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.creds.APIKey,
		"X-Merchant-ID": a.creds.MerchantID,
		"X-Request-ID":  uuid.NewString(),
	}
}

func (a *AxisAdapter) checksum(txnID, amount, timestamp string) string {
	return signHMAC(a.creds.APISecret, []byte(txnID+"|"+a.creds.MerchantID+"|"+amount+"|"+timestamp))
}

func (a *AxisAdapter) CreatePayment(ctx context.Context, req *BankPaymentRequest) *BankPaymentResponse {
	amount := req.Amount.StringFixed(2)
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	payload := map[string]interface{}{
		"merchantId":  a.creds.MerchantID,
		"orderId":     req.TransactionID,
		"amount":      amount,
		"currency":    req.Currency,
		"paymentMode": "UPI",
		"returnUrl":   req.CallbackURL,
		"description": req.Description,
		"timestamp":   timestamp,
		"checksum":    a.checksum(req.TransactionID, amount, timestamp),
	}
	if req.UPIID != "" {
		payload["vpa"] = req.UPIID
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v2/payments/initiate", a.headers(), payload)
	if err != nil {
		a.logger.Warn("Axis initiate failed, synthesizing pending response", zap.Error(err))
		return pendingFallback(req, ProviderAxis, "merchant@axis")
	}

	return &BankPaymentResponse{
		BankTransactionID:     str(body, "txnId"),
		MerchantTransactionID: req.TransactionID,
		Status:                str(body, "txnStatus"),
		Amount:                req.Amount,
		Currency:              req.Currency,
		PaymentURL:            str(body, "paymentLink"),
		QRCodeData:            str(body, "qrData"),
	}
}

func (a *AxisAdapter) CheckStatus(ctx context.Context, bankTransactionID string) *BankPaymentResponse {
	body, err := getJSON(ctx, a.client, a.creds.BaseURL+"/api/v2/payments/status/"+bankTransactionID, a.headers())
	if err != nil {
		a.logger.Warn("Axis status check failed, reporting pending",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return statusUnknown(bankTransactionID)
	}

	resp := &BankPaymentResponse{
		BankTransactionID: str(body, "txnId"),
		Status:            str(body, "txnStatus"),
	}
	if amt, err := decimal.NewFromString(str(body, "amount")); err == nil {
		resp.Amount = amt
	}
	return resp
}

func (a *AxisAdapter) Refund(ctx context.Context, bankTransactionID string, amount decimal.Decimal) *BankPaymentResponse {
	payload := map[string]interface{}{
		"origTxnId":    bankTransactionID,
		"refundAmount": amount.StringFixed(2),
		"refundId":     "REF_AXIS_" + shortRef(),
	}

	body, err := postJSON(ctx, a.client, a.creds.BaseURL+"/api/v2/payments/refund", a.headers(), payload)
	if err != nil {
		a.logger.Error("Axis refund failed",
			zap.String("bank_transaction_id", bankTransactionID), zap.Error(err))
		return refundFailure(bankTransactionID, "REFUND_FAILED", "failed to process refund with Axis")
	}

	return &BankPaymentResponse{
		BankTransactionID: str(body, "refundId"),
		Status:            str(body, "txnStatus"),
	}
}

func (a *AxisAdapter) VerifyWebhookSignature(payload []byte, signature string) bool {
	return verifyHMAC(a.creds.APISecret, payload, signature)
}
