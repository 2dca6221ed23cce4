package banks

import (
	"encoding/json"
	"fmt"
)

// WebhookSchema names the provider-specific fields a webhook payload uses
// for the bank transaction id and the reported status. Field naming is a
// provider convention and must match the upstream exactly.
type WebhookSchema struct {
	SignatureHeader string
	TxnIDField      string
	StatusField     string
}

// WebhookSchemas is the closed per-provider schema table.
var WebhookSchemas = map[string]WebhookSchema{
	ProviderHDFC:  {SignatureHeader: "X-HDFC-Signature", TxnIDField: "transaction_id", StatusField: "status"},
	ProviderICICI: {SignatureHeader: "X-ICICI-Signature", TxnIDField: "bank_reference_no", StatusField: "transaction_status"},
	ProviderKotak: {SignatureHeader: "X-KOTAK-Signature", TxnIDField: "transactionId", StatusField: "status"},
	ProviderAxis:  {SignatureHeader: "X-AXIS-Signature", TxnIDField: "txnId", StatusField: "txnStatus"},
}

// WebhookEvent is the normalized form of a verified provider webhook.
type WebhookEvent struct {
	Provider          string
	BankTransactionID string
	Status            string
}

// ParseWebhook extracts the bank transaction id and status from a raw,
// already-verified payload using the provider's schema.
func ParseWebhook(provider string, payload []byte) (*WebhookEvent, error) {
	schema, ok := WebhookSchemas[provider]
	if !ok {
		return nil, fmt.Errorf("unknown webhook provider %q", provider)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	txnID := str(body, schema.TxnIDField)
	status := str(body, schema.StatusField)
	if txnID == "" || status == "" {
		return nil, fmt.Errorf("webhook payload missing %s or %s", schema.TxnIDField, schema.StatusField)
	}

	return &WebhookEvent{Provider: provider, BankTransactionID: txnID, Status: status}, nil
}
