package models

import "github.com/shopspring/decimal"

// OperationMode is a merchant's chosen cost/settlement model.
type OperationMode string

const (
	ModeGatewayOnly   OperationMode = "GATEWAY_ONLY"
	ModeFullProcessor OperationMode = "FULL_PROCESSOR"
	ModeHybrid        OperationMode = "HYBRID"
)

// MerchantProfile is the routing profile fetched from the merchant service.
// The gateway only reads it; merchant attributes are owned elsewhere.
type MerchantProfile struct {
	MerchantID    string        `json:"id"`
	BusinessName  string        `json:"businessName"`
	UPIID         string        `json:"upiId"`
	WebhookURL    string        `json:"webhookUrl"`
	PreferredBank string        `json:"preferredBank"`
	OperationMode OperationMode `json:"operationMode"`
}

// FeeStructure is the per-merchant fee configuration blob, stored by the
// merchant service and consumed read-only here.
type FeeStructure struct {
	SetupFee       decimal.Decimal `json:"setupFee"`
	MonthlyFee     decimal.Decimal `json:"monthlyFee"`
	TransactionFee decimal.Decimal `json:"transactionFee"`
	PercentageFee  decimal.Decimal `json:"percentageFee"`
}

// DefaultFeeStructure returns the published fee schedule for an operation mode.
func DefaultFeeStructure(mode OperationMode) FeeStructure {
	switch mode {
	case ModeFullProcessor:
		return FeeStructure{
			SetupFee:       decimal.NewFromInt(5000),
			MonthlyFee:     decimal.NewFromInt(1000),
			TransactionFee: decimal.NewFromFloat(2.00),
			PercentageFee:  decimal.NewFromFloat(1.5),
		}
	case ModeHybrid:
		// Percentage applies only to the small-ticket share of volume.
		return FeeStructure{
			SetupFee:       decimal.NewFromInt(2500),
			MonthlyFee:     decimal.NewFromInt(1500),
			TransactionFee: decimal.NewFromFloat(2.00),
			PercentageFee:  decimal.NewFromFloat(1.5),
		}
	default: // GATEWAY_ONLY
		return FeeStructure{
			SetupFee:       decimal.Zero,
			MonthlyFee:     decimal.NewFromInt(2000),
			TransactionFee: decimal.NewFromFloat(2.00),
			PercentageFee:  decimal.Zero,
		}
	}
}

// FeeEstimate is the cost breakdown returned by the fee estimator.
type FeeEstimate struct {
	Mode            OperationMode   `json:"mode"`
	Transactions    int64           `json:"transactions"`
	SetupFee        decimal.Decimal `json:"setup_fee"` // one-time, excluded from total
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	TransactionFees decimal.Decimal `json:"transaction_fees"`
	PercentageFees  decimal.Decimal `json:"percentage_fees"`
	TotalMonthlyFee decimal.Decimal `json:"total_monthly_fee"`
	EffectiveRate   decimal.Decimal `json:"effective_rate"` // percent, 4 decimal places
}

// FeeEstimateRequest is the payload for the fee estimation endpoint.
type FeeEstimateRequest struct {
	Mode               OperationMode   `json:"mode" binding:"required"`
	MonthlyVolume      decimal.Decimal `json:"monthly_volume" binding:"required"`
	AvgTransactionSize decimal.Decimal `json:"avg_transaction_size" binding:"required"`
}
