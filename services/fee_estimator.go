package services

import (
	"net/http"

	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/shopspring/decimal"
)

var (
	perTransactionFee = decimal.NewFromFloat(2.00)
	processorRate     = decimal.NewFromFloat(0.015) // 1.5%
	hybridSmallShare  = decimal.NewFromFloat(0.3)   // share of volume on the percentage-fee path
)

// FeeEstimator computes monthly cost breakdowns from a merchant's operating
// mode and volume assumptions.
type FeeEstimator struct{}

func NewFeeEstimator() *FeeEstimator { return &FeeEstimator{} }

// Estimate derives the fee breakdown. The setup fee is a one-time cost and
// deliberately excluded from the recurring total.
func (e *FeeEstimator) Estimate(mode models.OperationMode, monthlyVolume, avgTransactionSize decimal.Decimal) (*models.FeeEstimate, *ServiceError) {
	if !monthlyVolume.IsPositive() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "monthly volume must be greater than zero"}
	}
	if !avgTransactionSize.IsPositive() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "average transaction size must be greater than zero"}
	}

	transactions := monthlyVolume.Div(avgTransactionSize).Ceil().IntPart()
	transactionFees := perTransactionFee.Mul(decimal.NewFromInt(transactions))

	var setupFee, monthlyFee, percentageFees decimal.Decimal
	switch mode {
	case models.ModeGatewayOnly:
		setupFee = decimal.Zero
		monthlyFee = decimal.NewFromInt(2000)
		percentageFees = decimal.Zero
	case models.ModeFullProcessor:
		setupFee = decimal.NewFromInt(5000)
		monthlyFee = decimal.NewFromInt(1000)
		percentageFees = monthlyVolume.Mul(processorRate)
	case models.ModeHybrid:
		setupFee = decimal.NewFromInt(2500)
		monthlyFee = decimal.NewFromInt(1500)
		percentageFees = monthlyVolume.Mul(hybridSmallShare).Mul(processorRate)
	default:
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "unknown operation mode: " + string(mode)}
	}

	total := monthlyFee.Add(transactionFees).Add(percentageFees)
	effectiveRate := total.Div(monthlyVolume).Mul(decimal.NewFromInt(100)).Round(4)

	return &models.FeeEstimate{
		Mode:            mode,
		Transactions:    transactions,
		SetupFee:        setupFee,
		MonthlyFee:      monthlyFee,
		TransactionFees: transactionFees,
		PercentageFees:  percentageFees,
		TotalMonthlyFee: total,
		EffectiveRate:   effectiveRate,
	}, nil
}
