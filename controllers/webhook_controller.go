package controllers

import (
	"net/http"

	"github.com/clickpaysolution/PaymentGateway/banks"
	"github.com/clickpaysolution/PaymentGateway/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// genericSignatureHeader carries the HMAC on the provider-agnostic webhook
// endpoint, where the provider itself comes from X-Bank-Name.
const (
	genericSignatureHeader = "X-Signature"
	bankNameHeader         = "X-Bank-Name"
)

// WebhookController ingests asynchronous status callbacks from the bank
// providers. Verification always runs over the raw request bytes; the JSON is
// only parsed after the signature checks out.
type WebhookController struct {
	paymentService services.PaymentService
	registry       *banks.Registry
	logger         *zap.Logger
}

// NewWebhookController creates a new WebhookController.
func NewWebhookController(svc services.PaymentService, registry *banks.Registry, logger *zap.Logger) *WebhookController {
	return &WebhookController{paymentService: svc, registry: registry, logger: logger}
}

// HandleHDFC handles POST /webhooks/hdfc
func (wc *WebhookController) HandleHDFC(ctx *gin.Context) {
	wc.handle(ctx, banks.ProviderHDFC, banks.WebhookSchemas[banks.ProviderHDFC].SignatureHeader)
}

// HandleICICI handles POST /webhooks/icici
func (wc *WebhookController) HandleICICI(ctx *gin.Context) {
	wc.handle(ctx, banks.ProviderICICI, banks.WebhookSchemas[banks.ProviderICICI].SignatureHeader)
}

// HandleKotak handles POST /webhooks/kotak
func (wc *WebhookController) HandleKotak(ctx *gin.Context) {
	wc.handle(ctx, banks.ProviderKotak, banks.WebhookSchemas[banks.ProviderKotak].SignatureHeader)
}

// HandleAxis handles POST /webhooks/axis
func (wc *WebhookController) HandleAxis(ctx *gin.Context) {
	wc.handle(ctx, banks.ProviderAxis, banks.WebhookSchemas[banks.ProviderAxis].SignatureHeader)
}

// HandleGeneric handles POST /webhooks/bank. The provider is named by the
// X-Bank-Name header; unknown providers are rejected rather than routed to
// the default adapter.
func (wc *WebhookController) HandleGeneric(ctx *gin.Context) {
	provider := ctx.GetHeader(bankNameHeader)
	if provider == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": bankNameHeader + " header is required"})
		return
	}
	if !wc.registry.Known(provider) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown bank: " + provider})
		return
	}
	wc.handle(ctx, wc.registry.Resolve(provider).Name(), genericSignatureHeader)
}

func (wc *WebhookController) handle(ctx *gin.Context, provider, signatureHeader string) {
	payload, err := ctx.GetRawData()
	if err != nil || len(payload) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "empty webhook payload"})
		return
	}

	signature := ctx.GetHeader(signatureHeader)
	adapter := wc.registry.Resolve(provider)
	if !adapter.VerifyWebhookSignature(payload, signature) {
		wc.logger.Warn("Webhook signature verification failed",
			zap.String("provider", provider),
			zap.String("remote_addr", ctx.ClientIP()))
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	event, err := banks.ParseWebhook(provider, payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if svcErr := wc.paymentService.ApplyWebhookEvent(ctx.Request.Context(), event); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
