package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clickpaysolution/PaymentGateway/banks"
	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const profileCacheTTL = 5 * time.Minute

// MerchantProfileFetcher supplies a merchant's routing profile. The
// orchestrator depends on this interface so tests can inject fixtures.
type MerchantProfileFetcher interface {
	GetProfile(ctx context.Context, merchantID string) *models.MerchantProfile
}

// MerchantClient fetches routing profiles from the merchant service with an
// optional Redis cache in front. Profile lookups must never block payment
// creation, so every failure path degrades to a configured default profile.
type MerchantClient struct {
	baseURL         string
	client          *http.Client
	cache           *redis.Client // nil disables caching
	defaultProvider string
	logger          *zap.Logger
}

func NewMerchantClient(baseURL, defaultProvider string, cache *redis.Client, logger *zap.Logger) *MerchantClient {
	return &MerchantClient{
		baseURL:         baseURL,
		client:          &http.Client{Timeout: 10 * time.Second},
		cache:           cache,
		defaultProvider: defaultProvider,
		logger:          logger,
	}
}

// GetProfile returns the merchant's routing profile, or the default profile
// when the merchant service or cache is unavailable. It never fails.
func (c *MerchantClient) GetProfile(ctx context.Context, merchantID string) *models.MerchantProfile {
	cacheKey := "merchant_profile:" + merchantID

	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			var profile models.MerchantProfile
			if err := json.Unmarshal([]byte(raw), &profile); err == nil {
				return c.normalize(&profile, merchantID)
			}
		}
	}

	profile, err := c.fetch(ctx, merchantID)
	if err != nil {
		c.logger.Warn("Merchant profile fetch failed, using default routing profile",
			zap.String("merchant_id", merchantID), zap.Error(err))
		return c.defaultProfile(merchantID)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(profile); err == nil {
			if err := c.cache.Set(ctx, cacheKey, raw, profileCacheTTL).Err(); err != nil {
				c.logger.Warn("Failed to cache merchant profile", zap.Error(err))
			}
		}
	}

	return c.normalize(profile, merchantID)
}

func (c *MerchantClient) fetch(ctx context.Context, merchantID string) (*models.MerchantProfile, error) {
	url := fmt.Sprintf("%s/merchants/%s/info", c.baseURL, merchantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("merchant service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var profile models.MerchantProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// normalize fills gaps in a fetched profile so downstream code never deals
// with empty routing fields.
func (c *MerchantClient) normalize(p *models.MerchantProfile, merchantID string) *models.MerchantProfile {
	if p.MerchantID == "" {
		p.MerchantID = merchantID
	}
	p.PreferredBank = strings.ToUpper(strings.TrimSpace(p.PreferredBank))
	if p.PreferredBank == "" {
		p.PreferredBank = c.defaultProvider
	}
	if p.UPIID == "" {
		p.UPIID = "merchant@" + strings.ToLower(p.PreferredBank)
	}
	return p
}

// defaultProfile is the hard-coded safe fallback applied when the merchant
// service cannot be reached. The provider comes from configuration so the
// fallback routing is auditable, not buried in a literal.
func (c *MerchantClient) defaultProfile(merchantID string) *models.MerchantProfile {
	provider := c.defaultProvider
	if provider == "" {
		provider = banks.DefaultProvider
	}
	return &models.MerchantProfile{
		MerchantID:    merchantID,
		BusinessName:  "Default Merchant",
		UPIID:         "merchant@" + strings.ToLower(provider),
		PreferredBank: provider,
		OperationMode: models.ModeGatewayOnly,
	}
}
