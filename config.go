package main

import (
	"os"
	"strings"

	"github.com/clickpaysolution/PaymentGateway/banks"
)

// Config holds all configuration for the payment gateway.
type Config struct {
	Port                string
	DefaultBankProvider string

	MerchantServiceURL string
	UPICollectURL      string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers        []string
	PaymentEventsTopic  string
	PaymentRequestTopic string
	KafkaGroupID        string

	PaymentSNSTopicARN string

	BankCredentials map[string]banks.Credentials
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "8085"),
		DefaultBankProvider: getEnv("DEFAULT_BANK_PROVIDER", banks.DefaultProvider),

		MerchantServiceURL: getEnv("MERCHANT_SERVICE_URL", "http://localhost:8086"),
		UPICollectURL:      os.Getenv("UPI_COLLECT_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		PaymentEventsTopic:  getEnv("PAYMENT_EVENTS_TOPIC", "payment-events"),
		PaymentRequestTopic: os.Getenv("PAYMENT_REQUESTS_TOPIC"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "payment-gateway"),

		PaymentSNSTopicARN: os.Getenv("PAYMENT_SNS_TOPIC_ARN"),

		BankCredentials: map[string]banks.Credentials{
			banks.ProviderHDFC:  bankCredentials("HDFC", "https://upi.hdfcbank.com"),
			banks.ProviderICICI: bankCredentials("ICICI", "https://api.icicibank.com/upi"),
			banks.ProviderKotak: bankCredentials("KOTAK", "https://netbanking.kotak.com/upi"),
			banks.ProviderAxis:  bankCredentials("AXIS", "https://api.axisbank.com/upi"),
		},
	}
}

// bankCredentials reads one provider's credential set, e.g. HDFC_BASE_URL,
// HDFC_API_KEY, HDFC_API_SECRET, HDFC_MERCHANT_ID.
func bankCredentials(prefix, defaultBaseURL string) banks.Credentials {
	return banks.Credentials{
		BaseURL:    getEnv(prefix+"_BASE_URL", defaultBaseURL),
		APIKey:     os.Getenv(prefix + "_API_KEY"),
		APISecret:  os.Getenv(prefix + "_API_SECRET"),
		MerchantID: os.Getenv(prefix + "_MERCHANT_ID"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
