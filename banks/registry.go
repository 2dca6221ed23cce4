package banks

import (
	"strings"

	"go.uber.org/zap"
)

// displayNames maps canonical provider names to their user-facing labels.
var displayNames = map[string]string{
	ProviderHDFC:  "HDFC Bank",
	ProviderICICI: "ICICI Bank",
	ProviderKotak: "Kotak Mahindra Bank",
	ProviderAxis:  "Axis Bank",
}

// DisplayName returns the user-facing label for a canonical provider name,
// or the name itself if the provider is unknown.
func DisplayName(provider string) string {
	if d, ok := displayNames[strings.ToUpper(strings.TrimSpace(provider))]; ok {
		return d
	}
	return provider
}

// Registry maps provider names to adapter instances. The provider set is
// fixed and finite, so lookup is a static table rather than any kind of
// plugin discovery.
type Registry struct {
	adapters map[string]BankAdapter
}

// NewRegistry builds a registry over the four supported providers.
func NewRegistry(hdfc, icici, kotak, axis BankAdapter) *Registry {
	return &Registry{
		adapters: map[string]BankAdapter{
			ProviderHDFC:  hdfc,
			ProviderICICI: icici,
			ProviderKotak: kotak,
			ProviderAxis:  axis,
		},
	}
}

// NewDefaultRegistry wires the four concrete adapters from their credentials.
func NewDefaultRegistry(creds map[string]Credentials, logger *zap.Logger) *Registry {
	return NewRegistry(
		NewHDFCAdapter(creds[ProviderHDFC], logger),
		NewICICIAdapter(creds[ProviderICICI], logger),
		NewKotakAdapter(creds[ProviderKotak], logger),
		NewAxisAdapter(creds[ProviderAxis], logger),
	)
}

// Resolve returns the adapter for the given provider name. The match is
// case-insensitive; unknown or empty names resolve to the DefaultProvider
// adapter so resolution never fails.
func (r *Registry) Resolve(provider string) BankAdapter {
	if a, ok := r.adapters[strings.ToUpper(strings.TrimSpace(provider))]; ok {
		return a
	}
	return r.adapters[DefaultProvider]
}

// Known reports whether the provider name maps to a registered adapter.
// The generic webhook endpoint uses this to reject unrecognized banks
// instead of silently falling back to the default.
func (r *Registry) Known(provider string) bool {
	_, ok := r.adapters[strings.ToUpper(strings.TrimSpace(provider))]
	return ok
}
