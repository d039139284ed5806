package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
	razorpayProvider "github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/provider/razorpay"
	stripeProvider "github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/provider/stripe"
)

// Factory creates payment gateways based on the provider type
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns a payment gateway based on the provider type
func (f *Factory) GetProvider(providerType provider.ProviderType) (provider.PaymentGateway, error) {
	switch providerType {
	case provider.ProviderTypeRazorpay:
		return f.createRazorpayProvider()
	case provider.ProviderTypeStripe:
		return f.createStripeProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// GetProviderFromString defaults to Razorpay when unset.
func (f *Factory) GetProviderFromString(providerStr string) (provider.PaymentGateway, error) {
	if providerStr == "" {
		providerStr = string(provider.ProviderTypeRazorpay)
	}
	return f.GetProvider(provider.ProviderType(providerStr))
}

func (f *Factory) createRazorpayProvider() (provider.PaymentGateway, error) {
	gw := f.config.Gateway
	if gw.KeyID == "" || gw.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret must be configured")
	}

	return razorpayProvider.NewRazorpayProvider(razorpayProvider.Config{
		KeyID:         gw.KeyID,
		KeySecret:     gw.KeySecret,
		WebhookSecret: gw.WebhookSecret,
		BaseURL:       gw.BaseURL,
	}, f.logger), nil
}

func (f *Factory) createStripeProvider() (provider.PaymentGateway, error) {
	if f.config.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key not configured")
	}

	return stripeProvider.NewStripeProvider(stripeProvider.Config{
		SecretKey:      f.config.Stripe.SecretKey,
		PublishableKey: f.config.Stripe.PublishableKey,
		WebhookSecret:  f.config.Stripe.WebhookSecret,
	}, f.logger), nil
}
