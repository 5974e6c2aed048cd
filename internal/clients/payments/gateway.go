// Package payments talks to the payment provider: checkout sessions are created for a
// stay, and refunded or voided when a checkout is reversed.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	checkoutports "github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

var _ checkoutports.Payments = (*StripeGateway)(nil)

// Settings configures the hosted checkout pages and currency.
type Settings struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

func (s Settings) validate() error {
	if strings.TrimSpace(s.SuccessURL) == "" || strings.TrimSpace(s.CancelURL) == "" {
		return errors.New("payment success and cancel URLs are required")
	}
	if strings.TrimSpace(s.Currency) == "" {
		return errors.New("payment currency is required")
	}
	return nil
}

// StripeGateway implements the payment port on Stripe Checkout.
type StripeGateway struct {
	api      *client.API
	pool     *httpclient.Pool
	settings Settings
}

// GatewayOption configures the Stripe gateway.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	apiURL string
}

// WithAPIURL points the gateway at another Stripe-compatible endpoint.
func WithAPIURL(url string) GatewayOption {
	return func(o *gatewayOptions) {
		o.apiURL = strings.TrimSpace(url)
	}
}

// NewStripeGateway builds a gateway that sends every provider call through the shared pool.
// Stripe's own network retries are disabled.
func NewStripeGateway(key string, settings Settings, pool *httpclient.Pool, opts ...GatewayOption) (*StripeGateway, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("stripe key is required")
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	httpClient, err := pool.Client()
	if err != nil {
		return nil, fmt.Errorf("stripe gateway: %w", err)
	}
	var cfg gatewayOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.apiURL != "" {
		backendConfig.URL = stripe.String(cfg.apiURL)
	}
	api := &client.API{}
	api.Init(key, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	})
	settings.Currency = strings.ToLower(strings.TrimSpace(settings.Currency))
	return &StripeGateway{api: api, pool: pool, settings: settings}, nil
}

// CreateSession opens a payment-mode Checkout Session for the stay. The tier's provider
// price is used when known, otherwise the rate is sent as inline price data; the quantity
// is always the number of days.
func (g *StripeGateway) CreateSession(ctx context.Context, charge checkoutdomain.ChargeRequest) (*checkoutdomain.PaymentSession, error) {
	if charge.Days < 1 {
		return nil, fault.InvalidRange("stay must be at least one day")
	}
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(int64(charge.Days))}
	if charge.Price.PriceID != "" {
		item.Price = stripe.String(charge.Price.PriceID)
	} else {
		if !charge.Price.HasRate() {
			return nil, fault.InvalidTier(fmt.Sprintf("no price for tier %s", charge.Tier))
		}
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.settings.Currency),
			UnitAmount: stripe.Int64(charge.Price.MinorUnits()),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(fmt.Sprintf("%s stay at %s", charge.Tier, charge.GroomerName)),
			},
		}
	}
	ctx, cancel := context.WithTimeout(ctx, g.pool.Timeout())
	defer cancel()
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.settings.SuccessURL),
		CancelURL:  stripe.String(g.settings.CancelURL),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{item},
	}
	params.Context = ctx
	params.AddMetadata("groomerName", charge.GroomerName)
	params.AddMetadata("userName", charge.UserName)
	params.AddMetadata("priceTier", string(charge.Tier))
	if charge.Reference != "" {
		params.ClientReferenceID = stripe.String(charge.Reference)
		params.SetIdempotencyKey("checkout-" + charge.Reference)
	}
	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, classify("create checkout session", err)
	}
	if session == nil || session.ID == "" || session.URL == "" {
		return nil, fault.PaymentError("payment provider returned an incomplete session")
	}
	return &checkoutdomain.PaymentSession{ID: session.ID, URL: session.URL}, nil
}

// Refund reverses a transaction. Payment intents are refunded directly. For a checkout
// session the payment intent is refunded when the customer has paid, an open session is
// expired so it can no longer be paid, and an already expired session needs nothing.
func (g *StripeGateway) Refund(ctx context.Context, transactionID, idempotencyKey string) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return fault.PaymentError("transaction id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, g.pool.Timeout())
	defer cancel()
	if strings.HasPrefix(transactionID, "pi_") {
		return g.refundIntent(ctx, transactionID, idempotencyKey)
	}
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	session, err := g.api.CheckoutSessions.Get(transactionID, getParams)
	if err != nil {
		return classify("retrieve checkout session", err)
	}
	switch {
	case session.PaymentIntent != nil && session.PaymentIntent.ID != "":
		return g.refundIntent(ctx, session.PaymentIntent.ID, idempotencyKey)
	case session.Status == stripe.CheckoutSessionStatusOpen:
		expireParams := &stripe.CheckoutSessionExpireParams{}
		expireParams.Context = ctx
		if idempotencyKey != "" {
			expireParams.SetIdempotencyKey("expire-" + idempotencyKey)
		}
		if _, err := g.api.CheckoutSessions.Expire(transactionID, expireParams); err != nil {
			return classify("expire checkout session", err)
		}
		return nil
	case session.Status == stripe.CheckoutSessionStatusExpired:
		return nil
	default:
		return fault.PaymentError(fmt.Sprintf("checkout session %s has nothing to refund", transactionID))
	}
}

func (g *StripeGateway) refundIntent(ctx context.Context, paymentIntentID, idempotencyKey string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey("refund-" + idempotencyKey)
	}
	if _, err := g.api.Refunds.New(params); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			return nil
		}
		return classify("refund payment", err)
	}
	return nil
}

func classify(action string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Wrap(fault.KindTimeout, "payment provider did not respond in time", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fault.Wrap(fault.KindTimeout, "payment provider did not respond in time", err)
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && strings.TrimSpace(stripeErr.Msg) != "" {
		return fault.Wrap(fault.KindPaymentError, stripeErr.Msg, err)
	}
	return fault.Wrap(fault.KindPaymentError, action+" failed", err)
}
