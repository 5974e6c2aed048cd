// Package bootstrap builds the dependencies shared by the api, worker, notifier and
// journal-purger processes.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	"github.com/tropicbliss/ESD-Project/internal/app/config"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/appointments"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/comments"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/groomers"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/sms"
	"github.com/tropicbliss/ESD-Project/internal/clients/http/users"
	"github.com/tropicbliss/ESD-Project/internal/clients/payments"
	checkoutports "github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	platformobservability "github.com/tropicbliss/ESD-Project/internal/platform/observability"
	platformredis "github.com/tropicbliss/ESD-Project/internal/platform/redis"
)

// ErrTemporalDisabled is returned by DialTemporal when TEMPORAL_DISABLED is set.
var ErrTemporalDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

const shutdownTimeout = 5 * time.Second

// InitObservability configures slog, tracing and metrics for one process. The returned
// function flushes telemetry and must run on exit.
func InitObservability(ctx context.Context, serviceName string, cfg config.Config) (*platformobservability.Instruments, func(), error) {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.LogOptions{
		Environment: cfg.Environment,
		File:        cfg.LogFile,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	flush := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}
	return instruments, flush, nil
}

// DialTemporal connects a traced Temporal client.
func DialTemporal(cfg config.Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, ErrTemporalDisabled
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, fmt.Errorf("configure temporal tracing interceptor: %w", err)
	}
	options := client.Options{
		HostPort:  valueOr(cfg.TemporalAddress, client.DefaultHostPort),
		Namespace: valueOr(cfg.TemporalNamespace, client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

// RedisOptions extracts the Redis connection settings.
func RedisOptions(cfg config.Config) platformredis.Options {
	return platformredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

// Collaborators bundles the downstream clients sharing one connection pool.
type Collaborators struct {
	Pool         *httpclient.Pool
	Groomers     *groomers.Client
	Appointments *appointments.Client
	Users        *users.Client
	Comments     *comments.Client
	Payments     checkoutports.Payments
}

// NewCollaborators builds the pool and every downstream client. Without STRIPE_KEY the
// sandbox gateway stands in for Stripe.
func NewCollaborators(cfg config.Config, instruments *platformobservability.Instruments) (*Collaborators, error) {
	pool := newPool(cfg, instruments)
	c := &Collaborators{Pool: pool}
	var err error
	if c.Groomers, err = groomers.NewClient(cfg.GroomerURL, pool); err != nil {
		return nil, c.abort(err)
	}
	if c.Appointments, err = appointments.NewClient(cfg.AppointmentsURL, pool); err != nil {
		return nil, c.abort(err)
	}
	if c.Users, err = users.NewClient(cfg.UserURL, pool); err != nil {
		return nil, c.abort(err)
	}
	if c.Comments, err = comments.NewClient(cfg.CommentsURL, pool); err != nil {
		return nil, c.abort(err)
	}
	if strings.TrimSpace(cfg.StripeKey) == "" {
		effectiveLogger(instruments).Warn("STRIPE_KEY not set, using the sandbox payment gateway")
		c.Payments = payments.NewSandboxGateway(cfg.StripeSuccessURL)
		return c, nil
	}
	gateway, err := payments.NewStripeGateway(cfg.StripeKey, payments.Settings{
		SuccessURL: cfg.StripeSuccessURL,
		CancelURL:  cfg.StripeCancelURL,
		Currency:   cfg.StripeCurrency,
	}, pool)
	if err != nil {
		return nil, c.abort(err)
	}
	c.Payments = gateway
	return c, nil
}

// NewSMSClient builds the SMS gateway client, or returns nil when SMS_GATEWAY_URL is unset.
func NewSMSClient(cfg config.Config, instruments *platformobservability.Instruments) (*sms.Client, *httpclient.Pool, error) {
	if strings.TrimSpace(cfg.SMSGatewayURL) == "" {
		return nil, nil, nil
	}
	pool := newPool(cfg, instruments)
	smsClient, err := sms.NewClient(cfg.SMSGatewayURL, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return smsClient, pool, nil
}

// Close releases the shared pool.
func (c *Collaborators) Close() {
	if c != nil && c.Pool != nil {
		c.Pool.Close()
	}
}

func (c *Collaborators) abort(err error) error {
	c.Close()
	return fmt.Errorf("build downstream clients: %w", err)
}

func newPool(cfg config.Config, instruments *platformobservability.Instruments) *httpclient.Pool {
	opts := []httpclient.Option{httpclient.WithTimeout(cfg.DownstreamTimeout)}
	if instruments != nil {
		opts = append(opts, httpclient.WithTracerProvider(instruments.TracerProvider))
	}
	return httpclient.New(opts...)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
