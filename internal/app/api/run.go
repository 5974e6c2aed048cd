package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	groomingserver "github.com/tropicbliss/ESD-Project/go"

	"github.com/tropicbliss/ESD-Project/internal/app/bootstrap"
	"github.com/tropicbliss/ESD-Project/internal/app/config"
	accountsobs "github.com/tropicbliss/ESD-Project/internal/domains/accounts/adapters/observability"
	accountsapp "github.com/tropicbliss/ESD-Project/internal/domains/accounts/application"
	bookingsobs "github.com/tropicbliss/ESD-Project/internal/domains/bookings/adapters/observability"
	bookingsapp "github.com/tropicbliss/ESD-Project/internal/domains/bookings/application"
	checkoutmemory "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/persistence/postgres"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/persistence/redisstore"
	checkoutworkflows "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	checkoutports "github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	notificationsmemory "github.com/tropicbliss/ESD-Project/internal/domains/notifications/adapters/memory"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/adapters/tasks"
	notificationsapp "github.com/tropicbliss/ESD-Project/internal/domains/notifications/application"
	notificationsports "github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
	"github.com/tropicbliss/ESD-Project/internal/platform/migrations"
	platformpostgres "github.com/tropicbliss/ESD-Project/internal/platform/postgres"
	platformredis "github.com/tropicbliss/ESD-Project/internal/platform/redis"
)

const serviceName = "orchestrator-api"

// Run boots the orchestrator HTTP API with observability, collaborators, storage and
// workflows wired, and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	instruments, flush, err := bootstrap.InitObservability(ctx, serviceName, cfg)
	if err != nil {
		return err
	}
	defer flush()
	logger := instruments.Logger

	collaborators, err := bootstrap.NewCollaborators(cfg, instruments)
	if err != nil {
		return err
	}
	defer collaborators.Close()

	steps, err := checkoutapp.NewSteps(collaborators.Groomers, collaborators.Appointments, collaborators.Payments)
	if err != nil {
		return fmt.Errorf("build checkout steps: %w", err)
	}
	saga := checkoutapp.NewSaga(steps, checkoutapp.WithDeadline(cfg.CheckoutDeadline))

	var workflows checkoutports.WorkflowOrchestrator = checkoutworkflows.NewInlineCheckoutWorkflows(saga)
	if temporalClient, err := bootstrap.DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout saga inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflows = checkoutworkflows.NewTemporalCheckoutWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	db, cleanupDB := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("failed to migrate saga journal, falling back to memory", slog.String("error", err.Error()))
			db = nil
		}
	}

	redisOpts := bootstrap.RedisOptions(cfg)
	redisClient := openRedis(ctx, redisOpts, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	coreCheckout := checkoutapp.NewService(
		workflows,
		checkoutapp.WithJournal(buildJournal(db)),
		checkoutapp.WithIdempotencyStore(buildIdempotencyStore(cfg, db, redisClient, logger)),
		checkoutapp.WithLogger(logger),
		checkoutapp.WithSagaDeadline(cfg.CheckoutDeadline),
	)
	checkoutService := checkoutobs.New(
		coreCheckout,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	publisher, closePublisher := buildPublisher(cfg, redisClient != nil, redisOpts, logger)
	defer closePublisher()
	dispatcher := notificationsapp.NewDispatcher(
		publisher,
		notificationsapp.WithPublishTimeout(cfg.NotifyTimeout),
		notificationsapp.WithLogger(logger),
	)
	accountsService := accountsobs.New(
		accountsapp.NewService(collaborators.Users, collaborators.Groomers, dispatcher),
		accountsobs.WithLogger(logger),
		accountsobs.WithTracer(instruments.Tracer("internal.accounts.application")),
		accountsobs.WithMeter(instruments.Meter("internal.accounts.application")),
	)
	bookingsService := bookingsobs.New(
		bookingsapp.NewService(collaborators.Appointments, collaborators.Comments),
		bookingsobs.WithLogger(logger),
		bookingsobs.WithTracer(instruments.Tracer("internal.bookings.application")),
		bookingsobs.WithMeter(instruments.Meter("internal.bookings.application")),
	)

	handlers := groomingserver.ApiHandleFunctions{
		CheckoutAPI: groomingserver.NewCheckoutAPI(checkoutService),
		UserAPI:     groomingserver.NewUserAPI(accountsService),
		GroomerAPI:  groomingserver.NewGroomerAPI(accountsService),
		BookingAPI:  groomingserver.NewBookingAPI(bookingsService),
	}
	router := groomingserver.NewRouter(
		handlers,
		groomingserver.WithAllowedOrigins(cfg.AllowedOrigins()),
		groomingserver.WithMiddleware(otelgin.Middleware(serviceName)),
	)

	serveErr := serve(ctx, cfg.Addr(), router, logger)

	// In-flight notifications get the shutdown grace period before the publisher closes.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		logger.Warn("notifications still pending at shutdown", slog.String("error", err.Error()))
	}
	return serveErr
}

func openRedis(ctx context.Context, opts platformredis.Options, logger *slog.Logger) *goredis.Client {
	if !opts.Enabled() {
		logger.Warn("REDIS_ADDR not set, notifications and idempotency records stay in process")
		return nil
	}
	client, err := platformredis.Open(ctx, opts)
	if err != nil {
		logger.Warn("failed to connect to redis, falling back to in-process adapters", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("redis connection established", slog.String("addr", opts.Addr))
	return client
}

func buildJournal(db *gorm.DB) checkoutports.Journal {
	if db == nil {
		return checkoutmemory.NewJournal()
	}
	return checkoutpostgres.NewJournal(db)
}

func buildIdempotencyStore(cfg config.Config, db *gorm.DB, redisClient *goredis.Client, logger *slog.Logger) checkoutports.IdempotencyStore {
	switch {
	case redisClient != nil:
		logger.Info("idempotency records stored in redis", slog.Duration("ttl", cfg.IdempotencyTTL))
		return redisstore.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	case db != nil:
		logger.Info("idempotency records stored in postgres")
		return checkoutpostgres.NewIdempotencyStore(db)
	default:
		store := checkoutmemory.NewIdempotencyStore()
		store.WithTTL(cfg.IdempotencyTTL)
		return store
	}
}

// buildPublisher enqueues greetings on the asynq queue when Redis is reachable; otherwise
// greetings are delivered in process by a greeter that only logs.
func buildPublisher(cfg config.Config, redisReachable bool, opts platformredis.Options, logger *slog.Logger) (notificationsports.Publisher, func()) {
	if !redisReachable {
		greeter := notificationsapp.NewGreeter(nil, logger)
		return notificationsmemory.NewPublisher(greeter), func() {}
	}
	client := asynq.NewClient(opts.AsynqOpt())
	closeClient := func() {
		if err := client.Close(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("failed to close asynq client", slog.String("error", err.Error()))
		}
	}
	logger.Info("notifications enqueued on asynq", slog.String("queue", cfg.NotifyQueue))
	return tasks.NewPublisher(client, cfg.NotifyQueue, logger), closeClient
}
