// Package notifier hosts the asynq server that delivers sign-up greetings.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/tropicbliss/ESD-Project/internal/app/bootstrap"
	"github.com/tropicbliss/ESD-Project/internal/app/config"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/adapters/tasks"
	notificationsapp "github.com/tropicbliss/ESD-Project/internal/domains/notifications/application"
	notificationsports "github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
)

const serviceName = "orchestrator-notifier"

// Run consumes greeting tasks from the notification queue until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	instruments, flush, err := bootstrap.InitObservability(ctx, serviceName, cfg)
	if err != nil {
		return err
	}
	defer flush()
	logger := instruments.Logger

	redisOpts := bootstrap.RedisOptions(cfg)
	if !redisOpts.Enabled() {
		return errors.New("REDIS_ADDR is required to consume notifications")
	}

	smsClient, pool, err := bootstrap.NewSMSClient(cfg, instruments)
	if err != nil {
		return fmt.Errorf("build sms client: %w", err)
	}
	var sender notificationsports.Sender
	if smsClient != nil {
		defer pool.Close()
		sender = smsClient
	} else {
		logger.Warn("SMS_GATEWAY_URL not set, greetings are logged instead of sent")
	}
	greeter := notificationsapp.NewGreeter(sender, logger)

	srv := asynq.NewServer(redisOpts.AsynqOpt(), asynq.Config{
		Concurrency:  cfg.NotifyConcurrency,
		Queues:       map[string]int{queueName(cfg): 1},
		Logger:       &slogAdapter{logger: logger},
		ErrorHandler: tasks.ErrorHandler(logger),
	})
	if err := srv.Start(tasks.NewServeMux(greeter, logger)); err != nil {
		return fmt.Errorf("start notification server: %w", err)
	}
	logger.Info("notifier listening", slog.String("queue", queueName(cfg)), slog.Int("concurrency", cfg.NotifyConcurrency))

	<-ctx.Done()
	logger.Info("shutting down notifier")
	srv.Shutdown()
	return nil
}

func queueName(cfg config.Config) string {
	if cfg.NotifyQueue == "" {
		return tasks.DefaultQueue
	}
	return cfg.NotifyQueue
}

// slogAdapter routes asynq's internal logging through slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(args ...interface{}) { a.logger.Debug(fmt.Sprint(args...)) }
func (a *slogAdapter) Info(args ...interface{})  { a.logger.Info(fmt.Sprint(args...)) }
func (a *slogAdapter) Warn(args ...interface{})  { a.logger.Warn(fmt.Sprint(args...)) }
func (a *slogAdapter) Error(args ...interface{}) { a.logger.Error(fmt.Sprint(args...)) }

func (a *slogAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}

var _ asynq.Logger = (*slogAdapter)(nil)
