// Package worker hosts the Temporal worker executing the checkout and refund sagas.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/activity"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/tropicbliss/ESD-Project/internal/app/bootstrap"
	"github.com/tropicbliss/ESD-Project/internal/app/config"
	checkoutapp "github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	checkoutactivities "github.com/tropicbliss/ESD-Project/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/tropicbliss/ESD-Project/internal/platform/temporal/workflows/checkout"
)

const serviceName = "orchestrator-worker"

// Run registers the checkout workflows and activities and polls the CHECKOUT task queue
// until ctx is cancelled.
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

	temporalClient, err := bootstrap.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := temporalworker.New(temporalClient, checkoutworkflows.TaskQueue, temporalworker.Options{})
	register(w, checkoutactivities.NewActivities(steps))

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.TaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	stop := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	if err := w.Run(stop); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}

// Registry is the subset of worker.Worker used for registration.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

func register(r Registry, acts *checkoutactivities.Activities) {
	r.RegisterWorkflowWithOptions(checkoutworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.CheckoutWorkflowName})
	r.RegisterWorkflowWithOptions(checkoutworkflows.RefundWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.RefundWorkflowName})

	activitiesByName := map[string]interface{}{
		checkoutactivities.CheckAcceptanceActivityName:      acts.CheckAcceptance,
		checkoutactivities.ResolveDurationActivityName:      acts.ResolveDuration,
		checkoutactivities.CreatePaymentSessionActivityName: acts.CreatePaymentSession,
		checkoutactivities.PersistAppointmentActivityName:   acts.PersistAppointment,
		checkoutactivities.CancelPaymentActivityName:        acts.CancelPayment,
		checkoutactivities.LookupTransactionActivityName:    acts.LookupTransaction,
		checkoutactivities.RefundPaymentActivityName:        acts.RefundPayment,
		checkoutactivities.DeleteAppointmentActivityName:    acts.DeleteAppointment,
	}
	for name, fn := range activitiesByName {
		r.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
	}
}
