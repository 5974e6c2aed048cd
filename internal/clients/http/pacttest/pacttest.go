//go:build pact
// +build pact

// Package pacttest holds the shared names and paths for the orchestrator's contracts: the
// ones it publishes against downstream services and the one the portal publishes against it.
package pacttest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/stretchr/testify/require"
)

const (
	ConsumerName         = "grooming-orchestrator"
	PortalConsumer       = "grooming-portal"
	OrchestratorProvider = "orchestrator-api"

	GroomerProvider      = "groomer-service"
	AppointmentsProvider = "appointments-service"

	StateCheckoutReady = "checkout collaborators are available"

	StateGroomerAcceptsCats = "groomer Acme accepts cats"
	StateGroomerMissing     = "no groomer named Ghost"
	StateAppointmentsReady  = "appointments service accepts bookings"
	StateAppointmentExists  = "appointment appt-1 exists"

	ExistingGroomer     = "Acme"
	MissingGroomer      = "Ghost"
	ExistingAppointment = "appt-1"
	ExistingTransaction = "cs_test_pact"
)

// NewPact opens a mock provider for one consumer/provider pair.
func NewPact(t testing.TB, consumer, provider string) *pactconsumer.V2HTTPMockProvider {
	t.Helper()
	pactlog.SetLogLevel("INFO")
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: consumer,
		Provider: provider,
		PactDir:  PactDir(t),
		LogDir:   LogDir(t),
	})
	require.NoError(t, err)
	return pact
}

// BaseURL returns the mock server address.
func BaseURL(config pactconsumer.MockServerConfig) string {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, config.Port)
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path for a consumer/provider pair.
func PactFile(t testing.TB, consumer, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), consumer+"-"+provider+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "..", ".."))
}
