package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/app/config"
	"github.com/tropicbliss/ESD-Project/internal/clients/payments"
)

func testConfig() config.Config {
	return config.Config{
		DownstreamTimeout: 9 * time.Second,
		GroomerURL:        "http://groomer:5000",
		AppointmentsURL:   "http://appointments:5000",
		UserURL:           "http://user:5000/",
		CommentsURL:       "http://comments:5000",
		StripeSuccessURL:  "http://localhost:4242/success.html",
	}
}

func TestNewCollaborators_SandboxWithoutStripeKey(t *testing.T) {
	c, err := NewCollaborators(testConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	require.IsType(t, &payments.SandboxGateway{}, c.Payments)
	require.Equal(t, 9*time.Second, c.Pool.Timeout())
	require.NotNil(t, c.Groomers)
	require.NotNil(t, c.Appointments)
}

func TestNewCollaborators_RejectsBadURL(t *testing.T) {
	cfg := testConfig()
	cfg.CommentsURL = "://nope"

	_, err := NewCollaborators(cfg, nil)
	require.Error(t, err)
}

func TestNewSMSClient_OptionalGateway(t *testing.T) {
	client, pool, err := NewSMSClient(testConfig(), nil)
	require.NoError(t, err)
	require.Nil(t, client)
	require.Nil(t, pool)
}

func TestDialTemporal_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.TemporalDisabled = true

	_, err := DialTemporal(cfg, nil, "test")
	require.ErrorIs(t, err, ErrTemporalDisabled)
}
