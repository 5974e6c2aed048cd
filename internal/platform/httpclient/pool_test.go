package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

func TestPool_SharedClientAcrossGoroutines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pool := New(WithTimeout(2*time.Second), WithTracerProvider(nooptrace.NewTracerProvider()))
	defer pool.Close()

	var wg sync.WaitGroup
	clients := make([]*http.Client, 8)
	errs := make([]error, len(clients))
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := pool.Client()
			if err != nil {
				errs[i] = err
				return
			}
			resp, err := client.Get(srv.URL)
			if err != nil {
				errs[i] = err
				return
			}
			_ = resp.Body.Close()
			clients[i] = client
		}(i)
	}
	wg.Wait()
	for i, c := range clients {
		require.NoError(t, errs[i])
		require.Same(t, clients[0], c)
	}
	require.Equal(t, 2*time.Second, pool.Timeout())
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	pool := New()
	require.Equal(t, DefaultTimeout, pool.Timeout())

	pool.Close()
	pool.Close()

	_, err := pool.Client()
	require.ErrorIs(t, err, ErrClosed)
}

func TestPool_NilIsClosed(t *testing.T) {
	var pool *Pool
	_, err := pool.Client()
	require.ErrorIs(t, err, ErrClosed)
	pool.Close()
}
