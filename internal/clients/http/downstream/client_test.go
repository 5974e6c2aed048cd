package downstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

func newClient(t *testing.T, handler http.HandlerFunc, opts ...httpclient.Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	pool := httpclient.New(opts...)
	t.Cleanup(pool.Close)
	client, err := New("groomer", srv.URL, pool)
	require.NoError(t, err)
	return client
}

func TestURL_EscapesParameters(t *testing.T) {
	pool := httpclient.New()
	defer pool.Close()
	client, err := New("groomer", "http://groomer:5000/", pool)
	require.NoError(t, err)

	target, err := client.URL([]Segment{Lit("search"), Lit("name"), Param("name", `Acme"/../admin`)}, nil)
	require.NoError(t, err)
	require.Equal(t, "http://groomer:5000/search/name/Acme%22%2F..%2Fadmin", target)

	_, err = client.URL([]Segment{Lit("accepts"), Param("name", " ")}, nil)
	require.True(t, fault.IsKind(err, fault.KindRejected))
}

func TestDo_SendsJSONAndReadsBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accepts/Acme", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, []string{"Cats"}, payload["petTypes"])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"accepted":true}`))
	})

	resp, err := client.Do(context.Background(), Call{
		Method: http.MethodPost,
		Path:   []Segment{Lit("accepts"), Param("name", "Acme")},
		Body:   map[string][]string{"petTypes": {"Cats"}},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	var out struct{ Accepted bool }
	require.NoError(t, resp.Decode(&out))
	require.True(t, out.Accepted)
}

func TestResponse_FailureKeepsStatusAndMessage(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"groomer not found"}`))
	})

	resp, err := client.Do(context.Background(), Call{Path: []Segment{Lit("search")}})
	require.NoError(t, err)
	require.False(t, resp.OK())
	failure := resp.Failure(fault.KindNotFound)
	require.Equal(t, http.StatusNotFound, failure.HTTPStatus())
	require.Equal(t, "groomer not found", failure.Detail())
}

func TestResponse_MessageFallsBackToStatusText(t *testing.T) {
	resp := &Response{Status: http.StatusBadGateway, Body: []byte(`{}`)}
	require.Equal(t, "bad gateway", resp.Message())
}

func TestDo_TimeoutIsClassified(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, httpclient.WithTimeout(50*time.Millisecond))

	_, err := client.Do(context.Background(), Call{Path: []Segment{Lit("slow")}, Failure: fault.KindPersistenceError})
	require.True(t, fault.IsKind(err, fault.KindTimeout))
}

func TestDo_UnreachableUsesCallFailureKind(t *testing.T) {
	pool := httpclient.New(httpclient.WithTimeout(time.Second))
	defer pool.Close()
	client, err := New("appointments", "http://127.0.0.1:1", pool)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Call{Path: []Segment{Lit("create")}, Failure: fault.KindPersistenceError})
	require.True(t, fault.IsKind(err, fault.KindPersistenceError))
}

func TestDo_ClosedPool(t *testing.T) {
	pool := httpclient.New()
	client, err := New("comments", "http://comments:5000", pool)
	require.NoError(t, err)
	pool.Close()

	_, err = client.Do(context.Background(), Call{})
	require.ErrorIs(t, err, httpclient.ErrClosed)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	pool := httpclient.New()
	defer pool.Close()
	_, err := New("users", "user:5000", pool)
	require.Error(t, err)
}
