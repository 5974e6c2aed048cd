package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
)

type blockingPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	got     []domain.Message
	ctxErr  error
}

func (p *blockingPublisher) Publish(ctx context.Context, msg domain.Message) error {
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, msg)
	p.ctxErr = ctx.Err()
	return nil
}

func (p *blockingPublisher) messages() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Message{}, p.got...)
}

func TestDispatcher_NotifyDoesNotWait(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	d := NewDispatcher(pub)
	msg := domain.Message{RecipientType: domain.RecipientUser, ContactNo: "+6591234567"}

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		d.Notify(ctx, msg)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on the publisher")
	}
	cancel()

	close(pub.release)
	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, []domain.Message{msg}, pub.messages())
	require.NoError(t, pub.ctxErr, "publish must not inherit the request cancellation")
}

func TestDispatcher_CloseDropsLateMessages(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	close(pub.release)
	d := NewDispatcher(pub)

	require.NoError(t, d.Close(context.Background()))
	d.Notify(context.Background(), domain.Message{RecipientType: domain.RecipientGroomer, ContactNo: "1"})
	require.Empty(t, pub.messages())
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	d := NewDispatcher(pub)
	d.Notify(context.Background(), domain.Message{RecipientType: domain.RecipientUser, ContactNo: "1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(pub.release)
}

func TestDispatcher_InvalidMessageIsDropped(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	close(pub.release)
	d := NewDispatcher(pub)

	d.Notify(context.Background(), domain.Message{RecipientType: domain.RecipientUser})
	require.NoError(t, d.Close(context.Background()))
	require.Empty(t, pub.messages())
}

type recordingSender struct {
	to, body string
	err      error
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	s.to, s.body = to, body
	return s.err
}

func TestGreeter_Deliver(t *testing.T) {
	sender := &recordingSender{}
	g := NewGreeter(sender, nil)

	require.NoError(t, g.Deliver(context.Background(), domain.Message{RecipientType: domain.RecipientGroomer, ContactNo: "+6590000000"}))
	require.Equal(t, "+6590000000", sender.to)
	require.Equal(t, "Dear groomer, thanks for signing up with our service!", sender.body)

	sender.err = errors.New("gateway down")
	require.ErrorContains(t, g.Deliver(context.Background(), domain.Message{RecipientType: domain.RecipientUser, ContactNo: "1"}), "gateway down")

	require.NoError(t, NewGreeter(nil, nil).Deliver(context.Background(), domain.Message{RecipientType: domain.RecipientUser, ContactNo: "1"}))
}
