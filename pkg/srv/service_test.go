package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

type fakeService struct {
	name    string
	rec     *recorder
	started chan struct{}
	err     error
	ctxErr  error
}

func (f *fakeService) Start(ctx context.Context) error {
	close(f.started)
	return nil
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	f.ctxErr = ctx.Err()
	f.rec.add(f.name)
	return f.err
}

func newFake(name string, rec *recorder) *fakeService {
	return &fakeService{name: name, rec: rec, started: make(chan struct{})}
}

func TestStartAndShutdownServices(t *testing.T) {
	rec := &recorder{}
	db := newFake("db", rec)
	web := newFake("web", rec)
	bot := newFake("bot", rec)
	bot.err = errors.New("already stopped")

	ctx, cancel := context.WithCancel(context.Background())
	services := []Service{db, web, bot}
	StartServices(ctx, services)

	for _, f := range []*fakeService{db, web, bot} {
		select {
		case <-f.started:
		case <-time.After(time.Second):
			t.Fatalf("%s was not started", f.name)
		}
	}

	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"bot", "web", "db"}, rec.order)
	// the shutdown context is fresh even though ctx was cancelled
	assert.NoError(t, db.ctxErr)
}

func TestCleanup(t *testing.T) {
	called := false
	svc := NewCleanup(func() error {
		called = true
		return nil
	})

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, called)
	require.NoError(t, svc.Shutdown(context.Background()))
	assert.True(t, called)

	assert.NoError(t, NewCleanup(nil).Shutdown(context.Background()))
}
