package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	mu     sync.Mutex
	calls  []string
	err    error
	notify chan struct{}
}

func (f *fakeReconciler) ReconcileScope(_ context.Context, college string) (*model.ReconcileResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, college)
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
	if f.err != nil {
		return &model.ReconcileResult{Error: f.err.Error()}, f.err
	}
	return &model.ReconcileResult{Success: true, Total: 3, Changed: 1}, nil
}

func TestReconcileWorker_RunsEveryInterval(t *testing.T) {
	rec := &fakeReconciler{notify: make(chan struct{}, 1)}
	w := NewReconcileWorker(rec, nil, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-rec.notify:
		case <-time.After(time.Second):
			t.Fatal("reconciler was not called")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.calls), 2)
	assert.Equal(t, "", rec.calls[0])
}

func TestReconcileWorker_DisabledReturnsImmediately(t *testing.T) {
	rec := &fakeReconciler{notify: make(chan struct{}, 1)}
	w := NewReconcileWorker(rec, nil, 0, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker kept running")
	}
	assert.Empty(t, rec.calls)
}

func TestReconcileWorker_FailureDoesNotStopLoop(t *testing.T) {
	rec := &fakeReconciler{notify: make(chan struct{}, 1), err: errors.New("store down")}
	w := NewReconcileWorker(rec, nil, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-rec.notify:
		case <-time.After(time.Second):
			t.Fatal("worker stopped after a failed pass")
		}
	}
}
