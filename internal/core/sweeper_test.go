package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type sweepingStore struct {
	*mapStore
	sweeps atomic.Int32
}

func (s *sweepingStore) Sweep(context.Context) (int, error) {
	s.sweeps.Add(1)
	return 2, nil
}

type sweepCounter struct {
	countingObserver
	removed atomic.Int32
}

func (o *sweepCounter) ObserveSweep(removed int) {
	o.removed.Add(int32(removed))
}

func TestStartSessionSweeper(t *testing.T) {
	store := &sweepingStore{mapStore: newMapStore()}
	svc, err := NewService(testDataset("A"), store, ServiceConfig{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	obs := &sweepCounter{}
	svc.SetObserver(obs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSessionSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for store.sweeps.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	sweeps := store.sweeps.Load()
	if sweeps < 3 {
		t.Errorf("sweeps = %d, want at least 3", sweeps)
	}
	if got := obs.removed.Load(); got != 2*sweeps {
		t.Errorf("observed removals = %d, want %d", got, 2*sweeps)
	}
}
