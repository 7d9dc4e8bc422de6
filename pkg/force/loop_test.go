package force

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoopSettlesAndServesCommands(t *testing.T) {
	sim := newFixtureSim(t)
	ended := make(chan struct{})
	sim.On(EventEnd, func() { close(ended) })

	loop := NewLoop(sim, LoopOptions{Interval: time.Millisecond, Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	select {
	case <-ended:
	case <-time.After(10 * time.Second):
		t.Fatal("simulation did not settle")
	}

	var running bool
	err := loop.Submit(ctx, func(s *Simulation) {
		s.SetAlphaTarget(0.3)
		s.Restart()
		running = s.Running()
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !running {
		t.Error("command should run on the simulation")
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if err := loop.Submit(context.Background(), func(*Simulation) {}); err != ErrStopped {
		t.Errorf("Submit after stop = %v, want ErrStopped", err)
	}
}

func TestSubmitContextCancelled(t *testing.T) {
	loop := NewLoop(New(nil, Options{}), LoopOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Run was never started, so only ctx can unblock Submit.
	if err := loop.Submit(ctx, func(*Simulation) {}); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit = %v, want context.Canceled", err)
	}
}
