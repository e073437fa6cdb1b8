package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pxsnap/src/session"
)

func TestPoolRunsTask(t *testing.T) {
	p := New(1)
	defer p.Close()

	done := make(chan session.Result, 1)
	ok := p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		return session.Result{Path: "/shots/a.png"}, nil
	}, func(res session.Result, err error) {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		done <- res
	})
	if !ok {
		t.Fatal("Expected Submit to accept the job")
	}

	select {
	case res := <-done:
		if res.Path != "/shots/a.png" {
			t.Errorf("Expected path '/shots/a.png', got '%s'", res.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for callback")
	}
}

func TestPoolPropagatesError(t *testing.T) {
	p := New(1)
	defer p.Close()

	taskErr := errors.New("capture failed")
	done := make(chan error, 1)
	p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		return session.Result{}, taskErr
	}, func(res session.Result, err error) {
		done <- err
	})

	select {
	case err := <-done:
		if !errors.Is(err, taskErr) {
			t.Errorf("Expected task error, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for callback")
	}
}

func TestPoolDropsWhenBusy(t *testing.T) {
	p := New(1)
	defer p.Close()

	release := make(chan struct{})
	running := make(chan struct{})
	noop := func(res session.Result, err error) {}

	// Occupy the single worker.
	if !p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		close(running)
		<-release
		return session.Result{}, nil
	}, noop) {
		t.Fatal("Expected first Submit to be accepted")
	}
	<-running

	// Fill the single queue slot.
	if !p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		return session.Result{}, nil
	}, noop) {
		t.Fatal("Expected second Submit to be queued")
	}

	// Queue full now.
	if p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		return session.Result{}, nil
	}, noop) {
		t.Error("Expected third Submit to be dropped")
	}

	close(release)
}

func TestPoolPassesContext(t *testing.T) {
	p := New(1)
	defer p.Close()

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	done := make(chan string, 1)
	p.Submit(ctx, func(taskCtx context.Context) (session.Result, error) {
		v, _ := taskCtx.Value(ctxKey{}).(string)
		done <- v
		return session.Result{}, nil
	}, func(res session.Result, err error) {})

	select {
	case v := <-done:
		if v != "marker" {
			t.Errorf("Expected task to receive the submitted context, got '%s'", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for task")
	}
}

func TestPoolCloseDrainsQueuedWork(t *testing.T) {
	p := New(1)

	done := make(chan struct{}, 2)
	running := make(chan struct{})
	release := make(chan struct{})

	if !p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		close(running)
		<-release
		return session.Result{}, nil
	}, func(res session.Result, err error) { done <- struct{}{} }) {
		t.Fatal("Expected first Submit to be accepted")
	}
	<-running

	if !p.Submit(context.Background(), func(ctx context.Context) (session.Result, error) {
		return session.Result{}, nil
	}, func(res session.Result, err error) { done <- struct{}{} }) {
		t.Fatal("Expected second Submit to be queued")
	}

	close(release)
	p.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		default:
			t.Fatalf("Expected 2 callbacks before Close returned, got %d", i)
		}
	}
}
