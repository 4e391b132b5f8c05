package workerpool

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestPoolProcessesAllTasks(t *testing.T) {
	cfg := Config{Workers: 4, QueueSize: 16, ShutdownTimeout: time.Second}
	pool, err := New(cfg, func(ctx context.Context, task *Task) *Result {
		s := task.Payload.(string)
		return &Result{TaskID: task.ID, Data: strings.ToUpper(s)}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()

	for i := 0; i < 10; i++ {
		task := &Task{ID: fmt.Sprintf("t%d", i), Payload: fmt.Sprintf("doc%d", i)}
		if err := pool.Submit(task); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		res := <-pool.Results()
		if res.Error != nil {
			t.Errorf("task %s failed: %v", res.TaskID, res.Error)
		}
		seen[res.TaskID] = true
	}
	if len(seen) != 10 {
		t.Errorf("got %d distinct results", len(seen))
	}

	pool.Stop()
	stats := pool.Stats()
	if stats.TasksSubmitted != 10 || stats.TasksCompleted != 10 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	cfg := Config{Workers: 1, QueueSize: 1, ShutdownTimeout: time.Second}
	pool, err := New(cfg, func(ctx context.Context, task *Task) *Result {
		<-block
		return &Result{TaskID: task.ID}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()
	defer func() {
		close(block)
		pool.Stop()
	}()

	// First task occupies the worker, second fills the queue; the
	// worker may not have picked up the first yet, so allow one extra.
	var rejected bool
	for i := 0; i < 3; i++ {
		if err := pool.Submit(&Task{ID: fmt.Sprintf("t%d", i)}); err != nil {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Error("expected queue-full rejection")
	}
}

func TestPoolRequiresWorkerFunc(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error for nil worker func")
	}
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool, err := New(DefaultConfig(), func(ctx context.Context, task *Task) *Result {
		return &Result{TaskID: task.ID}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()
	pool.Stop()

	if err := pool.Submit(&Task{ID: "late"}); err == nil {
		t.Error("expected rejection after Stop")
	}
}

func TestPoolCancelledTaskContext(t *testing.T) {
	pool, err := New(Config{Workers: 1, QueueSize: 4, ShutdownTimeout: time.Second},
		func(ctx context.Context, task *Task) *Result {
			return &Result{TaskID: task.ID}
		}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Start()
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Submit(&Task{ID: "cancelled", Context: ctx}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res := <-pool.Results()
	if res.Error == nil {
		t.Error("expected context error for cancelled task")
	}
}
