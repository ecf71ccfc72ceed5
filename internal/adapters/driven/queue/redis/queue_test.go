package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/juralis/juralis-core/internal/core/domain"
)

func newTestQueue(t *testing.T) (*Queue, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	return q, client
}

func TestEnqueueDequeueAck(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewIngestSourceTask("legifrance", "fetch_recent_laws")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ID != task.ID {
		t.Errorf("task ID = %q, want %q", got.ID, task.ID)
	}
	if got.SourceID() != "legifrance" || got.Method() != "fetch_recent_laws" {
		t.Errorf("payload = %v", got.Payload)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("status = %q, want processing", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", got.Attempts)
	}

	if err := q.Ack(ctx, got.ID); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("status after ack = %q, want completed", stored.Status)
	}
}

func TestDequeueEmptyQueueReturnsNil(t *testing.T) {
	q, _ := newTestQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	task, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil task on empty queue, got %v", task)
	}
}

func TestNackReschedulesWithBackoff(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewIngestAllTask()
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("Dequeue: task=%v err=%v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "provider unavailable"); err != nil {
		t.Fatalf("Nack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("status = %q, want pending for retry", stored.Status)
	}
	if stored.Error != "provider unavailable" {
		t.Errorf("error = %q", stored.Error)
	}
	if !stored.ScheduledFor.After(time.Now()) {
		t.Error("expected backoff in the future")
	}

	// Retry sits in the scheduled set until its backoff elapses
	if n, _ := client.ZCard(ctx, scheduledTasks).Result(); n != 1 {
		t.Errorf("scheduled set size = %d, want 1", n)
	}
	task2, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if task2 != nil {
		t.Errorf("got task before backoff elapsed: %v", task2)
	}
}

func TestScheduledTaskPromotedWhenDue(t *testing.T) {
	q, client := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewIngestSourceTask("eurlex", "")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, _ := q.DequeueWithTimeout(ctx, 1)
	if got == nil {
		t.Fatal("expected a task")
	}
	if err := q.Nack(ctx, got.ID, "transient"); err != nil {
		t.Fatalf("Nack: %v", err)
	}

	// Force the backoff to expire
	client.ZAdd(ctx, scheduledTasks, goredis.Z{
		Score:  float64(time.Now().Add(-time.Minute).Unix()),
		Member: got.ID,
	})

	retried, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if retried == nil {
		t.Fatal("expected promoted retry")
	}
	if retried.ID != task.ID {
		t.Errorf("task ID = %q, want %q", retried.ID, task.ID)
	}
	if retried.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", retried.Attempts)
	}
}

func TestNackExhaustedAttemptsMarksFailed(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	task := domain.NewIngestAllTask()
	task.MaxAttempts = 1
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, _ := q.DequeueWithTimeout(ctx, 1)
	if got == nil {
		t.Fatal("expected a task")
	}

	if err := q.Nack(ctx, got.ID, "fatal"); err != nil {
		t.Fatalf("Nack: %v", err)
	}

	stored, _ := q.GetTask(ctx, got.ID)
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("status = %q, want failed", stored.Status)
	}
	if stored.Error != "fatal" {
		t.Errorf("error = %q", stored.Error)
	}
}

func TestGetTaskUnknownID(t *testing.T) {
	q, _ := newTestQueue(t)

	task, err := q.GetTask(context.Background(), "no-such-task")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil for unknown task, got %v", task)
	}
}

func TestPing(t *testing.T) {
	q, _ := newTestQueue(t)
	if err := q.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
