package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driving"
)

// mockTaskQueue implements driven.TaskQueue for testing
type mockTaskQueue struct {
	mu           sync.Mutex
	tasks        []*domain.Task
	dequeueDelay time.Duration
	dequeueFn    func() (*domain.Task, error)
	ackFn        func(string) error
	nackFn       func(string, string) error
	pingFn       func() error
}

var _ driven.TaskQueue = (*mockTaskQueue)(nil)

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		tasks: make([]*domain.Task, 0),
	}
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	if m.dequeueDelay > 0 {
		select {
		case <-time.After(m.dequeueDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.dequeueFn != nil {
		return m.dequeueFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil, nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, nil
}

func (m *mockTaskQueue) Ack(ctx context.Context, taskID string) error {
	if m.ackFn != nil {
		return m.ackFn(taskID)
	}
	return nil
}

func (m *mockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	if m.nackFn != nil {
		return m.nackFn(taskID, reason)
	}
	return nil
}

func (m *mockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTaskQueue) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn()
	}
	return nil
}

func (m *mockTaskQueue) Close() error {
	return nil
}

// mockIngestion implements driving.IngestionService for testing
type mockIngestion struct {
	runFn       func(ctx context.Context, params map[string]string) (*domain.IngestionRun, error)
	runSourceFn func(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error)
}

var _ driving.IngestionService = (*mockIngestion)(nil)

func (m *mockIngestion) Run(ctx context.Context, params map[string]string) (*domain.IngestionRun, error) {
	if m.runFn != nil {
		return m.runFn(ctx, params)
	}
	run := domain.NewIngestionRun("run-all")
	run.Finalize()
	return run, nil
}

func (m *mockIngestion) RunSource(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
	if m.runSourceFn != nil {
		return m.runSourceFn(ctx, sourceID, method, params)
	}
	run := domain.NewIngestionRun("run-" + sourceID)
	run.StartSource(sourceID, sourceID)
	run.Finalize()
	return run, nil
}

func TestNewDefaults(t *testing.T) {
	w := New(Config{
		TaskQueue:      newMockTaskQueue(),
		Ingestion:      &mockIngestion{},
		Concurrency:    0,
		DequeueTimeout: 0,
	})

	if w.concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected default dequeue timeout 5, got %d", w.dequeueTimeout)
	}
	if w.logger == nil {
		t.Error("expected default logger")
	}
}

func TestStartStop(t *testing.T) {
	queue := newMockTaskQueue()
	queue.dequeueDelay = 100 * time.Millisecond

	w := New(Config{
		TaskQueue:      queue,
		Ingestion:      &mockIngestion{},
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	health := w.Health(ctx)
	if !health.Running {
		t.Error("expected worker to be running")
	}

	// Start again should be no-op
	if err := w.Start(ctx); err != nil {
		t.Errorf("second start should not error: %v", err)
	}

	w.Stop()

	health = w.Health(ctx)
	if health.Running {
		t.Error("expected worker to be stopped")
	}

	w.Stop() // Should not panic
}

func TestHealthQueueError(t *testing.T) {
	queue := newMockTaskQueue()
	queue.pingFn = func() error {
		return errors.New("connection failed")
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   &mockIngestion{},
		Concurrency: 1,
	})

	health := w.Health(context.Background())
	if health.QueueHealth {
		t.Error("expected queue to be unhealthy")
	}
	if health.Error != "connection failed" {
		t.Errorf("expected error message, got %q", health.Error)
	}
}

func TestProcessTaskUnknownType(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	task := &domain.Task{
		ID:   "task-123",
		Type: domain.TaskType("unknown_type"),
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   &mockIngestion{},
		Concurrency: 1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for unknown type, got %d", len(nacked))
	}
}

func TestProcessTaskMissingSourceID(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	task := &domain.Task{
		ID:      "task-123",
		Type:    domain.TaskTypeIngestSource,
		Payload: nil, // No source_id
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   &mockIngestion{},
		Concurrency: 1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for missing source_id, got %d", len(nacked))
	}
}

func TestIngestSourceSuccessAcks(t *testing.T) {
	queue := newMockTaskQueue()
	ingestion := &mockIngestion{
		runSourceFn: func(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
			if sourceID != "legifrance" || method != "fetch_recent_laws" {
				t.Errorf("RunSource(%q, %q)", sourceID, method)
			}
			run := domain.NewIngestionRun("run-1")
			run.StartSource(sourceID, "Légifrance")
			run.Finalize()
			return run, nil
		},
	}

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	task := domain.NewIngestSourceTask("legifrance", "fetch_recent_laws")

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   ingestion,
		Concurrency: 1,
	})
	w.processTask(context.Background(), task, slog.Default())

	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestIngestSourceErrorNacks(t *testing.T) {
	queue := newMockTaskQueue()
	ingestion := &mockIngestion{
		runSourceFn: func(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
			return nil, errors.New("unknown source")
		},
	}

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   ingestion,
		Concurrency: 1,
	})
	w.processTask(context.Background(), domain.NewIngestSourceTask("nope", ""), slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected 1 nack, got %d", len(nacked))
	}
}

func TestIngestSourceFailedStatsNacks(t *testing.T) {
	queue := newMockTaskQueue()
	ingestion := &mockIngestion{
		runSourceFn: func(ctx context.Context, sourceID, method string, params map[string]string) (*domain.IngestionRun, error) {
			run := domain.NewIngestionRun("run-1")
			stats := run.StartSource(sourceID, sourceID)
			run.FailSource(stats, errors.New("provider unavailable"))
			run.Finalize()
			return run, nil
		},
	}

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   ingestion,
		Concurrency: 1,
	})
	w.processTask(context.Background(), domain.NewIngestSourceTask("legifrance", ""), slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected nack when the source failed, got %d", len(nacked))
	}
}

func TestIngestAllPartialFailureStillAcks(t *testing.T) {
	queue := newMockTaskQueue()
	ingestion := &mockIngestion{
		runFn: func(ctx context.Context, params map[string]string) (*domain.IngestionRun, error) {
			run := domain.NewIngestionRun("run-1")
			run.StartSource("legifrance", "Légifrance")
			bad := run.StartSource("eurlex", "EUR-Lex")
			run.FailSource(bad, errors.New("timeout"))
			run.Finalize()
			return run, nil
		},
	}

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   ingestion,
		Concurrency: 1,
	})
	w.processTask(context.Background(), domain.NewIngestAllTask(), slog.Default())

	// Partial failures are logged but the task succeeds
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestProcessLoopWithTasks(t *testing.T) {
	queue := newMockTaskQueue()
	_ = queue.Enqueue(context.Background(), domain.NewIngestSourceTask("legifrance", ""))

	var mu sync.Mutex
	var acked []string
	queue.ackFn = func(taskID string) error {
		mu.Lock()
		defer mu.Unlock()
		acked = append(acked, taskID)
		return nil
	}

	w := New(Config{
		TaskQueue:      queue,
		Ingestion:      &mockIngestion{},
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(acked)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestProcessLoopDequeueErrorBacksOff(t *testing.T) {
	queue := newMockTaskQueue()
	var mu sync.Mutex
	callCount := 0
	queue.dequeueFn = func() (*domain.Task, error) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		if callCount < 3 {
			return nil, errors.New("temporary error")
		}
		return nil, nil
	}

	w := New(Config{
		TaskQueue:      queue,
		Ingestion:      &mockIngestion{},
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Dequeue errors trigger a 1s backoff before retrying
	time.Sleep(2 * time.Second)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if callCount < 2 {
		t.Errorf("expected at least 2 dequeue attempts, got %d", callCount)
	}
}

func TestContextCancellationStopsWorker(t *testing.T) {
	queue := newMockTaskQueue()
	queue.dequeueDelay = 500 * time.Millisecond

	w := New(Config{
		TaskQueue:      queue,
		Ingestion:      &mockIngestion{},
		Concurrency:    1,
		DequeueTimeout: 10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("worker did not stop after context cancellation")
		w.Stop()
	}
}

func TestAckErrorDoesNotPanic(t *testing.T) {
	queue := newMockTaskQueue()
	ackCalled := false
	queue.ackFn = func(taskID string) error {
		ackCalled = true
		return errors.New("ack failed")
	}

	w := New(Config{
		TaskQueue:   queue,
		Ingestion:   &mockIngestion{},
		Concurrency: 1,
	})
	w.processTask(context.Background(), domain.NewIngestSourceTask("legifrance", ""), slog.Default())

	if !ackCalled {
		t.Error("expected ack to be called")
	}
}
