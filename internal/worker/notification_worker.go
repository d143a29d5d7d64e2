package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/notify"
)

// Task is one queued notification fan-out: an event plus the state snapshot
// captured when it fired.
type Task struct {
	EventType domain.EventType
	Context   notify.EventContext
}

// EventDispatcher is the downstream consumed by the worker pool.
type EventDispatcher interface {
	Dispatch(ctx context.Context, eventType domain.EventType, ec notify.EventContext)
}

// NotificationWorker drains a bounded queue of notification tasks with a
// fixed number of goroutines. Enqueue never blocks callers: when the queue is
// full the task is dropped and counted against the log.
type NotificationWorker struct {
	dispatcher     EventDispatcher
	queue          chan Task
	logger         *zap.Logger
	attemptTimeout time.Duration
	concurrency    int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewNotificationWorker(dispatcher EventDispatcher, queueSize, concurrency int, attemptTimeout time.Duration, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &NotificationWorker{
		dispatcher:     dispatcher,
		queue:          make(chan Task, queueSize),
		logger:         logger,
		attemptTimeout: attemptTimeout,
		concurrency:    concurrency,
	}
}

// Start launches the worker goroutines.
func (w *NotificationWorker) Start() {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run()
	}
	w.logger.Info("notification workers started",
		zap.Int("concurrency", w.concurrency),
		zap.Int("queue_size", cap(w.queue)))
}

// Enqueue hands a task to the pool without blocking. It reports whether the
// task was accepted.
func (w *NotificationWorker) Enqueue(task Task) bool {
	select {
	case w.queue <- task:
		return true
	default:
		w.logger.Warn("notification queue full, dropping task",
			zap.String("event_type", string(task.EventType)))
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (w *NotificationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for task := range w.queue {
		w.process(task)
	}
}

func (w *NotificationWorker) process(task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification task panicked",
				zap.String("event_type", string(task.EventType)),
				zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.attemptTimeout)
	defer cancel()
	w.dispatcher.Dispatch(ctx, task.EventType, task.Context)
}
