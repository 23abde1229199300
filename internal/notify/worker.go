package notify

import (
	"context"
	"log"

	"yamor-backend/internal/store"
)

// Job is one queued caregiver notification.
type Job struct {
	Text string
}

// WorkerPool delivers caregiver notifications off the request path. A push
// failure is logged and dropped; it never reaches the caller that recorded
// the dose.
type WorkerPool struct {
	size   int
	jobs   chan Job
	store  store.Store
	sender PushSender
}

// NewWorkerPool creates a new worker pool reading channel credentials from
// the settings row at delivery time.
func NewWorkerPool(size int, s store.Store, sender PushSender) *WorkerPool {
	return &WorkerPool{
		size:   size,
		jobs:   make(chan Job, size*4),
		store:  s,
		sender: sender,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.deliver(ctx, job)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job without blocking the caller. When the queue is full
// the notification is dropped; the triggering write has already committed.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		log.Printf("notification queue full, dropping message %q", job.Text)
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

func (wp *WorkerPool) deliver(ctx context.Context, job Job) {
	settings, err := wp.store.GetCaregiverSettings(ctx)
	if err != nil {
		log.Printf("error loading caregiver settings: %v", err)
		return
	}
	if !settings.Configured() {
		return
	}

	ok, detail := Notify(ctx, wp.sender, settings.ChannelToken, settings.RecipientID, job.Text)
	if !ok {
		log.Printf("caregiver notification failed: %s", detail)
	}
}
