package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Queue is an in-memory channel-backed implementation of Publisher and
// Consumer. Suitable for a single-instance deployment; the interfaces exist
// so a broker-backed implementation can replace it without touching callers.
type Queue struct {
	jobChan   chan *Job
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool

	workers     int
	maxAttempts int
	backoff     time.Duration
	log         zerolog.Logger
}

func NewQueue(bufferSize, workers, maxAttempts int, log zerolog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		jobChan:     make(chan *Job, bufferSize),
		closeChan:   make(chan struct{}),
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     time.Second,
		log:         log,
	}
}

func (q *Queue) Publish(ctx context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = q.maxAttempts
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

func (q *Queue) Start(ctx context.Context, handler Handler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.process(ctx, job, handler)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *Job, handler Handler) {
	job.Attempts++
	l := q.log.With().
		Stringer("job_id", job.ID).
		Str("job_type", string(job.Type)).
		Int("attempt", job.Attempts).
		Logger()

	err := handler(ctx, job)
	if err == nil {
		l.Debug().Msg("job completed")
		return
	}

	if IsPermanent(err) {
		l.Error().Err(err).Msg("job failed permanently")
		return
	}

	if job.Attempts >= job.MaxAttempts {
		l.Error().Err(err).Msg("job failed, attempts exhausted")
		return
	}

	l.Warn().Err(err).Msg("job failed, retrying")
	// Linear backoff before requeue; AfterFunc keeps the worker free.
	delay := time.Duration(job.Attempts) * q.backoff
	time.AfterFunc(delay, func() {
		if err := q.Publish(context.Background(), job); err != nil {
			l.Error().Err(err).Msg("job requeue failed")
		}
	})
}

func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ Publisher = (*Queue)(nil)
	_ Consumer  = (*Queue)(nil)
)
