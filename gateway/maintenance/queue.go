// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package maintenance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// event is a queued resource publication.
type event struct {
	ResourceType string
	ID           string
	QueueTime    time.Time
}

// Queue is a worker pool that publishes resources in the background.
// Events are processed best-effort: when the queue is full they are dropped
// and logged.
type Queue struct {
	log     *zap.Logger
	service *Service

	ch         chan event
	numWorkers int

	mu      sync.Mutex
	stop    func()
	eg      *errgroup.Group
	closed  bool
	pending int
	idle    chan struct{}
}

var _ Publisher = (*Queue)(nil)

// NewQueue creates a new Queue publishing through service.
func NewQueue(log *zap.Logger, service *Service, config Config) *Queue {
	numWorkers := config.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Queue{
		log:        log,
		service:    service,
		ch:         make(chan event, queueSize),
		numWorkers: numWorkers,
	}
}

// Run starts the workers and blocks until ctx is canceled or the queue is
// closed. Events accepted before that point are published before returning.
func (queue *Queue) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	queue.mu.Lock()
	if queue.closed {
		queue.mu.Unlock()
		return Error.New("already closed")
	}
	if queue.stop != nil {
		queue.mu.Unlock()
		return Error.New("already started")
	}
	ctx, queue.stop = context.WithCancel(ctx)
	queue.eg = &errgroup.Group{}
	for range queue.numWorkers {
		queue.eg.Go(func() error {
			queue.work(ctx)
			return nil
		})
	}
	eg := queue.eg
	queue.mu.Unlock()

	return eg.Wait()
}

// PublishResourceKey queues id for the filter of resourceType. It never
// blocks; the event is dropped when the queue is full or closed.
func (queue *Queue) PublishResourceKey(ctx context.Context, resourceType, id string) {
	// the closed check and the send happen under mu, so once closed is set
	// the channel contents are final
	queue.mu.Lock()
	reason := ""
	if queue.closed {
		reason = "queue closed"
	} else {
		select {
		case queue.ch <- event{ResourceType: resourceType, ID: id, QueueTime: time.Now()}:
			queue.pending++
		default:
			reason = "queue full"
		}
	}
	queue.mu.Unlock()

	if reason != "" {
		queue.drop(resourceType, id, reason)
	}
}

func (queue *Queue) drop(resourceType, id, reason string) {
	mon.Counter("maintenance_queue_dropped").Inc(1)
	queue.log.Warn("dropping resource publication",
		zap.String("reason", reason),
		zap.String("type", resourceType),
		zap.String("id", id))
}

func (queue *Queue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			queue.markClosed()
			queue.drain(context.WithoutCancel(ctx))
			return
		case ev := <-queue.ch:
			queue.process(ctx, ev)
		}
	}
}

func (queue *Queue) markClosed() {
	queue.mu.Lock()
	defer queue.mu.Unlock()
	queue.closed = true
}

// drain publishes whatever is still buffered.
func (queue *Queue) drain(ctx context.Context) {
	for {
		select {
		case ev := <-queue.ch:
			queue.process(ctx, ev)
		default:
			return
		}
	}
}

func (queue *Queue) process(ctx context.Context, ev event) {
	mon.IntVal("maintenance_queue_time").Observe(int64(time.Since(ev.QueueTime)))
	mon.IntVal("maintenance_queue_size").Observe(int64(len(queue.ch)))
	queue.service.PublishResourceKey(ctx, ev.ResourceType, ev.ID)
	queue.done()
}

func (queue *Queue) done() {
	queue.mu.Lock()
	defer queue.mu.Unlock()
	queue.pending--
	if queue.pending == 0 && queue.idle != nil {
		close(queue.idle)
		queue.idle = nil
	}
}

// Len returns the number of queued events.
func (queue *Queue) Len() int { return len(queue.ch) }

// Wait blocks until every accepted event has been processed or ctx is done.
func (queue *Queue) Wait(ctx context.Context) {
	queue.mu.Lock()
	if queue.pending == 0 {
		queue.mu.Unlock()
		return
	}
	if queue.idle == nil {
		queue.idle = make(chan struct{})
	}
	idle := queue.idle
	queue.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-idle:
	}
}

// Close stops the workers after they publish the remaining events. Events
// accepted by a queue that was never run are dropped.
func (queue *Queue) Close() error {
	queue.mu.Lock()
	queue.closed = true
	stop := queue.stop
	eg := queue.eg
	queue.mu.Unlock()

	if stop == nil {
		for {
			select {
			case ev := <-queue.ch:
				queue.drop(ev.ResourceType, ev.ID, "queue closed")
				queue.done()
			default:
				return nil
			}
		}
	}

	stop()
	return eg.Wait()
}
