// Package queue delivers notification emails in the background so the
// notification check never waits on a mail transport.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
	"github.com/routinely/tracker/internal/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
	sendTimeout    = 30 * time.Second
)

// Dispatcher routes emails to a fixed set of workers using consistent hashing
// on the recipient, so one user's emails are delivered in order.
type Dispatcher struct {
	workers []chan domain.EmailMessage
	sink    ports.MailSink
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.MailQueue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to bufferSize emails. Non-positive values fall back to the
// defaults.
func NewDispatcher(numWorkers, bufferSize int, sink ports.MailSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan domain.EmailMessage, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.EmailMessage, bufferSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an email to the worker responsible for its recipient. It
// never blocks: when that worker's buffer is full the email is dropped.
func (d *Dispatcher) Enqueue(msg domain.EmailMessage) bool {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.EmailsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("notification_id", msg.NotificationID).
			Int("worker_id", idx).
			Msg("email queue full, dropping message")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.EmailMessage) {
	defer d.wg.Done()
	depth := metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			depth.Dec()
			d.deliver(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, msg domain.EmailMessage) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.sink.Send(sendCtx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("notification_id", msg.NotificationID).
			Int("worker_id", id).
			Msg("email delivery failed")
		return
	}
	metrics.EmailsTotal.WithLabelValues("sent").Inc()
	d.log.Debug().
		Str("notification_id", msg.NotificationID).
		Int("worker_id", id).
		Msg("email delivered")
}
