package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

var (
	ErrQueueFull = errors.New("mail queue is full")
	ErrClosed    = errors.New("mail queue is closed")
)

// ResultHook is told the outcome of every delivery attempt; err is nil on success.
type ResultHook func(email ports.Email, err error)

// Dispatcher delivers emails on a fixed set of workers. Emails are sharded by
// recipient, so mails to one address go out in the order they were queued.
type Dispatcher struct {
	workers []chan ports.Email
	sender  ports.EmailSender
	hook    ResultHook
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. hook may be nil.
func NewDispatcher(numWorkers int, sender ports.EmailSender, hook ResultHook, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Email, numWorkers),
		sender:  sender,
		hook:    hook,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Email, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is handed to the sender; workers
// exit once Close has been called and their queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands the email to the worker responsible for its recipient
// without blocking. A full worker queue yields ErrQueueFull.
func (d *Dispatcher) Enqueue(email ports.Email) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.workers[d.shardIndex(email.To)] <- email:
		return nil
	default:
		return ErrQueueFull
	}
}

// Depth returns the number of emails waiting across all workers.
func (d *Dispatcher) Depth() int {
	n := 0
	for _, ch := range d.workers {
		n += len(ch)
	}
	return n
}

// Close stops accepting emails and waits until the queued ones are processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Email) {
	defer d.wg.Done()
	for email := range ch {
		err := d.sender.Send(ctx, email)
		if err != nil {
			d.log.Error().Err(err).
				Str("to", email.To).
				Int("worker_id", id).
				Msg("email delivery failed")
		}
		if d.hook != nil {
			d.hook(email, err)
		}
	}
}
