package notify

import (
	"context"
	"sync"
	"time"

	"github.com/careconnect/scheduler/pkg/logging"
)

// Dispatcher delivers notification intents asynchronously. Booking hands it
// intents after the transaction commits; delivery is best-effort and a
// failed send is logged, never surfaced to the booking caller.
type Dispatcher struct {
	mailer *Mailer
	sender EmailSender
	logger *logging.Logger

	queue   chan Intent
	wg      sync.WaitGroup
	once    sync.Once
	timeout time.Duration
}

// DispatcherConfig tunes the dispatcher's worker pool.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(mailer *Mailer, sender EmailSender, cfg DispatcherConfig, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		mailer:  mailer,
		sender:  sender,
		logger:  logger,
		queue:   make(chan Intent, cfg.QueueSize),
		timeout: cfg.SendTimeout,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues intents without blocking. When the queue is full the
// intent is dropped and logged; notification delivery is best-effort.
func (d *Dispatcher) Dispatch(intents ...Intent) {
	for _, intent := range intents {
		if intent.RecipientEmail == "" {
			d.logger.Warn("notify: dropping intent without recipient", "kind", intent.Kind)
			continue
		}
		select {
		case d.queue <- intent:
		default:
			d.logger.Error("notify: queue full, dropping intent", "kind", intent.Kind, "to", intent.RecipientEmail)
		}
	}
}

// Close stops accepting intents and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for intent := range d.queue {
		d.deliver(intent)
	}
}

func (d *Dispatcher) deliver(intent Intent) {
	msg, err := d.mailer.Render(intent)
	if err != nil {
		d.logger.Error("notify: render failed", "error", err, "kind", intent.Kind)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("notify: send failed", "error", err, "kind", intent.Kind, "to", msg.To)
		return
	}
	d.logger.Info("notify: intent delivered", "kind", intent.Kind, "to", msg.To)
}
