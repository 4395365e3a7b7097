package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher sends messages in the background so callers never wait on, or
// fail because of, the admin channel. Failures are logged and dropped.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher bounding each delivery by timeout
func NewDispatcher(sink Sink, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if sink == nil {
		sink = Nop{}
	}
	return &Dispatcher{
		sink:    sink,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "notify")),
	}
}

// Notify schedules msg for delivery and returns immediately.
// Request cancellation does not abort delivery; the timeout does.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sink.Send(sendCtx, msg); err != nil {
			d.logger.Warn("admin notification failed",
				slog.String("kind", string(msg.Kind)),
				slog.Any("error", err))
			return
		}
		d.logger.Debug("admin notification sent", slog.String("kind", string(msg.Kind)))
	}()
}

// Wait blocks until every scheduled delivery has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
