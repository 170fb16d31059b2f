package replication

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/models"
)

// Dispatcher replicates snapshots in the background. Notify never blocks:
// at most one snapshot waits, and a newer one replaces it.
type Dispatcher struct {
	rep     Replicator
	log     *slog.Logger
	metrics *metrics.Manager
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	pending chan *models.Snapshot

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher sending through rep. Each attempt,
// retries included, is bounded by timeout. m may be nil.
func NewDispatcher(rep Replicator, log *slog.Logger, m *metrics.Manager, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Dispatcher{
		rep:     rep,
		log:     log,
		metrics: m,
		timeout: timeout,
		pending: make(chan *models.Snapshot, 1),
		done:    make(chan struct{}),
	}
}

// Start runs the send loop until ctx is cancelled or Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop(ctx)
	}()
}

func (d *Dispatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			// Flush whatever was queued before Close.
			select {
			case snap := <-d.pending:
				d.send(context.WithoutCancel(ctx), snap)
			default:
			}
			return
		case snap := <-d.pending:
			d.send(ctx, snap)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, snap *models.Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.rep.Replicate(ctx, snap)
	elapsed := time.Since(start)

	if d.metrics != nil {
		result := metrics.ResultOK
		if err != nil {
			result = metrics.ResultError
		}
		d.metrics.CounterReplications.WithLabelValues(result).Inc()
		d.metrics.HistReplicationDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		d.log.Warn("replication failed", "sync_id", snap.SyncID, "error", err)
		return
	}
	d.log.Debug("replication complete", "sync_id", snap.SyncID, "duration", elapsed)
}

// Notify queues snap, replacing any snapshot still waiting to be sent.
// Snapshots handed over after Close are dropped.
func (d *Dispatcher) Notify(snap *models.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	select {
	case old := <-d.pending:
		d.log.Debug("replication superseded", "sync_id", old.SyncID)
		if d.metrics != nil {
			d.metrics.CounterSuperseded.Inc()
		}
	default:
	}
	d.pending <- snap
}

// Close stops the loop after a final attempt at any queued snapshot and waits
// for it to exit.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.done)
	})
	d.wg.Wait()
	return nil
}
