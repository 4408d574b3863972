package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/channel"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/notification"
)

const systemActor = "system"

type dispatchQueue interface {
	NextBatch(ctx context.Context) ([]model.QueuedNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, reason string) (model.NotificationStatus, error)
	Sweep(ctx context.Context) (notification.SweepResult, error)
}

type auditRecorder interface {
	Record(ctx context.Context, e model.AuditEvent)
}

type dispatchMetrics interface {
	Delivery(channel string, err error)
	Outcome(status string)
	Cycle(d time.Duration)
}

// DispatcherConfig tunes the dispatcher.
type DispatcherConfig struct {
	Interval       time.Duration
	Workers        int
	ChannelTimeout time.Duration
}

// CycleReport summarises one dispatch cycle.
type CycleReport struct {
	Picked            int
	Sent              int
	Retrying          int
	Failed            int
	SecondaryFailures int
	// StatusWriteErrors counts entries whose status write failed; they stay
	// pending and are counted under Retrying.
	StatusWriteErrors int
	Swept             notification.SweepResult
}

// Dispatcher delivers queued notifications over the primary channel and, once
// the primary succeeds, any secondary channels. Only the primary outcome
// decides the queue status.
type Dispatcher struct {
	queue     dispatchQueue
	primary   channel.Channel
	secondary []channel.Channel
	audit     auditRecorder
	metrics   dispatchMetrics
	cfg       DispatcherConfig

	// cycles never overlap
	cycle sync.Mutex
}

func NewDispatcher(
	q dispatchQueue,
	a auditRecorder,
	m dispatchMetrics,
	cfg DispatcherConfig,
	primary channel.Channel,
	secondary ...channel.Channel,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	return &Dispatcher{
		queue:     q,
		primary:   primary,
		secondary: secondary,
		audit:     a,
		metrics:   m,
		cfg:       cfg,
	}
}

type delivery struct {
	status            model.NotificationStatus
	secondaryFailures int
	statusWriteFailed bool
}

// Run dispatches on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	zlog.Logger.Info().Dur("interval", d.cfg.Interval).Int("workers", d.cfg.Workers).Msg("dispatcher started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("dispatcher stopped")
			return
		case <-ticker.C:
			report, err := d.RunCycle(ctx)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("dispatch cycle failed")
				continue
			}
			if report.Picked > 0 {
				zlog.Logger.Info().
					Int("picked", report.Picked).
					Int("sent", report.Sent).
					Int("retrying", report.Retrying).
					Int("failed", report.Failed).
					Int("status_write_errors", report.StatusWriteErrors).
					Msg("dispatch cycle finished")
			}
		}
	}
}

// RunCycle delivers one batch with a bounded worker pool, then sweeps the queue.
func (d *Dispatcher) RunCycle(ctx context.Context) (CycleReport, error) {
	d.cycle.Lock()
	defer d.cycle.Unlock()

	started := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.Cycle(time.Since(started))
		}
	}()

	var report CycleReport

	batch, err := d.queue.NextBatch(ctx)
	if err != nil {
		return report, err
	}
	report.Picked = len(batch)

	jobs := make(chan model.QueuedNotification)
	results := make(chan delivery, len(batch))

	var wg sync.WaitGroup
	wg.Add(d.cfg.Workers)
	for i := 0; i < d.cfg.Workers; i++ {
		go func() {
			defer wg.Done()

			for n := range jobs {
				results <- d.deliver(ctx, n)
			}
		}()
	}

feed:
	for _, n := range batch {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- n:
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	for r := range results {
		report.SecondaryFailures += r.secondaryFailures
		if r.statusWriteFailed {
			report.StatusWriteErrors++
		}
		switch r.status {
		case model.NotificationSent:
			report.Sent++
		case model.NotificationPending:
			report.Retrying++
		case model.NotificationFailed:
			report.Failed++
		}
	}

	swept, err := d.queue.Sweep(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to sweep notification queue")
	}
	report.Swept = swept

	return report, nil
}

// deliver attempts the primary channel first; secondaries fire only on the
// attempt whose primary succeeds, so a retried entry never repeats them. The
// queue status is written once, after every attempted channel resolves.
func (d *Dispatcher) deliver(ctx context.Context, n model.QueuedNotification) delivery {
	content := channel.ContentOf(n)
	recipient := n.Recipient()
	primary := d.primary.Name()

	perr := d.attempt(ctx, d.primary, recipient, content)
	if d.metrics != nil {
		d.metrics.Delivery(primary, perr)
	}

	var out delivery

	if perr == nil {
		out.secondaryFailures = d.fanOut(ctx, n, recipient, content)

		if err := d.queue.MarkSent(ctx, n.ID); err != nil {
			// the entry stays pending and is picked again next cycle
			zlog.Logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to mark notification sent")
			out.status = model.NotificationPending
			out.statusWriteFailed = true
			d.outcome(out.status)
			d.record(ctx, n, model.AuditDelivered, primary, nil, map[string]interface{}{
				"status_write_error": err.Error(),
			})
			return out
		}

		out.status = model.NotificationSent
		d.outcome(out.status)
		d.record(ctx, n, model.AuditDelivered, primary, nil, nil)
		return out
	}

	var extra map[string]interface{}

	status, err := d.queue.RecordFailure(ctx, n.ID, perr.Error())
	if err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to record delivery failure")
		status = model.NotificationPending
		out.statusWriteFailed = true
		extra = map[string]interface{}{"status_write_error": err.Error()}
	}
	out.status = status
	d.outcome(status)

	action := model.AuditDeliveryFailed
	if status == model.NotificationFailed {
		action = model.AuditDeliveryDead
		zlog.Logger.Error().Err(perr).
			Str("notification_id", n.ID.String()).
			Str("recipient", recipient).
			Msg("notification abandoned after final attempt")
	} else {
		zlog.Logger.Warn().Err(perr).
			Str("notification_id", n.ID.String()).
			Msg("primary channel delivery failed, will retry")
	}
	d.record(ctx, n, action, primary, perr, extra)

	return out
}

func (d *Dispatcher) attempt(ctx context.Context, ch channel.Channel, recipient string, content channel.Content) error {
	cctx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()

	return ch.Deliver(cctx, recipient, content)
}

// fanOut runs the secondary channels concurrently and returns how many failed.
func (d *Dispatcher) fanOut(ctx context.Context, n model.QueuedNotification, recipient string, content channel.Content) int {
	errs := make([]error, len(d.secondary))

	var wg sync.WaitGroup
	wg.Add(len(d.secondary))
	for i, ch := range d.secondary {
		go func(i int, ch channel.Channel) {
			defer wg.Done()
			errs[i] = d.attempt(ctx, ch, recipient, content)
		}(i, ch)
	}
	wg.Wait()

	failures := 0
	for i, ch := range d.secondary {
		name := ch.Name()
		err := errs[i]

		if errors.Is(err, channel.ErrSkipped) {
			continue
		}
		if d.metrics != nil {
			d.metrics.Delivery(name, err)
		}
		if err == nil {
			continue
		}

		failures++
		zlog.Logger.Warn().Err(err).
			Str("notification_id", n.ID.String()).
			Str("channel", name).
			Msg("secondary channel delivery failed")
		d.record(ctx, n, model.AuditDeliveryFailed, name, err, nil)
	}

	return failures
}

func (d *Dispatcher) outcome(status model.NotificationStatus) {
	if d.metrics != nil {
		d.metrics.Outcome(string(status))
	}
}

func (d *Dispatcher) record(
	ctx context.Context, n model.QueuedNotification, action, channelName string, err error, extra map[string]interface{},
) {
	if d.audit == nil {
		return
	}

	meta := map[string]interface{}{
		"notification_id": n.ID.String(),
		"channel":         channelName,
		"recipient":       n.Recipient(),
		"type":            string(n.Type),
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	for k, v := range extra {
		meta[k] = v
	}

	e := model.AuditEvent{
		Action:   action,
		ActorID:  systemActor,
		Metadata: meta,
	}
	if n.RequestID != nil {
		e.RequestID = *n.RequestID
	}

	d.audit.Record(ctx, e)
}
