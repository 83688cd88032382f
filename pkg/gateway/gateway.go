package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/pkg/jobs"
)

// Kind identifies the downstream channel of an instruction.
type Kind string

const (
	KindCalendarEvent      Kind = "calendar_event"
	KindParentNotification Kind = "parent_notification"
	KindInviteLink         Kind = "invite_link"
)

// ErrDispatch wraps sink failures.
var ErrDispatch = errors.New("gateway dispatch failed")

// Instruction is a fire-and-forget message for the notification/calendar gateway.
type Instruction struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	ApplicantID string                 `json:"applicantId"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Gateway accepts instructions for asynchronous delivery.
type Gateway interface {
	Dispatch(ctx context.Context, ins Instruction) error
}

// Sink delivers one instruction synchronously.
type Sink interface {
	Send(ctx context.Context, ins Instruction) error
}

// DispatcherConfig tunes the delivery worker pool.
type DispatcherConfig struct {
	Workers       int
	BufferSize    int
	Retries       int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Logger        *zap.Logger
	// OnFailure is invoked when an instruction exhausted its retries.
	OnFailure func(Instruction, error)
}

// Dispatcher queues instructions and delivers them to a sink from background workers.
type Dispatcher struct {
	sink   Sink
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewDispatcher builds a dispatcher. Call Start before dispatching.
func NewDispatcher(sink Sink, cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	d := &Dispatcher{sink: sink, logger: cfg.Logger}
	onFailure := cfg.OnFailure
	d.queue = jobs.NewQueue("gateway", d.handle, jobs.QueueConfig{
		Workers:       cfg.Workers,
		BufferSize:    cfg.BufferSize,
		MaxRetries:    cfg.Retries,
		RetryDelay:    cfg.RetryDelay,
		MaxRetryDelay: cfg.MaxRetryDelay,
		Logger:        cfg.Logger,
		OnGiveUp: func(job jobs.Job, err error) {
			if onFailure == nil {
				return
			}
			if ins, ok := job.Payload.(Instruction); ok {
				onFailure(ins, err)
			}
		},
	})
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for workers to exit. Queued instructions not yet delivered are dropped.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Stats reports delivery counters of the worker pool.
func (d *Dispatcher) Stats() jobs.Stats {
	return d.queue.Stats()
}

// Dispatch enqueues the instruction and returns without waiting for delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, ins Instruction) error {
	if ins.ID == "" {
		ins.ID = uuid.NewString()
	}
	if ins.CreatedAt.IsZero() {
		ins.CreatedAt = time.Now().UTC()
	}
	job := jobs.Job{ID: ins.ID, Type: string(ins.Kind), Payload: ins}
	if err := d.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	ins, ok := job.Payload.(Instruction)
	if !ok {
		d.logger.Error("unexpected gateway payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := d.sink.Send(ctx, ins); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return nil
}

// LogSink writes instructions to the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a log sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Send logs the instruction.
func (s *LogSink) Send(_ context.Context, ins Instruction) error {
	s.logger.Info("gateway instruction",
		zap.String("id", ins.ID),
		zap.String("kind", string(ins.Kind)),
		zap.String("applicant_id", ins.ApplicantID),
		zap.Any("payload", ins.Payload),
	)
	return nil
}
