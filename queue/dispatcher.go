// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/enrichment"
)

// Processor runs one enrichment job.
type Processor interface {
	Process(ctx context.Context, job core.EnrichmentJob) *enrichment.Outcome
}

var _ Processor = (*enrichment.Pipeline)(nil)

// Message is an inbound broker message.
type Message interface {
	Data() []byte
	Ack() error
	Nak() error
}

// Dispatcher runs each inbound message as an independent job on a worker pool.
type Dispatcher struct {
	processor Processor
	pool      *ants.Pool
	poolSize  int
	onOutcome func(*enrichment.Outcome)
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithPoolSize sets the number of jobs processed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) DispatcherOption {
	return func(d *Dispatcher) error {
		if size < 1 {
			size = 1
		}
		d.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// WithOutcomeHandler registers fn to receive every job outcome.
// fn is called from worker goroutines.
func WithOutcomeHandler(fn func(*enrichment.Outcome)) DispatcherOption {
	return func(d *Dispatcher) error {
		d.onOutcome = fn
		return nil
	}
}

// NewDispatcher creates a dispatcher that hands jobs to processor.
func NewDispatcher(processor Processor, opts ...DispatcherOption) (*Dispatcher, error) {
	if processor == nil {
		return nil, ErrProcessorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	d := &Dispatcher{
		processor: processor,
		poolSize:  poolSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "dispatcher")

	pool, err := ants.NewPool(d.poolSize)
	if err != nil {
		return nil, err
	}
	d.pool = pool
	return d, nil
}

// Dispatch decodes msg and submits it to the worker pool, blocking while the
// pool is full. The message is acked when the job finishes. Malformed
// messages are acked immediately and ErrInvalidMessage is returned.
//
// Canceling ctx stops new jobs: a message dispatched after cancellation is
// nak'd so the broker redelivers it. Jobs already submitted run to completion
// with ctx's values but not its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	job, err := DecodeMessage(msg.Data())
	if err != nil {
		d.logger.Warn("dropping malformed message", "error", err)
		if ackErr := msg.Ack(); ackErr != nil {
			d.logger.Error("failed to ack malformed message", "error", ackErr)
		}
		return err
	}

	if err := ctx.Err(); err != nil {
		d.nak(job, msg)
		return err
	}

	jobCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	err = d.pool.Submit(func() {
		defer d.wg.Done()
		if ctx.Err() != nil {
			d.nak(job, msg)
			return
		}
		d.run(jobCtx, job, msg)
	})
	if err != nil {
		d.wg.Done()
		d.nak(job, msg)
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrDispatcherClosed
		}
		return fmt.Errorf("failed to submit job: %w", err)
	}
	return nil
}

func (d *Dispatcher) nak(job core.EnrichmentJob, msg Message) {
	if err := msg.Nak(); err != nil {
		d.logger.Error("failed to nak message", "blob", job.BlobPath, "error", err)
	}
}

func (d *Dispatcher) run(ctx context.Context, job core.EnrichmentJob, msg Message) {
	out := d.processor.Process(ctx, job)
	if err := msg.Ack(); err != nil {
		d.logger.Error("failed to ack message", "blob", job.BlobPath, "run_id", out.RunID, "error", err)
	}
	if d.onOutcome != nil {
		d.onOutcome(out)
	}
}

// Running returns the number of jobs in flight.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Wait blocks until every submitted job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for in-flight jobs and releases the worker pool.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}
