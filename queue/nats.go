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
	"time"

	"github.com/nats-io/nats.go"
	"github.com/poiesic/enrichit/core"
)

// NATSConfig describes the JetStream stream and durable consumer.
type NATSConfig struct {
	URL     string
	Stream  string
	Subject string
	Durable string

	// AckWait bounds how long a job may run before the broker redelivers it.
	AckWait time.Duration

	// ConnectAttempts and ConnectBackoff control the initial connection retry.
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// DefaultNATSConfig returns the defaults for a local NATS server.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:             nats.DefaultURL,
		Stream:          "IMAGES",
		Subject:         "image-enrichment-queue",
		Durable:         "image-enrichment",
		AckWait:         10 * time.Minute,
		ConnectAttempts: 5,
		ConnectBackoff:  time.Second,
	}
}

// NATSConsumer receives enrichment messages from a JetStream subject.
type NATSConsumer struct {
	cfg    NATSConfig
	nc     *nats.Conn
	js     nats.JetStreamContext
	sub    *nats.Subscription
	logger *slog.Logger
}

// ConnectNATS connects to the broker, retrying with backoff, and ensures the
// stream exists.
func ConnectNATS(ctx context.Context, cfg NATSConfig, logger *slog.Logger) (*NATSConsumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats")

	var nc *nats.Conn
	err := RetryWithBackoff(ctx, func() error {
		var err error
		nc, err = nats.Connect(cfg.URL,
			nats.Name("enrichit"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("disconnected", "error", err)
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("reconnected", "url", c.ConnectedUrl())
			}),
		)
		return err
	}, max(cfg.ConnectAttempts, 1), cfg.ConnectBackoff)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open jetstream: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
		Storage:  nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("connected", "url", cfg.URL, "stream", cfg.Stream, "subject", cfg.Subject)
	return &NATSConsumer{cfg: cfg, nc: nc, js: js, logger: logger}, nil
}

// Publish enqueues job on the configured subject.
func (c *NATSConsumer) Publish(ctx context.Context, job core.EnrichmentJob) error {
	if c.js == nil {
		return ErrNotConnected
	}
	data, err := EncodeMessage(job)
	if err != nil {
		return err
	}
	if _, err := c.js.Publish(c.cfg.Subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", job.BlobPath, err)
	}
	return nil
}

// Start binds to the durable consumer, creating it if needed, and feeds every
// message to d. Start returns once the subscription is active. Messages
// delivered after ctx is canceled are nak'd for redelivery.
func (c *NATSConsumer) Start(ctx context.Context, d *Dispatcher) error {
	if c.js == nil {
		return ErrNotConnected
	}
	if err := c.ensureConsumer(); err != nil {
		return err
	}

	sub, err := c.js.Subscribe(c.cfg.Subject, func(msg *nats.Msg) {
		err := d.Dispatch(ctx, natsMessage{msg})
		switch {
		case err == nil, errors.Is(err, ErrInvalidMessage):
		case errors.Is(err, context.Canceled):
			c.logger.Debug("shutting down, message returned to the stream")
		default:
			c.logger.Error("dispatch failed", "error", err)
		}
	}, nats.Bind(c.cfg.Stream, c.cfg.Durable), nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.cfg.Subject, err)
	}
	c.sub = sub
	c.logger.Info("subscribed", "subject", c.cfg.Subject, "durable", c.cfg.Durable)
	return nil
}

// ensureConsumer creates the durable push consumer. A consumer created by the
// subscription itself would be deleted when the subscription drains.
func (c *NATSConsumer) ensureConsumer() error {
	_, err := c.js.AddConsumer(c.cfg.Stream, &nats.ConsumerConfig{
		Durable:        c.cfg.Durable,
		DeliverSubject: deliverSubject(c.cfg.Durable),
		DeliverPolicy:  nats.DeliverAllPolicy,
		AckPolicy:      nats.AckExplicitPolicy,
		AckWait:        c.cfg.AckWait,
		FilterSubject:  c.cfg.Subject,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, nats.ErrConsumerNameAlreadyInUse):
		c.logger.Warn("durable consumer exists with a different config, binding to it", "durable", c.cfg.Durable)
		return nil
	default:
		return fmt.Errorf("failed to create consumer %s: %w", c.cfg.Durable, err)
	}
}

// deliverSubject is the push subject the durable consumer delivers to.
func deliverSubject(durable string) string {
	return "enrichit.deliver." + durable
}

// Stop drains the subscription and waits until every delivered message has
// been handed to the dispatcher, or ctx is done. The durable consumer is kept.
func (c *NATSConsumer) Stop(ctx context.Context) error {
	if c.sub == nil || !c.sub.IsValid() {
		return nil
	}
	closed := c.sub.StatusChanged(nats.SubscriptionClosed)
	if err := c.sub.Drain(); err != nil {
		return fmt.Errorf("failed to drain subscription: %w", err)
	}
	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending acks and closes the connection. Call Stop and wait
// for the dispatcher first so in-flight jobs can still ack.
func (c *NATSConsumer) Close() error {
	if c.nc == nil || c.nc.IsClosed() {
		return nil
	}
	var err error
	if c.nc.IsConnected() {
		err = c.nc.FlushTimeout(5 * time.Second)
	}
	c.nc.Close()
	return err
}

// natsMessage adapts a JetStream message to Message.
type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Data() []byte { return m.msg.Data }
func (m natsMessage) Ack() error   { return m.msg.Ack() }
func (m natsMessage) Nak() error   { return m.msg.Nak() }
