package queue

import "errors"

var (
	// ErrInvalidMessage is returned when a queue message cannot be decoded into a job.
	ErrInvalidMessage = errors.New("invalid queue message")

	// ErrProcessorRequired is returned when a dispatcher is created without a processor.
	ErrProcessorRequired = errors.New("processor required")

	// ErrDispatcherClosed is returned when a message arrives after Close.
	ErrDispatcherClosed = errors.New("dispatcher closed")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNotConnected is returned when publishing or subscribing without a connection.
	ErrNotConnected = errors.New("not connected to broker")
)
