package queue

import (
	"context"
)

// MessageInterface abstracts a delivered message so consumers can be tested
// without a live broker.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface for job queues
type JobQueue interface {
	// Enqueue adds a job to the queue. Jobs with NotBefore set are routed
	// through the delayed exchange when the plugin is available.
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue removes and returns a single message, or nil when the queue
	// is empty. The caller must ack or nack the message.
	// Deprecated: prefer Consume, which avoids polling.
	Dequeue(ctx context.Context) (*Message, error)

	// Consume delivers messages asynchronously on the returned channel
	// until the context is cancelled or the connection drops. The caller
	// must ack or nack each message; prefetchCount bounds the number of
	// unacknowledged messages held at once.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}
