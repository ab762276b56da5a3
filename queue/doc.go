// Package queue feeds enrichment jobs from a message broker into a pipeline.
//
// Inbound messages are JSON objects of the form
//
//	{"blob_name": "upload/photos/cat.png", "blob_uri": "https://..."}
//
// A Dispatcher decodes each message and runs it as an independent job on a
// bounded ants worker pool. Submission blocks while the pool is saturated,
// which holds back the broker subscription. Messages are acknowledged once the
// job finishes, whatever its outcome; malformed messages are acknowledged
// straight away since redelivery cannot fix them.
//
// NATSConsumer binds a Dispatcher to a NATS JetStream durable subscription.
package queue
