package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProcessor struct {
	mu      sync.Mutex
	jobs    []core.EnrichmentJob
	ctxErrs []error
	block   chan struct{}
	started chan struct{}
	running atomic.Int32
	peak    atomic.Int32
}

func (p *testProcessor) Process(ctx context.Context, job core.EnrichmentJob) *enrichment.Outcome {
	n := p.running.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.block != nil {
		<-p.block
	}
	p.running.Add(-1)

	p.mu.Lock()
	p.jobs = append(p.jobs, job)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	p.mu.Unlock()
	return &enrichment.Outcome{DocumentKey: job.BlobPath, Stage: enrichment.StageDone}
}

func (p *testProcessor) processed() []core.EnrichmentJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.EnrichmentJob(nil), p.jobs...)
}

type testMessage struct {
	data  []byte
	acks  atomic.Int32
	naks  atomic.Int32
	acked chan struct{}
}

func newTestMessage(data string) *testMessage {
	return &testMessage{data: []byte(data), acked: make(chan struct{}, 1)}
}

func (m *testMessage) Data() []byte { return m.data }

func (m *testMessage) Ack() error {
	m.acks.Add(1)
	m.acked <- struct{}{}
	return nil
}

func (m *testMessage) Nak() error {
	m.naks.Add(1)
	return nil
}

func waitAcked(t *testing.T, m *testMessage) {
	t.Helper()
	select {
	case <-m.acked:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not acked")
	}
}

func TestNewDispatcher_RequiresProcessor(t *testing.T) {
	d, err := NewDispatcher(nil)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrProcessorRequired)
}

func TestDispatch_AcksAfterProcessing(t *testing.T) {
	proc := &testProcessor{}
	var outcomes atomic.Int32
	d, err := NewDispatcher(proc, WithPoolSize(2), WithOutcomeHandler(func(out *enrichment.Outcome) {
		outcomes.Add(1)
	}))
	require.NoError(t, err)
	defer d.Close()

	msg := newTestMessage(`{"blob_name":"upload/cat.png","blob_uri":"u"}`)
	require.NoError(t, d.Dispatch(context.Background(), msg))
	waitAcked(t, msg)
	d.Wait()

	assert.Equal(t, []core.EnrichmentJob{{BlobPath: "upload/cat.png", BlobURI: "u"}}, proc.processed())
	assert.Equal(t, int32(1), msg.acks.Load())
	assert.Equal(t, int32(0), msg.naks.Load())
	assert.Equal(t, int32(1), outcomes.Load())
}

func TestDispatch_MalformedMessageAcked(t *testing.T) {
	proc := &testProcessor{}
	d, err := NewDispatcher(proc)
	require.NoError(t, err)
	defer d.Close()

	msg := newTestMessage(`{"blob_uri":"u"}`)
	err = d.Dispatch(context.Background(), msg)
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Equal(t, int32(1), msg.acks.Load())
	assert.Empty(t, proc.processed())
}

func TestDispatch_BoundedConcurrency(t *testing.T) {
	proc := &testProcessor{block: make(chan struct{})}
	d, err := NewDispatcher(proc, WithPoolSize(2))
	require.NoError(t, err)
	defer d.Close()

	msgs := make([]*testMessage, 5)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range msgs {
			msgs[i] = newTestMessage(`{"blob_name":"upload/img.png"}`)
			assert.NoError(t, d.Dispatch(context.Background(), msgs[i]))
		}
	}()

	// Submission blocks while both workers are busy.
	select {
	case <-done:
		t.Fatal("dispatch did not block on a full pool")
	case <-time.After(50 * time.Millisecond):
	}

	close(proc.block)
	<-done
	d.Wait()

	assert.Len(t, proc.processed(), 5)
	assert.LessOrEqual(t, proc.peak.Load(), int32(2))
	for _, m := range msgs {
		assert.Equal(t, int32(1), m.acks.Load())
	}
}

func TestDispatch_AfterClose(t *testing.T) {
	d, err := NewDispatcher(&testProcessor{})
	require.NoError(t, err)
	d.Close()

	msg := newTestMessage(`{"blob_name":"upload/cat.png"}`)
	err = d.Dispatch(context.Background(), msg)
	assert.ErrorIs(t, err, ErrDispatcherClosed)
	assert.Equal(t, int32(1), msg.naks.Load())
	assert.Equal(t, int32(0), msg.acks.Load())
}

func TestDispatch_CancelDoesNotAbortRunningJob(t *testing.T) {
	proc := &testProcessor{block: make(chan struct{}), started: make(chan struct{}, 1)}
	d, err := NewDispatcher(proc, WithPoolSize(1))
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	msg := newTestMessage(`{"blob_name":"upload/cat.png"}`)
	require.NoError(t, d.Dispatch(ctx, msg))

	select {
	case <-proc.started:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not start")
	}
	cancel()
	close(proc.block)
	waitAcked(t, msg)
	d.Wait()

	proc.mu.Lock()
	defer proc.mu.Unlock()
	require.Len(t, proc.ctxErrs, 1)
	assert.NoError(t, proc.ctxErrs[0])
	assert.Equal(t, int32(1), msg.acks.Load())
	assert.Equal(t, int32(0), msg.naks.Load())
}

func TestDispatch_AfterCancelNaks(t *testing.T) {
	proc := &testProcessor{}
	d, err := NewDispatcher(proc)
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := newTestMessage(`{"blob_name":"upload/cat.png"}`)
	err = d.Dispatch(ctx, msg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), msg.naks.Load())
	assert.Equal(t, int32(0), msg.acks.Load())
	assert.Empty(t, proc.processed())
}
