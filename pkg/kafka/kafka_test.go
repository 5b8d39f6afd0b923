package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { w.closed = true; return nil }

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

type fakeReader struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{ch: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.ch <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { r.closed = true; return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type funcHandler struct {
	topic string
	fn    func([]byte) error
}

func (h funcHandler) Topic() string                            { return h.topic }
func (h funcHandler) Handle(_ context.Context, b []byte) error { return h.fn(b) }

func testConsumer(t *testing.T, r *fakeReader, dlq *fakeWriter, retryMax int) *Consumer {
	t.Helper()
	cfg := &ConsumerConfig{
		WorkerCount: 2,
		BufferSize:  4,
		RetryMax:    retryMax,
		BackoffMin:  time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
		Registerer:  prometheus.NewRegistry(),
	}
	if dlq != nil {
		cfg.DLQTopic = "forecast.dlq"
	}
	c := newConsumer(cfg)
	c.newReader = func(string) messageReader { return r }
	if dlq != nil {
		c.dlq = dlq
	}
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestProducerPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy", prometheus.NewRegistry())

	err := p.Publish(context.Background(), "forecast.requested", []byte("acme:month"),
		map[string]int{"horizon": 3}, kafka.Header{Key: "trace_id", Value: []byte("t1")})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	got := w.written()
	if len(got) != 1 {
		t.Fatalf("messages = %d", len(got))
	}
	m := got[0]
	if m.Topic != "forecast.requested" || string(m.Key) != "acme:month" {
		t.Fatalf("unexpected message %+v", m)
	}
	var body map[string]int
	if err := json.Unmarshal(m.Value, &body); err != nil || body["horizon"] != 3 {
		t.Fatalf("value = %s (%v)", m.Value, err)
	}
	if ExtractTraceID(m) != "t1" {
		t.Fatalf("trace header lost")
	}
}

func TestProducerPublishRawBytesAndError(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip", nil)
	if err := p.Publish(context.Background(), "t", nil, []byte("raw")); err != nil {
		t.Fatal(err)
	}
	if string(w.written()[0].Value) != "raw" {
		t.Fatalf("raw bytes were re-encoded")
	}

	w.err = errors.New("broker down")
	if err := p.Publish(context.Background(), "t", nil, []byte("x")); !errors.Is(err, w.err) {
		t.Fatalf("err = %v", err)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close: %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestConsumerHandlesAndCommits(t *testing.T) {
	r := newFakeReader(
		kafka.Message{Topic: "forecast.ready", Value: []byte("a")},
		kafka.Message{Topic: "forecast.ready", Value: []byte("b")},
	)
	c := testConsumer(t, r, nil, 0)

	var mu sync.Mutex
	seen := map[string]bool{}
	c.RegisterHandler(funcHandler{topic: "forecast.ready", fn: func(b []byte) error {
		mu.Lock()
		seen[string(b)] = true
		mu.Unlock()
		return nil
	}})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return r.commits() == 2 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !seen["a"] || !seen["b"] || !r.closed {
		t.Fatalf("seen=%v closed=%v", seen, r.closed)
	}
}

func TestConsumerRetriesThenSucceeds(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Value: []byte("x")})
	c := testConsumer(t, r, nil, 3)

	var mu sync.Mutex
	calls, errAttempts := 0, 0
	c.SetHook(HookFuncs{Err: func(_ context.Context, _ kafka.Message, _ error, attempt int) {
		mu.Lock()
		errAttempts = attempt
		mu.Unlock()
	}})
	c.RegisterHandler(funcHandler{topic: "t", fn: func([]byte) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}})

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return r.commits() == 1 })
	_ = c.Stop(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 || errAttempts != 2 {
		t.Fatalf("calls=%d lastErrAttempt=%d", calls, errAttempts)
	}
}

func TestConsumerParksExhaustedMessagesOnDLQ(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Key: []byte("k"), Value: []byte("bad")})
	dlq := &fakeWriter{}
	c := testConsumer(t, r, dlq, 1)
	c.RegisterHandler(funcHandler{topic: "t", fn: func([]byte) error { return errors.New("poison") }})

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return r.commits() == 1 })
	_ = c.Stop(context.Background())

	parked := dlq.written()
	if len(parked) != 1 || parked[0].Topic != "forecast.dlq" || string(parked[0].Value) != "bad" {
		t.Fatalf("dlq = %+v", parked)
	}
	var src string
	for _, h := range parked[0].Headers {
		if h.Key == "source_topic" {
			src = string(h.Value)
		}
	}
	if src != "t" {
		t.Fatalf("source_topic header = %q", src)
	}
	if !dlq.closed {
		t.Fatalf("dlq writer not closed")
	}
}

func TestConsumerLeavesFailedUncommittedWithoutDLQ(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Value: []byte("bad")})
	c := testConsumer(t, r, nil, 0)

	done := make(chan struct{})
	c.RegisterHandler(funcHandler{topic: "t", fn: func([]byte) error {
		defer close(done)
		return errors.New("poison")
	}})
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-done
	time.Sleep(20 * time.Millisecond)
	_ = c.Stop(context.Background())
	if r.commits() != 0 {
		t.Fatalf("failed message was committed")
	}
}

func TestConsumerRecoversHandlerPanic(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Value: []byte("x")})
	dlq := &fakeWriter{}
	c := testConsumer(t, r, dlq, 0)
	c.RegisterHandler(funcHandler{topic: "t", fn: func([]byte) error { panic("boom") }})

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(dlq.written()) == 1 })
	_ = c.Stop(context.Background())
}

func TestBeforeHandleErrorSkipsHandler(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Value: []byte("x")})
	dlq := &fakeWriter{}
	c := testConsumer(t, r, dlq, 0)
	called := false
	c.SetHook(HookFuncs{Before: func(ctx context.Context, _ kafka.Message) (context.Context, error) {
		return ctx, errors.New("rejected")
	}})
	c.RegisterHandler(funcHandler{topic: "t", fn: func([]byte) error { called = true; return nil }})

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(dlq.written()) == 1 })
	_ = c.Stop(context.Background())
	if called {
		t.Fatalf("handler ran despite BeforeHandle error")
	}
}

func TestStartWithoutHandlers(t *testing.T) {
	c := testConsumer(t, newFakeReader(), nil, 0)
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("expected error without handlers")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %v out of (0, %v]", attempt, d, max)
		}
	}
}
