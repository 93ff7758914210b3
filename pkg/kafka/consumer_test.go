package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type flakyHandler struct {
	failures int
	calls    int
	panics   bool
}

func (h *flakyHandler) Topic() string { return "logins" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panics {
		panic("boom")
	}
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

type countingHook struct {
	NoopHook
	errs int
}

func (h *countingHook) OnError(context.Context, string, kafka.Message, []byte, error) { h.errs++ }

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestHandleRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	hook := &countingHook{}
	c.WithConsumerHook(hook)
	h := &flakyHandler{failures: 2}

	if err := c.handle(h, kafka.Message{Topic: "logins"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if h.calls != 3 {
		t.Fatalf("calls = %d, want 3", h.calls)
	}
	if hook.errs != 2 {
		t.Fatalf("hook errors = %d, want 2", hook.errs)
	}
}

func TestHandleGivesUp(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &flakyHandler{failures: 10}

	if err := c.handle(h, kafka.Message{Topic: "logins"}); err == nil {
		t.Fatalf("expected error")
	}
	if h.calls != 2 {
		t.Fatalf("calls = %d, want 2", h.calls)
	}
}

func TestHandleRecoversPanic(t *testing.T) {
	c := newTestConsumer(t, 0)
	h := &flakyHandler{panics: true}
	if err := c.handle(h, kafka.Message{Topic: "logins"}); err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 100*time.Millisecond, attempt)
		if d <= 0 || d > 100*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}
