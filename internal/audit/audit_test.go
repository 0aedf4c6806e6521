package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	events  []Event
}

func (s *blockingSink) Emit(_ context.Context, event Event) {
	<-s.release
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *blockingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherDeliversBufferedEventsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success"})
	}
	d.Close()
	d.Close()

	if got := len(sink.Events()); got != 5 {
		t.Fatalf("expected 5 delivered events, got %d", got)
	}

	d.Emit(context.Background(), Event{EventType: "late"})
	if got := len(sink.Events()); got != 5 {
		t.Fatalf("emit after close must be ignored, got %d events", got)
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "e"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a full buffer")
	}

	close(sink.release)
	d.Close()
	if got := uint64(sink.count()) + d.Dropped(); got != 10 {
		t.Fatalf("delivered+dropped = %d, want 10", got)
	}
}

func TestDispatcherBlockingRespectsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)

	d.Emit(context.Background(), Event{EventType: "a"})
	d.Emit(context.Background(), Event{EventType: "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d.Emit(ctx, Event{EventType: "c"})
	if d.Dropped() == 0 {
		t.Fatal("expected the timed-out emit to count as dropped")
	}

	close(sink.release)
	d.Close()
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{EventType: "signup_success", UserID: "a@b.com", Success: true})
	sink.Emit(context.Background(), Event{EventType: "login_failure", Error: "incorrect_credentials"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.EventType != "signup_success" || first.UserID != "a@b.com" || !first.Success {
		t.Fatalf("unexpected event: %+v", first)
	}

	var nilSink *JSONWriterSink
	nilSink.Emit(context.Background(), Event{})
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	sink.Emit(context.Background(), Event{
		EventType: "twofa_notify_failure",
		UserID:    "a@b.com",
		IP:        "10.0.0.1",
		Error:     "unexpected",
		Metadata:  map[string]string{"stage": "send"},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["level"] != "WARN" || entry["msg"] != "audit" {
		t.Fatalf("unexpected record: %v", entry)
	}
	if entry["event_type"] != "twofa_notify_failure" || entry["meta.stage"] != "send" || entry["ip"] != "10.0.0.1" {
		t.Fatalf("missing attributes: %v", entry)
	}
}
