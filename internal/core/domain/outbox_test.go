package domain

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestOutbox_FIFO(t *testing.T) {
	o := NewOutbox()
	for i := 0; i < 100; i++ {
		if err := o.Push(TextFrame(strconv.Itoa(i))); err != nil {
			t.Fatalf("Push(%d) error = %v", i, err)
		}
	}
	if got := o.Len(); got != 100 {
		t.Fatalf("Len() = %d, want 100", got)
	}

	frames := o.Drain(nil)
	if len(frames) != 100 {
		t.Fatalf("Drain() returned %d frames, want 100", len(frames))
	}
	for i, f := range frames {
		if string(f.Payload) != strconv.Itoa(i) {
			t.Fatalf("frame %d payload = %q", i, f.Payload)
		}
	}
	if o.Len() != 0 {
		t.Error("outbox should be empty after Drain")
	}
}

func TestOutbox_ReadySignal(t *testing.T) {
	o := NewOutbox()

	select {
	case <-o.Ready():
		t.Fatal("Ready should not fire before a push")
	default:
	}

	_ = o.Push(TextFrame("a"))
	_ = o.Push(TextFrame("b"))

	select {
	case <-o.Ready():
	default:
		t.Fatal("Ready should fire after a push")
	}
	// Two pushes coalesce into one signal.
	select {
	case <-o.Ready():
		t.Fatal("Ready should hold a single pending signal")
	default:
	}
}

func TestOutbox_Close(t *testing.T) {
	o := NewOutbox()
	_ = o.Push(TextFrame("pending"))

	if !o.Close() {
		t.Fatal("first Close() should return true")
	}
	if o.Close() {
		t.Error("second Close() should return false")
	}
	if !o.Closed() {
		t.Error("Closed() = false after Close")
	}

	select {
	case <-o.Done():
	default:
		t.Error("Done should be closed after Close")
	}

	if err := o.Push(TextFrame("late")); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("Push after Close error = %v, want ErrDeliveryFailed", err)
	}
	if got := o.Drain(nil); len(got) != 0 {
		t.Errorf("Drain after Close returned %d frames", len(got))
	}
}

func TestOutbox_ConcurrentPushKeepsPerProducerOrder(t *testing.T) {
	o := NewOutbox()
	const producers, perProducer = 8, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = o.Push(Frame{Kind: FrameBinary, Payload: []byte{byte(p), byte(i >> 8), byte(i)}})
			}
		}(p)
	}
	wg.Wait()

	frames := o.Drain(nil)
	if len(frames) != producers*perProducer {
		t.Fatalf("got %d frames, want %d", len(frames), producers*perProducer)
	}
	next := make([]int, producers)
	for _, f := range frames {
		p := int(f.Payload[0])
		seq := int(f.Payload[1])<<8 | int(f.Payload[2])
		if seq != next[p] {
			t.Fatalf("producer %d: got seq %d, want %d", p, seq, next[p])
		}
		next[p]++
	}
}
