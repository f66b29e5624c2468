package memory

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	h := domain.NewHandle("m1", "127.0.0.1:1")

	if err := r.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s, err := r.Lookup("m1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := s.SendText("hi"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	frames := h.Outbox().Drain(nil)
	if len(frames) != 1 || string(frames[0].Payload) != "hi" {
		t.Fatalf("frames = %+v", frames)
	}

	if _, err := r.Lookup("m2"); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Lookup(m2) error = %v, want ErrNotConnected", err)
	}
	if !r.IsConnected("m1") || r.IsConnected("m2") {
		t.Error("IsConnected mismatch")
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	first := domain.NewHandle("m1", "")
	second := domain.NewHandle("m1", "")

	if err := r.Register(first); err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if err := r.Register(second); !errors.Is(err, domain.ErrAlreadyConnected) {
		t.Fatalf("Register second error = %v, want ErrAlreadyConnected", err)
	}

	// The original connection keeps the slot.
	s, err := r.Lookup("m1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if s.InstanceID() != first.InstanceID {
		t.Error("duplicate registration replaced the original handle")
	}
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Register(nil) error = %v", err)
	}
}

func TestRegistry_ConcurrentRegisterSingleWinner(t *testing.T) {
	r := NewRegistry()
	const contenders = 64

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := r.Register(domain.NewHandle("shared", ""))
			switch {
			case err == nil:
				winners.Add(1)
			case !errors.Is(err, domain.ErrAlreadyConnected):
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("winners = %d, want 1", got)
	}
	if n, _ := r.Count(); n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(domain.NewHandle("m1", ""))

	for i := 0; i < 3; i++ {
		if err := r.Unregister("m1"); err != nil {
			t.Fatalf("Unregister #%d: %v", i, err)
		}
	}
	if err := r.Unregister("never"); err != nil {
		t.Fatalf("Unregister absent: %v", err)
	}
	if r.IsConnected("m1") {
		t.Error("m1 still registered")
	}

	// The identifier can be claimed again.
	if err := r.Register(domain.NewHandle("m1", "")); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
}

func TestRegistry_RemoveIgnoresStaleHandle(t *testing.T) {
	r := NewRegistry()
	old := domain.NewHandle("m1", "")
	_ = r.Register(old)

	if !r.Remove(old) {
		t.Fatal("Remove(old) = false, want true")
	}

	fresh := domain.NewHandle("m1", "")
	if err := r.Register(fresh); err != nil {
		t.Fatalf("Register fresh: %v", err)
	}

	// A late teardown of the old connection must not evict the new one.
	if r.Remove(old) {
		t.Fatal("Remove(old) evicted the newer handle")
	}
	s, err := r.Lookup("m1")
	if err != nil || s.InstanceID() != fresh.InstanceID {
		t.Fatalf("Lookup after stale remove = %v, %v", s.InstanceID(), err)
	}
	if r.Remove(nil) {
		t.Error("Remove(nil) = true")
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		_ = r.Register(domain.NewHandle(id, "10.0.0.1:"+id))
	}

	infos, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("len = %d, want 3", len(infos))
	}
	for i, want := range []string{"a", "b", "c"} {
		if infos[i].ID != want {
			t.Errorf("infos[%d].ID = %q, want %q", i, infos[i].ID, want)
		}
		if infos[i].InstanceID == "" || infos[i].ConnectedAt.IsZero() {
			t.Errorf("infos[%d] incomplete: %+v", i, infos[i])
		}
	}

	ids, err := r.IDs()
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	h := domain.NewHandle("m1", "")
	_ = r.Register(h)

	r.Close()
	r.Close()
	if !r.Closed() {
		t.Fatal("Closed() = false")
	}

	if err := r.Register(domain.NewHandle("m2", "")); !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Errorf("Register after Close error = %v", err)
	}
	if _, err := r.Lookup("m1"); !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Errorf("Lookup after Close error = %v", err)
	}
	if _, err := r.List(); !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Errorf("List after Close error = %v", err)
	}
	if _, err := r.Count(); !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Errorf("Count after Close error = %v", err)
	}
	if _, err := r.IDs(); !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Errorf("IDs after Close error = %v", err)
	}
	if r.IsConnected("m1") {
		t.Error("IsConnected after Close = true")
	}

	// Teardown still works.
	if !r.Remove(h) {
		t.Error("Remove after Close = false")
	}
}

func TestRegistry_RecoversPanics(t *testing.T) {
	r := NewRegistry()
	var err error
	func() {
		defer r.recoverFault("test", &err)
		panic("boom")
	}()
	if !errors.Is(err, domain.ErrRegistryUnavailable) {
		t.Fatalf("err = %v, want ErrRegistryUnavailable", err)
	}

	// The registry stays usable afterwards.
	if err := r.Register(domain.NewHandle("m1", "")); err != nil {
		t.Fatalf("Register after recovered panic: %v", err)
	}
}

func TestRegistry_ConcurrentMixedOps(t *testing.T) {
	r := NewRegistry(WithShards(4))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := strconv.Itoa(i % 10)
				h := domain.NewHandle(id, "")
				if r.Register(h) == nil {
					if s, err := r.Lookup(id); err == nil {
						_ = s.SendText(strconv.Itoa(g))
					}
					r.Remove(h)
				}
				_, _ = r.List()
			}
		}(g)
	}
	wg.Wait()

	if n, _ := r.Count(); n != 0 {
		t.Errorf("Count() = %d after all removed, want 0", n)
	}
}
