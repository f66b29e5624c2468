package benchmark

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
)

func BenchmarkRegistryRegister(b *testing.B) {
	runWithConnectionCounts(b, SmallConnectionCounts, func(b *testing.B, preload int) {
		reg := memory.NewRegistry(memory.WithLogger(discardLogger))
		prefillRegistry(b, reg, preload)

		handles := make([]*domain.Handle, b.N)
		for i := range handles {
			handles[i] = domain.NewHandle(fmt.Sprintf("bench-%d", i), "10.0.0.2:50000")
		}

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if err := reg.Register(handles[i]); err != nil {
				b.Fatalf("Register: %v", err)
			}
		}
		b.StopTimer()
		reportMemory(b, "mem")
	})
}

func BenchmarkRegistryLookup(b *testing.B) {
	runWithConnectionCounts(b, SmallConnectionCounts, func(b *testing.B, count int) {
		reg := memory.NewRegistry(memory.WithLogger(discardLogger))
		handles := prefillRegistry(b, reg, count)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := reg.Lookup(handles[i%count].ID); err != nil {
				b.Fatalf("Lookup: %v", err)
			}
		}
	})
}

func BenchmarkRegistryLookupMiss(b *testing.B) {
	reg := memory.NewRegistry(memory.WithLogger(discardLogger))
	prefillRegistry(b, reg, 10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := reg.Lookup("absent"); err == nil {
			b.Fatal("Lookup of absent id succeeded")
		}
	}
}

// BenchmarkRegistryChurn measures connect/disconnect cycles racing with
// lookups, the pattern seen when clients reconnect under load.
func BenchmarkRegistryChurn(b *testing.B) {
	reg := memory.NewRegistry(memory.WithLogger(discardLogger))
	prefillRegistry(b, reg, 10000)

	var seq atomic.Int64
	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			n := seq.Add(1)
			h := domain.NewHandle(fmt.Sprintf("churn-%d", n), "10.0.0.3:50000")
			if err := reg.Register(h); err != nil {
				b.Errorf("Register: %v", err)
				return
			}
			_, _ = reg.Lookup(destinationID(int(n % 10000)))
			reg.Remove(h)
		}
	})
}

func BenchmarkRegistryList(b *testing.B) {
	runWithConnectionCounts(b, []int{1000, 10000}, func(b *testing.B, count int) {
		reg := memory.NewRegistry(memory.WithLogger(discardLogger))
		prefillRegistry(b, reg, count)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			ids, err := reg.IDs()
			if err != nil || len(ids) != count {
				b.Fatalf("IDs() = %d ids, %v", len(ids), err)
			}
		}
	})
}
