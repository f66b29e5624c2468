package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
	"github.com/yndnr/pushmesh-go/internal/storage/memory"
)

// ConnectionCounts defines the registry sizes for full benchmark runs.
var ConnectionCounts = []int{5000, 10000, 50000, 100000, 200000}

// SmallConnectionCounts for quick benchmarks.
var SmallConnectionCounts = []int{1000, 5000, 10000}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func destinationID(i int) string {
	return fmt.Sprintf("machine-%d", i)
}

// prefillRegistry registers count handles and returns them in order.
func prefillRegistry(b *testing.B, reg *memory.Registry, count int) []*domain.Handle {
	b.Helper()
	handles := make([]*domain.Handle, count)
	for i := 0; i < count; i++ {
		h := domain.NewHandle(destinationID(i), "10.0.0.1:50000")
		if err := reg.Register(h); err != nil {
			b.Fatalf("Register(%s): %v", h.ID, err)
		}
		handles[i] = h
	}
	return handles
}

// drainAll empties every outbox so queued frames do not skew memory figures.
func drainAll(handles []*domain.Handle) {
	var buf []domain.Frame
	for _, h := range handles {
		buf = h.Outbox().Drain(buf[:0])
	}
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithConnectionCounts runs benchFn once per registry size.
func runWithConnectionCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("connections_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
