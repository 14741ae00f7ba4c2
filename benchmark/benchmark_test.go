package benchmark

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"pi-monitor/internal/indicator"
	"pi-monitor/internal/monitor"
	"pi-monitor/internal/net"
	"pi-monitor/internal/notify"

	"github.com/rs/zerolog"
)

// memStats holds memory statistics
type memStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	Mallocs      uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// getMemStats returns current memory statistics
func getMemStats() memStats {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return memStats{
		HeapAlloc:    stats.HeapAlloc,
		TotalAlloc:   stats.TotalAlloc,
		Mallocs:      stats.Mallocs,
		NumGC:        stats.NumGC,
		PauseTotalNs: stats.PauseTotalNs,
	}
}

// printMemUsage prints memory usage statistics
func printMemStats(before, after memStats) {
	fmt.Printf("Memory Usage:\n")
	fmt.Printf("  Heap Alloc: %v -> %v (%+v)\n",
		byteSize(before.HeapAlloc),
		byteSize(after.HeapAlloc),
		byteSize(after.HeapAlloc-before.HeapAlloc))
	fmt.Printf("  Total Alloc: %v -> %v (%+v)\n",
		byteSize(before.TotalAlloc),
		byteSize(after.TotalAlloc),
		byteSize(after.TotalAlloc-before.TotalAlloc))
	fmt.Printf("  Mallocs: %v -> %v (%+v)\n",
		before.Mallocs,
		after.Mallocs,
		after.Mallocs-before.Mallocs)
	fmt.Printf("  GC Runs: %v -> %v (%+v)\n",
		before.NumGC,
		after.NumGC,
		after.NumGC-before.NumGC)
	fmt.Printf("  GC Pause Total: %v -> %v (%+v)\n",
		time.Duration(before.PauseTotalNs),
		time.Duration(after.PauseTotalNs),
		time.Duration(after.PauseTotalNs-before.PauseTotalNs))
}

// byteSize formats byte size to human-readable format
func byteSize(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// createTestServer creates a test HTTP server that responds with specified status code
func createTestServer(statusCode int, responseDelay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(responseDelay)
		w.WriteHeader(statusCode)
		w.Write([]byte("<h1>Welcome</h1>"))
	}))
}

// createTestEndpoints creates endpoints that all point at server
func createTestEndpoints(count int, server *httptest.Server) []*monitor.EndpointHealth {
	endpoints := make([]*monitor.EndpointHealth, count)
	for i := 0; i < count; i++ {
		endpoints[i] = monitor.NewEndpointHealth(
			fmt.Sprintf("site-%d", i),
			server.URL,
			500*time.Millisecond,
			3,
			"Welcome",
		)
	}
	return endpoints
}

// benchmarkCycle measures full probe cycles over a number of endpoints
func benchmarkCycle(b *testing.B, websiteCount int) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	server := createTestServer(200, 20*time.Millisecond)
	defer server.Close()

	uptimeMonitor, err := monitor.NewMonitor(monitor.Options{
		Endpoints: createTestEndpoints(websiteCount, server),
		Prober:    &net.NetworkConfig{FollowRedirects: true},
		Notify:    &notify.Dispatcher{},
		Indicator: indicator.NewConsole(),
	})
	if err != nil {
		b.Fatalf("Failed to create monitor: %v", err)
	}

	// Record memory before
	beforeStats := getMemStats()
	startTime := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		uptimeMonitor.RunCycle(context.Background())
	}
	b.StopTimer()

	// Record memory after
	afterStats := getMemStats()
	elapsedTime := time.Since(startTime)

	b.Logf("Benchmark for %d websites, %d cycle(s):", websiteCount, b.N)
	b.Logf("Total elapsed time: %v", elapsedTime)
	b.Logf("Average time per cycle: %v", elapsedTime/time.Duration(b.N))

	b.Logf("Memory usage:")
	printMemStats(beforeStats, afterStats)
}

func BenchmarkCycle1Site(b *testing.B) {
	benchmarkCycle(b, 1)
}

func BenchmarkCycle10Sites(b *testing.B) {
	benchmarkCycle(b, 10)
}

func BenchmarkCycle50Sites(b *testing.B) {
	benchmarkCycle(b, 50)
}

func BenchmarkCycle100Sites(b *testing.B) {
	benchmarkCycle(b, 100)
}
