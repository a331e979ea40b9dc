// Ping a courtside server to measure how far behind a venue display runs.
//
// Measures cold and warm HTTP round trips against /health and,
// optionally, WebSocket ping/pong latency on the fanout endpoint.
//
// Usage:
//
//	go run ./cmd/ping                          # default: 20 requests against DISPLAY_ADDR
//	go run ./cmd/ping -addr arena.local:8780   # another server
//	go run ./cmd/ping -n 50                    # 50 requests per endpoint
//	go run ./cmd/ping -ws                      # also time fanout ping/pong
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/courtside/internal/config"
)

const (
	healthPath  = "/health"
	httpTimeout = 10 * time.Second
	pongTimeout = 5 * time.Second
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.DisplayAddr, "Server host:port")
	n := flag.Int("n", 20, "Number of requests per endpoint")
	ws := flag.Bool("ws", false, "Also measure fanout WebSocket ping/pong latency")
	flag.Parse()

	base := "http://" + strings.TrimPrefix(*addr, "http://")
	fmt.Printf("\n%s\n", strings.Repeat("=", 55))
	fmt.Printf("  COURTSIDE  %s\n", base)
	fmt.Printf("%s\n", strings.Repeat("=", 55))

	fmt.Println("\n  Cold-start request (DNS + TCP + HTTP):")
	if ms, code, err := measureHTTP(base+healthPath, nil); err != nil {
		fmt.Printf("    FAILED: %v\n", err)
	} else {
		fmt.Printf("    %.1f ms  (HTTP %d)\n", ms, code)
	}

	fmt.Printf("\n  Warm HTTP latency (%d requests, keep-alive):\n", *n)
	client := &http.Client{Timeout: httpTimeout}
	if _, _, err := measureHTTP(base+healthPath, client); err != nil {
		fmt.Printf("  [!] Warm-up request failed: %v\n", err)
	} else {
		latencies := make([]float64, 0, *n)
		pad := len(fmt.Sprintf("%d", *n))
		for i := 1; i <= *n; i++ {
			ms, code, err := measureHTTP(base+healthPath, client)
			if err != nil {
				fmt.Printf("  [%*d/%d]  FAILED: %v\n", pad, i, *n, err)
				continue
			}
			latencies = append(latencies, ms)
			fmt.Printf("  [%*d/%d]  %7.1f ms  (HTTP %d)\n", pad, i, *n, ms, code)
		}
		printStats(latencies, "HTTP")
	}

	if *ws {
		wsURL := "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
		fmt.Printf("\n  WebSocket ping/pong latency (%d pings):\n", *n)
		wsLatencies, err := measureWSLatency(wsURL, *n)
		if err != nil {
			fmt.Printf("  [!] %v\n", err)
		}
		pad := len(fmt.Sprintf("%d", *n))
		for i, ms := range wsLatencies {
			fmt.Printf("  [%*d/%d]  %7.1f ms  (WS ping/pong)\n", pad, i+1, *n, ms)
		}
		printStats(wsLatencies, "WebSocket")
	}
	fmt.Println()
}

func measureHTTP(url string, client *http.Client) (ms float64, statusCode int, err error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	c := client
	if c == nil {
		c = &http.Client{Timeout: httpTimeout}
	}
	start := time.Now()
	resp, err := c.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	return float64(elapsed.Microseconds()) / 1000, resp.StatusCode, nil
}

// measureWSLatency returns whatever samples it collected before an error.
func measureWSLatency(wsURL string, n int) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	pongCh := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	})

	// Control frames are only handled while reading; scoreboard frames are discarded.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	latencies := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pongTimeout)); err != nil {
			return latencies, fmt.Errorf("ws ping failed: %w", err)
		}
		select {
		case <-pongCh:
			latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
		case <-time.After(pongTimeout):
			return latencies, fmt.Errorf("ws pong timeout")
		}
	}
	return latencies, nil
}

type stats struct {
	Min, Max, Mean, Median, Stdev, P95, P99 float64
}

func summarize(latencies []float64) (stats, bool) {
	if len(latencies) < 2 {
		return stats{}, false
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range latencies {
		mean += v
	}
	mean /= float64(len(latencies))

	variance := 0.0
	for _, v := range latencies {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(latencies) - 1)

	return stats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: sorted[len(sorted)/2],
		Stdev:  math.Sqrt(variance),
		P95:    sorted[percentileIndex(len(sorted), 0.95)],
		P99:    sorted[percentileIndex(len(sorted), 0.99)],
	}, true
}

func percentileIndex(n int, p float64) int {
	i := int(float64(n) * p)
	if i >= n {
		i = n - 1
	}
	return i
}

func printStats(latencies []float64, label string) {
	s, ok := summarize(latencies)
	if !ok {
		fmt.Printf("\n  Not enough %s samples for statistics.\n", label)
		return
	}
	fmt.Printf("\n  --- %s Stats (%d requests) ---\n", label, len(latencies))
	fmt.Printf("  Min:    %7.1f ms\n", s.Min)
	fmt.Printf("  Max:    %7.1f ms\n", s.Max)
	fmt.Printf("  Mean:   %7.1f ms\n", s.Mean)
	fmt.Printf("  Median: %7.1f ms\n", s.Median)
	fmt.Printf("  Stdev:  %7.1f ms\n", s.Stdev)
	fmt.Printf("  p95:    %7.1f ms\n", s.P95)
	fmt.Printf("  p99:    %7.1f ms\n", s.P99)
}
