package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestSummarize(t *testing.T) {
	if _, ok := summarize([]float64{1}); ok {
		t.Fatal("one sample should not produce stats")
	}

	s, ok := summarize([]float64{4, 1, 3, 2, 5})
	if !ok {
		t.Fatal("expected stats")
	}
	if s.Min != 1 || s.Max != 5 || s.Mean != 3 || s.Median != 3 {
		t.Errorf("stats = %+v", s)
	}
	if math.Abs(s.Stdev-math.Sqrt(2.5)) > 1e-9 {
		t.Errorf("Stdev = %v, want %v", s.Stdev, math.Sqrt(2.5))
	}
	if s.P95 != 5 || s.P99 != 5 {
		t.Errorf("P95/P99 = %v/%v, want 5/5", s.P95, s.P99)
	}
}

func TestPercentileIndex(t *testing.T) {
	tests := []struct {
		n    int
		p    float64
		want int
	}{
		{n: 10, p: 0.95, want: 9},
		{n: 100, p: 0.95, want: 95},
		{n: 100, p: 0.99, want: 99},
		{n: 2, p: 0.99, want: 1},
	}
	for _, tc := range tests {
		if got := percentileIndex(tc.n, tc.p); got != tc.want {
			t.Errorf("percentileIndex(%d, %v) = %d, want %d", tc.n, tc.p, got, tc.want)
		}
	}
}

func TestMeasureHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	ms, code, err := measureHTTP(srv.URL+healthPath, nil)
	if err != nil {
		t.Fatalf("measureHTTP: %v", err)
	}
	if code != http.StatusTeapot {
		t.Errorf("code = %d, want %d", code, http.StatusTeapot)
	}
	if ms < 0 {
		t.Errorf("ms = %v, want >= 0", ms)
	}
}

func TestMeasureWSLatency(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// The default ping handler answers with a pong while reading.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	got, err := measureWSLatency(wsURL, 3)
	if err != nil {
		t.Fatalf("measureWSLatency: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("samples = %d, want 3", len(got))
	}
}
