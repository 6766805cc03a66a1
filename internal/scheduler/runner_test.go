package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/probe"
)

// echoChecker returns UP for every URL after an optional per-URL delay.
func echoChecker(delay func(url string) time.Duration) probe.Checker {
	return probe.CheckerFunc(func(ctx context.Context, target string) domain.Outcome {
		start := time.Now()
		if delay != nil {
			time.Sleep(delay(target))
		}
		return domain.FromResponse(target, 200, time.Since(start))
	})
}

func TestRunner_PreservesInputOrder(t *testing.T) {
	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	// later URLs finish first
	delays := make(map[string]time.Duration, len(urls))
	for i, u := range urls {
		delays[u] = time.Duration(len(urls)-i) * 2 * time.Millisecond
	}

	r := NewRunner(echoChecker(func(u string) time.Duration { return delays[u] }), 0)
	out := r.CheckAll(context.Background(), urls)
	if len(out) != len(urls) {
		t.Fatalf("want %d outcomes, got %d", len(urls), len(out))
	}
	for i := range urls {
		if out[i].URL() != urls[i] {
			t.Fatalf("position %d: want %s, got %s", i, urls[i], out[i].URL())
		}
	}
}

func TestRunner_EmptyAndDuplicates(t *testing.T) {
	var calls atomic.Int32
	chk := probe.CheckerFunc(func(ctx context.Context, target string) domain.Outcome {
		calls.Add(1)
		return domain.FromResponse(target, 200, 0)
	})
	r := NewRunner(chk, 0)

	empty := r.CheckAll(context.Background(), nil)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", empty)
	}
	if calls.Load() != 0 {
		t.Fatalf("no probe should run for empty input")
	}

	urls := []string{"https://a", "https://a", "https://b", "https://a"}
	out := r.CheckAll(context.Background(), urls)
	if len(out) != 4 || calls.Load() != 4 {
		t.Fatalf("duplicates must be probed independently: %d outcomes, %d calls", len(out), calls.Load())
	}
	for i := range urls {
		if out[i].URL() != urls[i] {
			t.Fatalf("position %d: want %s, got %s", i, urls[i], out[i].URL())
		}
	}
}

func TestRunner_LaunchesAllBeforeAwaiting(t *testing.T) {
	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	allStarted := make(chan struct{})
	go func() { wg.Wait(); close(allStarted) }()

	chk := probe.CheckerFunc(func(ctx context.Context, target string) domain.Outcome {
		wg.Done()
		select {
		case <-allStarted:
			return domain.FromResponse(target, 200, 0)
		case <-time.After(2 * time.Second):
			return domain.FromError(target, fmt.Errorf("probes were not concurrent"), 0)
		}
	})

	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("u%d", i)
	}
	for _, o := range NewRunner(chk, 0).CheckAll(context.Background(), urls) {
		if !o.Up() {
			msg, _ := o.ErrorMessage()
			t.Fatalf("%s: %s", o.URL(), msg)
		}
	}
}

func TestRunner_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	chk := probe.CheckerFunc(func(ctx context.Context, target string) domain.Outcome {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return domain.FromResponse(target, 200, 0)
	})

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("u%d", i)
	}
	out := NewRunner(chk, 3).CheckAll(context.Background(), urls)
	if len(out) != len(urls) {
		t.Fatalf("want %d outcomes, got %d", len(urls), len(out))
	}
	if peak.Load() > 3 {
		t.Fatalf("concurrency cap exceeded: peak %d", peak.Load())
	}
	for i := range urls {
		if out[i].URL() != urls[i] {
			t.Fatalf("position %d out of order", i)
		}
	}
}

func TestRunner_MixedResultsAgainstServer(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			// answer last so completion order differs from input order
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer s.Close()

	r := NewRunner(probe.NewHTTPChecker(2*time.Second), 0)
	out := r.CheckAll(context.Background(), []string{s.URL + "/ok", s.URL + "/boom"})
	if len(out) != 2 {
		t.Fatalf("want 2 outcomes, got %d", len(out))
	}
	if out[0].Status() != domain.StatusUp {
		t.Fatalf("first should be UP, got %+v", out[0].Record())
	}
	if out[1].Status() != domain.StatusDown {
		t.Fatalf("second should be DOWN, got %+v", out[1].Record())
	}
	if code, _ := out[1].StatusCode(); code != 500 {
		t.Fatalf("want 500, got %d", code)
	}
}

func TestRunner_FailuresAreIndependent(t *testing.T) {
	chk := probe.NewHTTPChecker(500 * time.Millisecond)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer s.Close()

	urls := []string{"not-a-valid-url", s.URL, "http://[::1", s.URL}
	out := NewRunner(chk, 0).CheckAll(context.Background(), urls)
	if out[0].Up() || !out[1].Up() || out[2].Up() || !out[3].Up() {
		t.Fatalf("unexpected statuses: %s %s %s %s", out[0].Status(), out[1].Status(), out[2].Status(), out[3].Status())
	}
}
