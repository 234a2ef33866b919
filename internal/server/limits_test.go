package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Electrofried/utf8-mixed-radix-tokenizer/internal/server"
)

// ---------------------------------------------------------------------------
// worker pool / concurrency throttling
// ---------------------------------------------------------------------------

func TestEncode_ConcurrencyThrottling(t *testing.T) {
	const workers = 2
	const totalRequests = 5

	// Codec that counts concurrent executions.
	var (
		mu         sync.Mutex
		peak       int
		current    int32
		releaseAll = make(chan struct{})
	)
	codec := &countingCodec{
		onEnter: func() {
			n := int(atomic.AddInt32(&current, 1))

			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			<-releaseAll
		},
		onExit: func() { atomic.AddInt32(&current, -1) },
		tokens: []int64{72},
	}

	h := server.NewHandler(codec, server.WithWorkers(workers))

	var wg sync.WaitGroup

	codes := make([]int, totalRequests)
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			rec := postJSON(t, h, "/encode", map[string]string{"text": "Hi."})
			codes[idx] = rec.Code
		}(i)
	}

	// Give goroutines time to enter the codec.
	time.Sleep(50 * time.Millisecond)
	close(releaseAll)
	wg.Wait()

	mu.Lock()
	got := peak
	mu.Unlock()

	if got > workers {
		t.Errorf("peak concurrency %d exceeded worker limit %d", got, workers)
	}

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: want 200, got %d", i, code)
		}
	}
}

func TestEncode_WaiterCancelledWhileThrottled(t *testing.T) {
	const workers = 1

	release := make(chan struct{})
	codec := &blockingCodec{release: release}

	h := server.NewHandler(codec, server.WithWorkers(workers))

	// First request occupies the single worker slot.
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		postJSON(t, h, "/encode", map[string]string{"text": "First."})
	}()

	time.Sleep(20 * time.Millisecond)

	// Second request should be blocked waiting for a worker; cancel its context.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/encode", jsonBody(t, map[string]string{"text": "Second."})).WithContext(ctx)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503 when waiter context cancelled, got %d", rec.Code)
	}

	close(release) // unblock the first request
	<-firstDone
}

func TestEncode_WaiterTimesOutWhileThrottled(t *testing.T) {
	const workers = 1

	release := make(chan struct{})
	codec := &blockingCodec{release: release}

	h := server.NewHandler(codec,
		server.WithWorkers(workers),
		server.WithRequestTimeout(30*time.Millisecond),
	)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		postJSON(t, h, "/encode", map[string]string{"text": "First."})
	}()

	time.Sleep(20 * time.Millisecond)

	// Second request waits for a slot until the request timeout elapses.
	rec := postJSON(t, h, "/encode", map[string]string{"text": "Second."})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503 when waiter times out, got %d", rec.Code)
	}

	close(release)
	<-firstDone
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// blockingCodec blocks until release is closed (simulates a slow call).
type blockingCodec struct {
	release chan struct{}
	tokens  []int64
}

func (b *blockingCodec) Encode(_ string) ([]int64, error) {
	<-b.release
	return b.tokens, nil
}

func (b *blockingCodec) Decode(_ []int64) (string, error) {
	<-b.release
	return "", nil
}

// countingCodec calls onEnter/onExit around each codec call.
type countingCodec struct {
	onEnter func()
	onExit  func()
	tokens  []int64
}

func (c *countingCodec) Encode(_ string) ([]int64, error) {
	c.onEnter()
	defer c.onExit()

	return c.tokens, nil
}

func (c *countingCodec) Decode(_ []int64) (string, error) {
	c.onEnter()
	defer c.onExit()

	return "", nil
}
