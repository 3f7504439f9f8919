package loadtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/executor"
)

func TestValidateRejectsOutOfRangeConcurrencyAndDuration(t *testing.T) {
	cases := []collection.LoadTestConfig{
		{Concurrency: 0, Duration: time.Second},
		{Concurrency: 1001, Duration: time.Second},
		{Concurrency: 1, Duration: 0},
		{Concurrency: 1, Duration: 3601 * time.Second},
	}
	for _, cfg := range cases {
		if err := Validate(cfg); err == nil {
			t.Errorf("expected error for config %+v", cfg)
		}
	}
}

func TestValidateRejectsOutOfRangeRateLimit(t *testing.T) {
	zero := 0
	tooHigh := 10001
	cases := []collection.LoadTestConfig{
		{Concurrency: 1, Duration: time.Second, RateLimit: &zero},
		{Concurrency: 1, Duration: time.Second, RateLimit: &tooHigh},
	}
	for _, cfg := range cases {
		if err := Validate(cfg); err == nil {
			t.Errorf("expected error for config %+v", cfg)
		}
	}
}

func TestValidateRejectsRampUpNotLessThanDuration(t *testing.T) {
	rampUp := 10 * time.Second
	cfg := collection.LoadTestConfig{Concurrency: 1, Duration: 5 * time.Second, RampUp: &rampUp}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for ramp_up >= duration")
	}
}

func TestValidateAcceptsInRangeConfig(t *testing.T) {
	cfg := collection.LoadTestConfig{Concurrency: 4, Duration: 10 * time.Second}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEngineCancellationStopsWithinOneIteration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("t", collection.MethodGet, srv.URL+"/x")
	cfg := collection.LoadTestConfig{Concurrency: 4, Duration: 10 * time.Second}

	e, err := New(cfg, ep, collection.RequestInputs{}, executor.NewClient(), time.Millisecond, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.Start(ctx)
	time.Sleep(200 * time.Millisecond)

	beforeStop := e.Aggregator().Snapshot().Total

	e.Stop()
	// Workers exit within one iteration, but the RPS and time-series
	// samplers only see the cleared flag on their next tick, so Stopped is
	// reached once the slower (time-series) sampler has ticked.
	deadline := time.Now().Add(timeSeriesSampleInterval + time.Second)
	for e.State() != Stopped && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if e.State() != Stopped {
		t.Fatalf("expected Stopped, got %v", e.State())
	}

	afterStop := e.Aggregator().Snapshot().Total
	time.Sleep(200 * time.Millisecond)
	final := e.Aggregator().Snapshot().Total

	if final != afterStop {
		t.Fatalf("expected no new samples after stop settled: after=%d final=%d", afterStop, final)
	}
	if beforeStop == 0 {
		t.Fatal("expected at least one recorded sample before stop")
	}
}

func TestEngineInvariantsHoldDuringRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("t", collection.MethodGet, srv.URL+"/x")
	cfg := collection.LoadTestConfig{Concurrency: 2, Duration: time.Second}

	e, err := New(cfg, ep, collection.RequestInputs{}, executor.NewClient(), time.Millisecond, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	e.Start(ctx)
	e.Wait()

	snap := e.Aggregator().Snapshot()
	if snap.Successful+snap.Failed != snap.Total {
		t.Fatalf("successful+failed != total: %+v", snap)
	}
	if int64(len(snap.Latencies)) != snap.Total {
		t.Fatalf("len(latencies) != total: %+v", snap)
	}
	if snap.Total == 0 {
		t.Fatal("expected at least one request over a 1s run")
	}
}

func TestEngineRecordsServerErrorStatusAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ep := collection.NewEndpoint("t", collection.MethodGet, srv.URL+"/x")
	cfg := collection.LoadTestConfig{Concurrency: 2, Duration: 500 * time.Millisecond}

	e, err := New(cfg, ep, collection.RequestInputs{}, executor.NewClient(), time.Millisecond, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e.Start(context.Background())
	e.Wait()

	snap := e.Aggregator().Snapshot()
	if snap.Total == 0 {
		t.Fatal("expected at least one request")
	}
	if snap.Successful != 0 {
		t.Fatalf("expected no successes against a 500 endpoint, got %d", snap.Successful)
	}
	if snap.Failed != snap.Total {
		t.Fatalf("expected every request recorded as failed, got failed=%d total=%d", snap.Failed, snap.Total)
	}
	if snap.ErrorCounts["HTTP 500"] == 0 {
		t.Fatalf("expected HTTP 500 error histogram entry, got %+v", snap.ErrorCounts)
	}
}
