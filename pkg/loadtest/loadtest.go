// Package loadtest implements the concurrent worker-pool load-test engine:
// linear ramp-up, a bounded duration, a cancellable running flag, and an
// RPS/time-series sampler pair feeding a shared metrics.Aggregator. An
// earlier version of this engine spawned N goroutines racing a context
// deadline behind a single rate.Limiter with no observable state in
// between; this builds that out into the full
// Idle/Running/Stopping/Stopped state machine the UI drives.
package loadtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/restkit/restkit/pkg/apperr"
	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/executor"
	"github.com/restkit/restkit/pkg/metrics"
)

// State is a load test's lifecycle stage.
type State int

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

const (
	minConcurrency = 1
	maxConcurrency = 1000
	minDuration    = time.Second
	maxDuration    = 3600 * time.Second
	minRateLimit   = 1
	maxRateLimit   = 10000

	// rpsSampleInterval is the RPS sampler's fixed tick cadence: how often
	// CurrentRPS is recomputed. It is not configurable — only the trailing
	// window that recomputation counts over (rpsWindow, from pkg/config's
	// RPSSampleWindow) is.
	rpsSampleInterval = 500 * time.Millisecond

	// timeSeriesSampleInterval is the engine's fallback time-series sampler
	// cadence; restkit exposes it via pkg/config (TimeSeriesSampleInterval)
	// rather than hardcoding it, the same way workerSleep is exposed below.
	timeSeriesSampleInterval = 5 * time.Second

	// defaultRPSWindow is the fallback trailing window UpdateRPS counts
	// samples over when pkg/config doesn't override it.
	defaultRPSWindow = time.Second

	// defaultWorkerSleep caps effective per-worker RPS at ~100 as a CPU guard;
	// restkit exposes it via pkg/config rather than hardcoding it.
	defaultWorkerSleep = 10 * time.Millisecond
)

// Validate rejects a collection.LoadTestConfig outside the accepted bounds,
// returning apperr.LoadTestConfigInvalid.
func Validate(cfg collection.LoadTestConfig) error {
	if cfg.Concurrency < minConcurrency || cfg.Concurrency > maxConcurrency {
		return &apperr.LoadTestConfigInvalid{Msg: "concurrency must be in [1, 1000]"}
	}
	if cfg.Duration < minDuration || cfg.Duration > maxDuration {
		return &apperr.LoadTestConfigInvalid{Msg: "duration must be in [1s, 3600s]"}
	}
	if cfg.RateLimit != nil && (*cfg.RateLimit < minRateLimit || *cfg.RateLimit > maxRateLimit) {
		return &apperr.LoadTestConfigInvalid{Msg: "rate_limit must be in [1, 10000]"}
	}
	if cfg.RampUp != nil && *cfg.RampUp >= cfg.Duration {
		return &apperr.LoadTestConfigInvalid{Msg: "ramp_up must be less than duration"}
	}
	return nil
}

// Engine drives one load test against a fixed Endpoint. It owns its own
// metrics.Aggregator and is discarded (and its metrics with it) once the UI
// no longer needs the result.
type Engine struct {
	cfg         collection.LoadTestConfig
	endpoint    collection.Endpoint
	inputs      collection.RequestInputs
	client      *executor.Client
	workerSleep time.Duration

	rpsWindow          time.Duration
	timeSeriesInterval time.Duration

	aggregator   *metrics.Aggregator
	runningFlag  atomic.Bool
	startInstant atomic.Value // time.Time
	state        atomic.Int32

	wg sync.WaitGroup
}

// New validates cfg and returns an Idle Engine bound to endpoint/inputs. A
// zero workerSleep, rpsWindow, or timeSeriesInterval falls back to the
// package defaults. rpsWindow is the trailing window the RPS sampler
// recomputes CurrentRPS over; it ticks at the fixed rpsSampleInterval cadence
// regardless of rpsWindow's value.
func New(cfg collection.LoadTestConfig, endpoint collection.Endpoint, inputs collection.RequestInputs, client *executor.Client, workerSleep, rpsWindow, timeSeriesInterval time.Duration) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if workerSleep <= 0 {
		workerSleep = defaultWorkerSleep
	}
	if rpsWindow <= 0 {
		rpsWindow = defaultRPSWindow
	}
	if timeSeriesInterval <= 0 {
		timeSeriesInterval = timeSeriesSampleInterval
	}
	e := &Engine{
		cfg:                cfg,
		endpoint:           endpoint,
		inputs:             inputs,
		client:             client,
		workerSleep:        workerSleep,
		rpsWindow:          rpsWindow,
		timeSeriesInterval: timeSeriesInterval,
		aggregator:         metrics.New(),
	}
	e.state.Store(int32(Idle))
	return e, nil
}

// State reports the engine's current lifecycle stage.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Aggregator exposes the shared metrics sink for read-only snapshots.
func (e *Engine) Aggregator() *metrics.Aggregator {
	return e.aggregator
}

// Elapsed returns time since start while running, or 0 if never started.
func (e *Engine) Elapsed() time.Duration {
	v := e.startInstant.Load()
	start, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// Start transitions Idle -> Running and spawns N workers plus the RPS and
// time-series samplers. It returns once every goroutine has been launched;
// it does not wait for them to finish.
func (e *Engine) Start(ctx context.Context) {
	start := time.Now()
	e.startInstant.Store(start)
	e.runningFlag.Store(true)
	e.state.Store(int32(Running))

	n := e.cfg.Concurrency
	var limiter *rate.Limiter
	if e.cfg.RateLimit != nil {
		limiter = rate.NewLimiter(rate.Limit(*e.cfg.RateLimit), *e.cfg.RateLimit)
	}

	for i := 0; i < n; i++ {
		e.wg.Add(1)
		go e.runWorker(ctx, i, n, start, limiter)
	}

	e.wg.Add(1)
	go e.runRPSSampler(ctx, start)

	e.wg.Add(1)
	go e.runTimeSeriesSampler(ctx, start)

	go func() {
		e.wg.Wait()
		e.state.Store(int32(Stopped))
	}()
}

// Stop sets running_flag=false; workers observe it between iterations and
// exit within one iteration.
func (e *Engine) Stop() {
	e.state.Store(int32(Stopping))
	e.runningFlag.Store(false)
}

// Wait blocks until every worker and sampler has joined.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) runWorker(ctx context.Context, workerID, n int, start time.Time, limiter *rate.Limiter) {
	defer e.wg.Done()

	if e.cfg.RampUp != nil {
		delay := time.Duration(int64(*e.cfg.RampUp) * int64(workerID) / int64(n))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}

	for time.Since(start) < e.cfg.Duration && e.runningFlag.Load() {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		reqStart := time.Now()
		resp, err := e.client.Execute(ctx, e.endpoint, e.inputs, 0)
		elapsed := time.Since(reqStart)

		switch {
		case err != nil:
			e.aggregator.RecordFailure(err.Error(), elapsed)
		case resp.Status >= 400:
			e.aggregator.RecordFailure(fmt.Sprintf("HTTP %d", resp.Status), elapsed)
		default:
			e.aggregator.RecordSuccess(elapsed)
		}

		select {
		case <-time.After(e.workerSleep):
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) runRPSSampler(ctx context.Context, start time.Time) {
	defer e.wg.Done()
	ticker := time.NewTicker(rpsSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !e.runningFlag.Load() || time.Since(start) >= e.cfg.Duration {
				return
			}
			e.aggregator.UpdateRPS(e.rpsWindow)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) runTimeSeriesSampler(ctx context.Context, start time.Time) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.timeSeriesInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !e.runningFlag.Load() || time.Since(start) >= e.cfg.Duration {
				return
			}
			e.aggregator.AddTimeSeriesPoint(start)
		case <-ctx.Done():
			return
		}
	}
}
