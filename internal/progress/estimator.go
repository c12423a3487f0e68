// Package progress tracks elapsed time for an in-flight generation and
// derives a capped completion percentage for display. Cosmetic only; it
// never influences control flow.
package progress

import (
	"sync"
	"time"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// StepLabels are the phase names shown while a generation runs. Indexes
// line up with the thresholds in stepIndex.
var StepLabels = []string{
	"reading code",
	"understanding structure",
	"drafting documentation",
	"polishing output",
}

// percentCap keeps the bar from reaching 100% before the response lands.
const percentCap = 95

const defaultEstimateSeconds = 60

// Estimator tracks elapsed seconds against an estimate. A one-second
// ticker drives it while running; Tick may also be called directly, which
// is how tests advance it deterministically.
type Estimator struct {
	mu        sync.Mutex
	elapsed   int
	estimated int
	running   bool
	stop      chan struct{}
	onTick    func(models.ProgressState)
}

// NewEstimator returns an estimator that calls onTick (may be nil) after
// every increment.
func NewEstimator(onTick func(models.ProgressState)) *Estimator {
	return &Estimator{onTick: onTick}
}

// Start begins ticking against the given estimate. A non-positive estimate
// falls back to a default. Calling Start while running restarts the clock.
func (e *Estimator) Start(estimatedTotalSeconds int) {
	e.mu.Lock()
	if e.running {
		e.stopLocked()
	}
	if estimatedTotalSeconds <= 0 {
		estimatedTotalSeconds = defaultEstimateSeconds
	}
	e.elapsed = 0
	e.estimated = estimatedTotalSeconds
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()

	go e.loop(stop)
}

func (e *Estimator) loop(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances elapsed time by one second and notifies the observer.
// No-op when the estimator is not running.
func (e *Estimator) Tick() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.elapsed++
	state := e.stateLocked()
	onTick := e.onTick
	e.mu.Unlock()

	if onTick != nil {
		onTick(state)
	}
}

// Stop halts the ticker and resets all fields to zero. Safe to call
// repeatedly or before Start was ever called.
func (e *Estimator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Estimator) stopLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.running = false
	e.elapsed = 0
	e.estimated = 0
}

// Running reports whether the estimator is between Start and Stop.
func (e *Estimator) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// State returns the current snapshot.
func (e *Estimator) State() models.ProgressState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Estimator) stateLocked() models.ProgressState {
	percent := 0
	if e.estimated > 0 {
		percent = 100 * e.elapsed / e.estimated
		if percent > percentCap {
			percent = percentCap
		}
	}
	idx := stepIndex(percent)
	return models.ProgressState{
		StepIndex:             idx,
		StepLabel:             StepLabels[idx],
		ElapsedSeconds:        e.elapsed,
		EstimatedTotalSeconds: e.estimated,
		PercentComplete:       percent,
	}
}

// stepIndex maps a percentage to a phase label index.
func stepIndex(percent int) int {
	switch {
	case percent < 25:
		return 0
	case percent < 50:
		return 1
	case percent < 75:
		return 2
	default:
		return 3
	}
}

// EstimateSeconds guesses how long a run of fileCount files will take.
// Tuned against observed service latency rather than anything principled.
func EstimateSeconds(fileCount int) int {
	est := 20 + 3*fileCount
	if est > 600 {
		est = 600
	}
	return est
}
