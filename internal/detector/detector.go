// Package detector provides pluggable boolean entry-signal functions keyed by
// strategy type. A detector is a pure function over a bar window: it returns
// one boolean per bar, true where the entry condition fires.
package detector

import (
	"sync"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// Detector computes a boolean entry-signal series for a bar sequence.
type Detector interface {
	// Name returns the strategy type this detector serves.
	Name() string
	// Detect returns one boolean per bar, true on bars where the entry
	// condition fires.
	Detect(bars []types.MarketData, params types.Params) ([]bool, error)
}

// Spec binds a detector to its default parameters and the indicator specs the
// strategy requires. The indicator list is bookkeeping for the orchestrator:
// risk and trailing-stop logic may need indicators the detector itself never
// reads.
type Spec struct {
	Detector      Detector
	DefaultParams types.Params
	Indicators    map[types.IndicatorType]types.Params
}

// Registry maps strategy types to detector specs. It is an explicitly
// constructed, injected object rather than a process-wide singleton so
// simulations stay independently testable.
type Registry struct {
	specs map[string]Spec
	mu    sync.RWMutex
}

// NewRegistry creates a new empty detector registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]Spec),
		mu:    sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry with the reference detectors
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	_ = r.Register(NewBreakout())
	_ = r.Register(NewReversal())
	_ = r.Register(NewPullback())

	return r
}

// Register adds a detector spec under the detector's name.
func (r *Registry) Register(spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := spec.Detector.Name()
	if _, exists := r.specs[name]; exists {
		return errors.Newf(errors.ErrCodeDetectorFailed,
			"Register: detector with name %s already registered", name)
	}

	r.specs[name] = spec

	return nil
}

// Get retrieves a detector spec by strategy type. The second return reports
// whether the strategy type is registered; an unregistered type is not an
// error, so the caller can choose a legacy rule path instead.
func (r *Registry) Get(strategyType string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[strategyType]

	return spec, ok
}

// List returns all registered strategy types.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}

	return names
}

// bodyProportion returns |close-open| / (high-low) with a zero range guarded
// by a small floor so doji bars do not divide by zero.
func bodyProportion(bar types.MarketData) float64 {
	rng := bar.High - bar.Low
	if rng == 0 {
		rng = 1e-4
	}

	body := bar.Close - bar.Open
	if body < 0 {
		body = -body
	}

	return body / rng
}
