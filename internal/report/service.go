package report

import (
	"log"
	"sync"
	"time"

	"github.com/ignite/delivery-diagnostics/internal/config"
)

// Generate runs the whole load -> normalize -> classify pipeline once.
// It is an explicit pure function over the input files: no hidden cached
// state, no partial report on failure. A missing file or missing column
// aborts with the corresponding typed error.
func Generate(inputs config.InputsConfig) (*Report, error) {
	start := time.Now()

	universe, err := LoadUniverse(inputs.Universe.Path, inputs.Universe.Column)
	if err != nil {
		return nil, err
	}

	categories := make([]*OutcomeSet, 0, len(inputs.Outcomes))
	for _, o := range inputs.Outcomes {
		set, err := LoadOutcomeSet(o.Name, o.Path, o.Column)
		if err != nil {
			return nil, err
		}
		categories = append(categories, set)
	}

	r := Classify(universe, categories, inputs.FallbackStatus)
	log.Printf("[report] generated report %s: %d unique contacts in %s",
		r.ID, r.TotalContacts, time.Since(start).Round(time.Millisecond))
	return r, nil
}

// Service owns the cached report for a running server. Caching lives here,
// with the caller, not inside the pipeline: Generate stays pure and Service
// decides when to recompute. The first Current call computes the report;
// concurrent callers during a load wait for the single in-flight computation
// rather than each re-reading the input files.
type Service struct {
	inputs config.InputsConfig

	mu      sync.Mutex
	loaded  bool
	report  *Report
	loadErr error
	loading *sync.WaitGroup
}

// NewService creates a report service over the configured inputs. Nothing is
// read until the first Current or Refresh call.
func NewService(inputs config.InputsConfig) *Service {
	return &Service{inputs: inputs}
}

// Current returns the cached report, computing it on first access. A failed
// load is cached too: every caller sees the same fatal condition until
// Refresh succeeds.
func (s *Service) Current() (*Report, error) {
	s.mu.Lock()
	if s.loaded {
		r, err := s.report, s.loadErr
		s.mu.Unlock()
		return r, err
	}
	if s.loading != nil {
		// Another goroutine is computing; wait for it.
		wg := s.loading
		s.mu.Unlock()
		wg.Wait()
		return s.Current()
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	s.loading = wg
	s.mu.Unlock()

	r, err := Generate(s.inputs)

	s.mu.Lock()
	s.report, s.loadErr = r, err
	s.loaded = true
	s.loading = nil
	s.mu.Unlock()
	wg.Done()
	return r, err
}

// Refresh recomputes the report from the input files. On failure the error
// replaces the cached report, matching the no-partial-report rule.
func (s *Service) Refresh() (*Report, error) {
	r, err := Generate(s.inputs)

	s.mu.Lock()
	s.report, s.loadErr = r, err
	s.loaded = true
	s.mu.Unlock()
	return r, err
}
