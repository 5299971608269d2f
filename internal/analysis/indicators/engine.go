// Package indicators provides the technical indicator catalogue and the
// engine that evaluates it over an OHLCV series.
package indicators

import (
	"sort"
	"strings"
	"sync"

	"stock-analyst/internal/analysis"
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// Result holds one evaluated indicator: its latest value, any named
// component values (e.g. MACD line/signal/histogram), and the derived
// signal.
type Result struct {
	Name       string
	Value      float64
	Components map[string]float64
	Signal     analysis.Signal
	Timestamp  int64 // unix seconds of the last bar
}

// computeFunc evaluates one catalogue entry over a series.
type computeFunc func(bars []models.Bar) (Result, error)

// entry is one catalogue indicator: its minimum series length and
// its compute function.
type entry struct {
	minBars int
	compute computeFunc
}

// Engine evaluates the fixed indicator catalogue. Indicators are
// computed independently of each other; unknown names and too-short
// series are rejected before any computation runs.
type Engine struct {
	catalogue map[string]entry
	workers   int
}

// NewEngine creates an engine with the default catalogue.
func NewEngine() *Engine {
	e := &Engine{
		catalogue: make(map[string]entry),
		workers:   4,
	}
	e.registerDefaults()
	return e
}

func (e *Engine) register(name string, minBars int, fn computeFunc) {
	e.catalogue[name] = entry{minBars: minBars, compute: fn}
}

// Names returns the catalogue names, sorted.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.catalogue))
	for name := range e.catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute evaluates a single indicator by canonical name.
func (e *Engine) Compute(name string, bars []models.Bar) (Result, error) {
	key := strings.ToLower(name)
	ent, ok := e.catalogue[key]
	if !ok {
		return Result{}, errors.NewValidationError("indicator", name, "not in catalogue")
	}
	if len(bars) < ent.minBars {
		return Result{}, errors.Wrapf(errors.ErrInsufficientData,
			"%s needs %d bars, have %d", key, ent.minBars, len(bars))
	}
	return ent.compute(bars)
}

// ComputeSelected evaluates the named indicators over the series.
// All names and minimum lengths are validated up front so that an
// invalid request fails before any computation proceeds. Results come
// back in request order.
func (e *Engine) ComputeSelected(names []string, bars []models.Bar) ([]Result, error) {
	if len(names) == 0 {
		return nil, errors.NewValidationError("indicators", names, "at least one indicator required")
	}

	keys := make([]string, len(names))
	for i, name := range names {
		key := strings.ToLower(name)
		ent, ok := e.catalogue[key]
		if !ok {
			return nil, errors.NewValidationError("indicator", name, "not in catalogue")
		}
		if len(bars) < ent.minBars {
			return nil, errors.Wrapf(errors.ErrInsufficientData,
				"%s needs %d bars, have %d", key, ent.minBars, len(bars))
		}
		keys[i] = key
	}

	results := make(map[string]Result, len(keys))
	var firstErr error
	var mu sync.Mutex
	var wg sync.WaitGroup

	work := make(chan string, len(keys))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range work {
				res, err := e.catalogue[key].compute(bars)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					results[key] = res
				}
				mu.Unlock()
			}
		}()
	}

	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			work <- key
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	out := make([]Result, 0, len(keys))
	emitted := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !emitted[key] {
			emitted[key] = true
			out = append(out, results[key])
		}
	}
	return out, nil
}
