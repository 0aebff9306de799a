package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-chaososc/analysis"
	"github.com/cwbudde/algo-chaososc/internal/fitcommon"
	"github.com/cwbudde/algo-chaososc/preset"
	"github.com/cwbudde/mayfly"
)

type optimizationConfig struct {
	reference          []float64
	base               *preset.Preset
	defs               []knobDef
	initCandidate      candidate
	sampleRate         int
	frames             int
	seed               int64
	timeBudget         float64
	maxEvals           int
	reportEvery        int
	checkpointEvery    int
	mayflyVariant      string
	mayflyPop          int
	mayflyRoundEvals   int
	workers            int
	outputPreset       string
	reportPath         string
	referencePath      string
	presetPath         string
	writeBestCandidate string
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
	checkpoints int
}

// Penalties returned to mayfly for positions that were never scored.
const (
	penaltySkipped = 1.0
	penaltyFailed  = 0.8
)

var mayflyVariants = map[string]func() *mayfly.Config{
	"ma":      mayfly.NewDefaultConfig,
	"desma":   mayfly.NewDESMAConfig,
	"olce":    mayfly.NewOLCEConfig,
	"eobbma":  mayfly.NewEOBBMAConfig,
	"gsasma":  mayfly.NewGSASMAConfig,
	"mpma":    mayfly.NewMPMAConfig,
	"aoblmoa": mayfly.NewAOBLMOAConfig,
}

// fitRun holds the state shared by all concurrent mayfly rounds.
type fitRun struct {
	cfg   *optimizationConfig
	start time.Time

	evals    atomic.Int64
	rounds   atomic.Int64
	improves atomic.Int64

	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
	checkpoints int

	// persistMu serializes file output; persisted is the last improvement written.
	persistMu sync.Mutex
	persisted int64
}

// renderCandidate renders the candidate's knobs through the base preset's
// gain and room settings.
func renderCandidate(cfg *optimizationConfig, c candidate) ([]float32, []float32, error) {
	p := applyCandidate(cfg.base, cfg.defs, c)
	return fitcommon.RenderStereo(p.Knobs, fitcommon.RenderOptions{
		SampleRate: cfg.sampleRate,
		Frames:     cfg.frames,
		GainDB:     p.OutputGainDB,
		IRWavPath:  p.IRWavPath,
		IRWet:      p.IRWet,
	})
}

func (r *fitRun) evaluate(c candidate) (analysis.Metrics, error) {
	left, right, err := renderCandidate(r.cfg, c)
	if err != nil {
		return analysis.Metrics{}, err
	}
	return analysis.Compare(r.cfg.reference, fitcommon.MonoMix(left, right), r.cfg.sampleRate), nil
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.timeBudget*float64(time.Second)))
	defer cancel()

	r := &fitRun{cfg: cfg, start: time.Now(), best: cloneCandidate(cfg.initCandidate)}
	m, err := r.evaluate(r.best)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	r.bestMetrics = m
	r.evals.Store(1)
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", m.Score, m.Similarity*100.0)

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var wg sync.WaitGroup
	for range max(workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r.runRound(ctx) {
			}
		}()
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return &optimizationResult{
		best:        cloneCandidate(r.best),
		bestMetrics: r.bestMetrics,
		evals:       int(r.evals.Load()),
		elapsed:     time.Since(r.start).Seconds(),
		checkpoints: r.checkpoints,
	}, nil
}

// runRound runs one seeded mayfly round sized to the remaining budget and
// reports whether another round may start.
func (r *fitRun) runRound(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	remaining := r.cfg.maxEvals - int(r.evals.Load())
	if remaining <= 0 {
		return false
	}
	round := r.rounds.Add(1)
	iters := max(1, min(r.cfg.mayflyRoundEvals, remaining)/(2*r.cfg.mayflyPop))

	mc, err := newMayflyConfig(r.cfg.mayflyVariant, r.cfg.mayflyPop, len(r.cfg.defs), iters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
		return false
	}
	mc.Rand = rand.New(rand.NewSource(r.cfg.seed + round*7919))
	mc.ObjectiveFunc = func(pos []float64) float64 {
		return r.objective(ctx, round, pos)
	}
	if _, err := runMayfly(mc); err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
	}
	return true
}

func (r *fitRun) objective(ctx context.Context, round int64, pos []float64) float64 {
	if ctx.Err() != nil {
		return r.bestScore() + penaltySkipped
	}
	evalNum, ok := reserveEval(&r.evals, r.cfg.maxEvals)
	if !ok {
		return r.bestScore() + penaltySkipped
	}

	cand := fromNormalized(pos, r.cfg.defs)
	m, err := r.evaluate(cand)
	if err != nil {
		return r.bestScore() + penaltyFailed
	}

	r.mu.Lock()
	improved := m.Score < r.bestMetrics.Score
	if improved {
		r.best = cloneCandidate(cand)
		r.bestMetrics = m
	}
	best, bestM := cloneCandidate(r.best), r.bestMetrics
	r.mu.Unlock()

	if improved {
		n := r.improves.Add(1)
		fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%%\n", n, evalNum, bestM.Score, bestM.Similarity*100.0)
		r.persist(n, best, bestM)
	}
	if r.cfg.reportEvery > 0 && evalNum%int64(r.cfg.reportEvery) == 0 {
		fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evalNum, time.Since(r.start).Seconds(), bestM.Score)
	}
	return m.Score
}

// persist writes the candidate WAV and, every checkpointEvery improvements,
// the preset and report. Stale improvements from slower workers are dropped.
func (r *fitRun) persist(improveNum int64, best candidate, bestM analysis.Metrics) {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()
	if improveNum <= r.persisted {
		return
	}
	r.persisted = improveNum

	if r.cfg.writeBestCandidate != "" {
		if err := writeBestCandidateSnapshot(r.cfg, best); err != nil {
			fmt.Fprintf(os.Stderr, "failed to update best candidate wav: %v\n", err)
		}
	}
	if r.cfg.checkpointEvery <= 0 || improveNum%int64(r.cfg.checkpointEvery) != 0 {
		return
	}

	r.mu.Lock()
	next := r.checkpoints + 1
	r.mu.Unlock()
	if err := writeOutputs(r.cfg, time.Since(r.start).Seconds(), int(r.evals.Load()), best, bestM, next); err != nil {
		fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
		return
	}
	r.mu.Lock()
	r.checkpoints = max(r.checkpoints, next)
	r.mu.Unlock()
}

func (r *fitRun) bestScore() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bestMetrics.Score
}

// reserveEval claims the next evaluation number, failing once maxEvals is used up.
func reserveEval(evals *atomic.Int64, maxEvals int) (int64, bool) {
	for {
		cur := evals.Load()
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if evals.CompareAndSwap(cur, cur+1) {
			return cur + 1, true
		}
	}
}

func mayflyVariantNames() []string {
	names := make([]string, 0, len(mayflyVariants))
	for name := range mayflyVariants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	ctor, ok := mayflyVariants[variant]
	if !ok {
		return nil, fmt.Errorf("unsupported variant %q (want one of %v)", variant, mayflyVariantNames())
	}
	cfg := ctor()
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// NC/2 parent pairs are drawn from both the male and female populations.
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mayfly panic: %v", rec)
		}
	}()
	return mayfly.Optimize(cfg)
}
