package main

import (
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/pool/systems"
)

// Target describes the surface response being fitted.
type Target struct {
	Frames         int     // frames simulated per run
	DecayFrame     int     // frame at which the energy ratio is measured
	DecayRatio     float64 // wanted energy(DecayFrame) / energy(0)
	SampleDistance float32 // pool units between drop and sample point
	ArrivalFrame   int     // wanted frame of first wavefront arrival at the sample point
	ArrivalLevel   float32 // |h| at the sample point, as a fraction of drop strength, that counts as arrival
}

// DefaultTarget is a ring-down of about five seconds at 60 fps with a
// wavefront crossing a fifth of the pool in roughly half a second.
func DefaultTarget() Target {
	return Target{
		Frames:         400,
		DecayFrame:     300,
		DecayRatio:     0.05,
		SampleDistance: 0.4,
		ArrivalFrame:   30,
		ArrivalLevel:   0.02,
	}
}

// Response is what one run measured.
type Response struct {
	EnergyRatio float64 // energy(DecayFrame) / energy(0)
	Arrival     int     // first frame the sample point crossed ArrivalLevel, Frames if never
	Unstable    bool    // heights went non-finite or grew past the drop strength tenfold
}

// FitnessEvaluator runs isolated height fields and scores them against a Target.
type FitnessEvaluator struct {
	params   *ParamVector
	target   Target
	seeds    []int64
	gridSize int
	radius   float32
	strength float32
	workers  int

	mu           sync.Mutex
	lastResponse Response
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, target Target, seeds []int64, gridSize int, radius, strength float32) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		target:   target,
		seeds:    seeds,
		gridSize: gridSize,
		radius:   radius,
		strength: strength,
		workers:  1,
	}
}

// LastResponse returns the mean response from the most recent evaluation.
func (fe *FitnessEvaluator) LastResponse() Response {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResponse
}

// unstablePenalty dominates any finite score.
const unstablePenalty = 1e6

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel; each owns its height field.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	v := fe.params.Clamp(x)
	speed, damping, steps := float32(v[0]), float32(v[1]), int(v[2])

	results := make([]Response, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.run(speed, damping, steps, seed)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return unstablePenalty
	}

	scores := make([]float64, len(results))
	ratios := make([]float64, len(results))
	arrivals := make([]float64, len(results))
	unstable := false
	for i, r := range results {
		scores[i] = fe.score(r)
		ratios[i] = r.EnergyRatio
		arrivals[i] = float64(r.Arrival)
		unstable = unstable || r.Unstable
	}

	fe.mu.Lock()
	fe.lastResponse = Response{
		EnergyRatio: stat.Mean(ratios, nil),
		Arrival:     int(math.Round(stat.Mean(arrivals, nil))),
		Unstable:    unstable,
	}
	fe.mu.Unlock()

	return stat.Mean(scores, nil)
}

// score is the squared log error of the decay plus the squared relative
// error of the arrival frame.
func (fe *FitnessEvaluator) score(r Response) float64 {
	if r.Unstable {
		return unstablePenalty
	}
	ratio := math.Max(r.EnergyRatio, 1e-12)
	decayErr := math.Log(ratio / fe.target.DecayRatio)
	arrivalErr := float64(r.Arrival-fe.target.ArrivalFrame) / float64(fe.target.ArrivalFrame)
	return decayErr*decayErr + arrivalErr*arrivalErr
}

// run drops once at a seeded position and records the ring-down.
func (fe *FitnessEvaluator) run(speed, damping float32, steps int, seed int64) (Response, error) {
	rng := rand.New(rand.NewSource(seed))
	hf := systems.NewHeightField(fe.gridSize, systems.NewCPUIntegrator(fe.workers))
	defer hf.Close()

	// Keep the sample point inside the pool on the side facing the centre.
	x := (rng.Float32() - 0.5) * 0.8
	z := (rng.Float32() - 0.5) * 0.8
	dir := float32(1)
	if x > 0 {
		dir = -1
	}
	px := x + dir*fe.target.SampleDistance
	pi, pj := poolToCell(px, fe.gridSize), poolToCell(z, fe.gridSize)

	hf.AddDisturbance(systems.Disturbance{X: x, Z: z, Radius: fe.radius, Strength: fe.strength})
	e0 := hf.Energy()
	if e0 == 0 {
		return Response{Unstable: true}, nil
	}

	res := Response{Arrival: fe.target.Frames}
	level := fe.target.ArrivalLevel * fe.strength
	limit := 10 * fe.strength
	for frame := 1; frame <= fe.target.Frames; frame++ {
		for s := 0; s < steps; s++ {
			if err := hf.Step(damping, speed); err != nil {
				return res, err
			}
		}
		peak := hf.MaxAbsHeight()
		if math.IsNaN(float64(peak)) || math.IsInf(float64(peak), 0) || peak > limit {
			res.Unstable = true
			return res, nil
		}
		if res.Arrival == fe.target.Frames && abs32(hf.Active().At(pi, pj)) >= level {
			res.Arrival = frame
		}
		if frame == fe.target.DecayFrame {
			res.EnergyRatio = hf.Energy() / e0
		}
	}
	return res, nil
}

// poolToCell maps a pool coordinate in [-1,1] to the nearest cell index.
func poolToCell(p float32, n int) int {
	c := int((p + 1) * 0.5 * float32(n))
	return min(max(c, 0), n-1)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
