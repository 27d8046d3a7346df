package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/pool/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestClampRoundsIntegers(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{5, 0.5, 2.6})
	if got[0] != 2.0 {
		t.Errorf("wave_speed = %v, want upper bound 2", got[0])
	}
	if got[1] != 0.95 {
		t.Errorf("damping = %v, want lower bound 0.95", got[1])
	}
	if got[2] != 3 {
		t.Errorf("steps_per_frame = %v, want 3", got[2])
	}
}

func TestApplyAndExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{1.2, 0.99, 2})
	got := pv.ExtractFromConfig(cfg)
	want := []float64{1.2, 0.99, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func testTarget() Target {
	return Target{
		Frames:         60,
		DecayFrame:     50,
		DecayRatio:     0.2,
		SampleDistance: 0.4,
		ArrivalFrame:   15,
		ArrivalLevel:   0.02,
	}
}

func TestStrongerDampingDecaysFaster(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), testTarget(), []int64{1}, 32, 0.05, 0.05)

	light, err := fe.run(1, 0.999, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	heavy, err := fe.run(1, 0.95, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if light.Unstable || heavy.Unstable {
		t.Fatalf("unexpected instability: %+v %+v", light, heavy)
	}
	if heavy.EnergyRatio >= light.EnergyRatio {
		t.Errorf("damping 0.95 ratio %v should be below damping 0.999 ratio %v", heavy.EnergyRatio, light.EnergyRatio)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), testTarget(), []int64{1, 2}, 32, 0.05, 0.05)
	x := []float64{1.5, 0.99, 1}
	a := fe.Evaluate(x)
	b := fe.Evaluate(x)
	if a != b {
		t.Errorf("fitness differs across identical evaluations: %v vs %v", a, b)
	}
	if math.IsNaN(a) || a < 0 {
		t.Errorf("fitness = %v, want finite non-negative", a)
	}
}

func TestScorePenalisesInstability(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), testTarget(), nil, 32, 0.05, 0.05)
	if got := fe.score(Response{Unstable: true}); got != unstablePenalty {
		t.Errorf("score = %v, want %v", got, unstablePenalty)
	}
	perfect := Response{EnergyRatio: 0.2, Arrival: 15}
	if got := fe.score(perfect); math.Abs(got) > 1e-12 {
		t.Errorf("score on target = %v, want 0", got)
	}
}
