package value

import (
	"math"
	"testing"

	"github.com/courtline/courtline/internal/model"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name string
		in   model.Instrument
		side model.Side
		want float64
		ok   bool
	}{
		{
			name: "midpoint",
			in:   model.Instrument{YesBid: 60, YesAsk: 64},
			side: model.SideYes,
			want: 0.62,
			ok:   true,
		},
		{
			name: "bid only",
			in:   model.Instrument{YesBid: 55},
			side: model.SideYes,
			want: 0.55,
			ok:   true,
		},
		{
			name: "ask only",
			in:   model.Instrument{NoAsk: 48},
			side: model.SideNo,
			want: 0.48,
			ok:   true,
		},
		{
			name: "last price fallback yes",
			in:   model.Instrument{LastPrice: 70},
			side: model.SideYes,
			want: 0.70,
			ok:   true,
		},
		{
			name: "last price fallback no",
			in:   model.Instrument{LastPrice: 70},
			side: model.SideNo,
			want: 0.30,
			ok:   true,
		},
		{
			name: "unpriceable",
			in:   model.Instrument{},
			side: model.SideYes,
			want: 0,
			ok:   false,
		},
	}
	for _, tt := range tests {
		got, ok := ImpliedProbability(tt.in, tt.side)
		if ok != tt.ok || !almost(got, tt.want) {
			t.Errorf("%s: ImpliedProbability = (%v, %v), want (%v, %v)",
				tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValue(t *testing.T) {
	if got := Value(0.5, 0.5); !almost(got, 0) {
		t.Errorf("Value(0.5, 0.5) = %v, want 0", got)
	}
	if got := Value(0.7, 0.62); !almost(got, 0.08) {
		t.Errorf("Value(0.7, 0.62) = %v, want 0.08", got)
	}
	if got := Value(0.4, 0.55); !almost(got, -0.15) {
		t.Errorf("Value(0.4, 0.55) = %v, want -0.15", got)
	}
}

func TestExpectedValue(t *testing.T) {
	// p = 0.605, implied = 0.5: o = 2, EV = 0.605*2 - 1 = 0.21.
	if got := ExpectedValue(0.605, 0.5); !almost(got, 0.21) {
		t.Errorf("ExpectedValue = %v, want 0.21", got)
	}
	if got := ExpectedValue(0.5, 0); got != 0 {
		t.Errorf("ExpectedValue with zero implied = %v, want 0", got)
	}
	if got := ExpectedValue(0.4, 0.5); !almost(got, -0.2) {
		t.Errorf("ExpectedValue = %v, want -0.2", got)
	}
}

func TestKellyFraction(t *testing.T) {
	// p = 0.9, implied = 0.2 (o = 5): raw Kelly (0.9*5-1)/4 = 0.875,
	// clamped to the 0.25 ceiling.
	if got := KellyFraction(0.9, 0.2, 0.25); !almost(got, 0.25) {
		t.Errorf("KellyFraction = %v, want clamp 0.25", got)
	}

	// Below the ceiling it is the raw fraction.
	// p = 0.6, implied = 0.5 (o = 2): (1.2-1)/1 = 0.2.
	if got := KellyFraction(0.6, 0.5, 0.25); !almost(got, 0.2) {
		t.Errorf("KellyFraction = %v, want 0.2", got)
	}

	// Negative edge never shorts.
	if got := KellyFraction(0.4, 0.5, 0.25); got != 0 {
		t.Errorf("negative edge KellyFraction = %v, want 0", got)
	}

	// Degenerate implied probabilities.
	if got := KellyFraction(0.9, 0, 0.25); got != 0 {
		t.Errorf("implied 0 KellyFraction = %v, want 0", got)
	}
	if got := KellyFraction(0.9, 1, 0.25); got != 0 {
		t.Errorf("implied 1 KellyFraction = %v, want 0", got)
	}
}

func TestKellyFraction_MonotoneInEdge(t *testing.T) {
	implied := 0.5
	prev := 0.0
	for p := 0.50; p <= 0.70; p += 0.01 {
		k := KellyFraction(p, implied, 1)
		if k < prev {
			t.Fatalf("KellyFraction not monotone at p=%v: %v < %v", p, k, prev)
		}
		prev = k
	}
}

func TestAnalyzer_Evaluate(t *testing.T) {
	a := NewAnalyzer(0.25)

	in := model.Instrument{
		Ticker:      "KXATPMATCH-26JAN03NAVTHO-THO",
		EventTicker: "KXATPMATCH-26JAN03NAVTHO",
		Title:       "Navone vs Thompson",
		YesBid:      60,
		YesAsk:      64,
		NoBid:       36,
		NoAsk:       40,
		Volume:      500,
	}

	// Model says 70% yes against a 62% market: yes side edge 0.08.
	op, ok := a.Evaluate(in, 0.70)
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if op.Side != model.SideYes {
		t.Errorf("Side = %v, want yes", op.Side)
	}
	if !almost(op.Edge, 0.08) {
		t.Errorf("Edge = %v, want 0.08", op.Edge)
	}
	if !almost(op.ImpliedProb, 0.62) {
		t.Errorf("ImpliedProb = %v, want 0.62", op.ImpliedProb)
	}
	if op.AskCents != 64 {
		t.Errorf("AskCents = %d, want 64", op.AskCents)
	}

	// Model says 25% yes: the no side carries the edge.
	op, ok = a.Evaluate(in, 0.25)
	if !ok {
		t.Fatal("expected a no-side opportunity")
	}
	if op.Side != model.SideNo {
		t.Errorf("Side = %v, want no", op.Side)
	}
	if !almost(op.Edge, 0.75-0.38) {
		t.Errorf("Edge = %v, want %v", op.Edge, 0.75-0.38)
	}

	// Model agrees with the market: no opportunity either way.
	if _, ok := a.Evaluate(in, 0.62); ok {
		t.Error("expected no opportunity when model matches market")
	}

	// Unpriceable instrument.
	if _, ok := a.Evaluate(model.Instrument{}, 0.9); ok {
		t.Error("expected no opportunity for unpriced instrument")
	}
}
