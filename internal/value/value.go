// Package value converts venue prices into probabilities and scores
// them against an external model's estimates.
//
// Prices are integer cents on a 0-100 contract, so a price of 62 is an
// implied probability of 0.62. Edges are model probability minus the
// market's implied probability; sizing uses a ceilinged Kelly fraction.
package value

import (
	"math"

	"github.com/courtline/courtline/internal/model"
)

// DefaultKellyCeiling caps the recommended stake fraction.
const DefaultKellyCeiling = 0.25

// Opportunity is one side of an instrument where the model disagrees
// with the market enough to act on.
type Opportunity struct {
	Ticker      string     `json:"ticker"`
	EventTicker string     `json:"event_ticker"`
	Title       string     `json:"title"`
	Side        model.Side `json:"side"`
	ModelProb   float64    `json:"model_prob"`
	ImpliedProb float64    `json:"implied_prob"`
	Edge        float64    `json:"edge"`
	EV          float64    `json:"ev"`
	Kelly       float64    `json:"kelly"`
	AskCents    int        `json:"ask_cents"`
	Volume      int64      `json:"volume"`
}

// ImpliedProbability derives the market's probability for one side of
// an instrument. Preference order: bid/ask midpoint, then whichever of
// bid or ask is present alone, then the last trade price. ok reports
// false when no price is available at all.
func ImpliedProbability(in model.Instrument, side model.Side) (p float64, ok bool) {
	var bid, ask int
	switch side {
	case model.SideYes:
		bid, ask = in.YesBid, in.YesAsk
	case model.SideNo:
		bid, ask = in.NoBid, in.NoAsk
	}

	switch {
	case bid > 0 && ask > 0:
		return float64(bid+ask) / 200, true
	case bid > 0:
		return float64(bid) / 100, true
	case ask > 0:
		return float64(ask) / 100, true
	}

	if in.LastPrice > 0 {
		last := float64(in.LastPrice) / 100
		if side == model.SideNo {
			last = 1 - last
		}
		return last, true
	}
	return 0, false
}

// Value is the raw edge: model probability minus market probability.
func Value(modelProb, impliedProb float64) float64 {
	return modelProb - impliedProb
}

// ExpectedValue is the per-unit-stake expectation p*o - 1 where the
// decimal odds o are the reciprocal of the implied probability.
func ExpectedValue(modelProb, impliedProb float64) float64 {
	if impliedProb <= 0 {
		return 0
	}
	return modelProb/impliedProb - 1
}

// KellyFraction is the Kelly-optimal stake (p*o - 1) / (o - 1) clamped
// to [0, ceiling]. Negative-edge positions get zero, never a short.
func KellyFraction(modelProb, impliedProb, ceiling float64) float64 {
	if impliedProb <= 0 || impliedProb >= 1 {
		return 0
	}
	o := 1 / impliedProb
	k := (modelProb*o - 1) / (o - 1)
	if k <= 0 || math.IsNaN(k) {
		return 0
	}
	return math.Min(k, ceiling)
}

// Analyzer scores instruments against model probabilities.
type Analyzer struct {
	kellyCeiling float64
}

// NewAnalyzer returns an Analyzer with the given Kelly ceiling;
// non-positive values fall back to DefaultKellyCeiling.
func NewAnalyzer(kellyCeiling float64) *Analyzer {
	if kellyCeiling <= 0 {
		kellyCeiling = DefaultKellyCeiling
	}
	return &Analyzer{kellyCeiling: kellyCeiling}
}

// Evaluate scores both sides of an instrument given the model's
// probability that the yes side wins. It returns the side with the
// larger positive edge, or ok=false when neither side has one or the
// instrument is unpriceable.
func (a *Analyzer) Evaluate(in model.Instrument, yesProb float64) (Opportunity, bool) {
	best := Opportunity{}
	found := false

	for _, side := range []model.Side{model.SideYes, model.SideNo} {
		modelProb := yesProb
		if side == model.SideNo {
			modelProb = 1 - yesProb
		}
		implied, ok := ImpliedProbability(in, side)
		if !ok {
			continue
		}
		edge := Value(modelProb, implied)
		if edge <= 0 {
			continue
		}
		if found && edge <= best.Edge {
			continue
		}
		best = Opportunity{
			Ticker:      in.Ticker,
			EventTicker: in.EventTicker,
			Title:       in.Title,
			Side:        side,
			ModelProb:   modelProb,
			ImpliedProb: implied,
			Edge:        edge,
			EV:          ExpectedValue(modelProb, implied),
			Kelly:       KellyFraction(modelProb, implied, a.kellyCeiling),
			AskCents:    in.Ask(side),
			Volume:      in.Volume,
		}
		found = true
	}
	return best, found
}
