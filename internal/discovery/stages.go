package discovery

import (
	"strings"
	"time"

	"github.com/courtline/courtline/internal/model"
)

// seriesStage is the advisory first stage: series membership is a hint,
// never a rejection, so it always passes. The known-series set itself
// lives in keywordStage, where a match waives the title keyword
// requirement.
type seriesStage struct{}

func (s *seriesStage) Name() string { return "series" }

func (s *seriesStage) Evaluate(_ model.Event, _ model.Instrument) string {
	return ""
}

type keywordStage struct {
	known    map[string]struct{}
	keywords []string
}

func (s *keywordStage) Name() string { return "keywords" }

func (s *keywordStage) Evaluate(ev model.Event, in model.Instrument) string {
	if _, ok := s.known[strings.ToUpper(in.SeriesTicker)]; ok {
		return ""
	}
	haystack := strings.ToLower(ev.Title + " " + in.Title + " " + in.Subtitle)
	for _, kw := range s.keywords {
		if strings.Contains(haystack, kw) {
			return ""
		}
	}
	return ReasonKeywords
}

type structureStage struct {
	exclusions []string
}

func (s *structureStage) Name() string { return "structure" }

func (s *structureStage) Evaluate(ev model.Event, in model.Instrument) string {
	title := in.Title
	if title == "" {
		title = ev.Title
	}
	if _, _, ok := ParseContest(title); !ok {
		return ReasonStructure
	}
	lowered := strings.ToLower(title)
	for _, term := range s.exclusions {
		if strings.Contains(lowered, term) {
			return ReasonStructure
		}
	}
	return ""
}

type statusStage struct{}

func (s *statusStage) Name() string { return "status" }

func (s *statusStage) Evaluate(_ model.Event, in model.Instrument) string {
	if in.Status != "open" {
		return ReasonStatus
	}
	if !in.HasYesPrice() || !in.HasNoPrice() {
		return ReasonStatus
	}
	return ""
}

type horizonStage struct {
	max time.Duration
	now func() time.Time
}

func (s *horizonStage) Name() string { return "horizon" }

func (s *horizonStage) Evaluate(_ model.Event, in model.Instrument) string {
	if in.CloseTime.IsZero() {
		return ReasonHorizon
	}
	now := s.now()
	if !in.CloseTime.After(now) {
		return ReasonHorizon
	}
	if in.CloseTime.Sub(now) > s.max {
		return ReasonHorizon
	}
	return ""
}

type liquidityStage struct {
	minVolume int64
}

func (s *liquidityStage) Name() string { return "liquidity" }

func (s *liquidityStage) Evaluate(_ model.Event, in model.Instrument) string {
	if in.Volume < s.minVolume {
		return ReasonLiquidity
	}
	return ""
}
