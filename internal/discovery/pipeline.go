package discovery

import (
	"strings"
	"time"

	"github.com/courtline/courtline/internal/model"
)

// Reason codes returned by pipeline stages. The series hint is advisory
// and never emitted as a rejection.
const (
	ReasonKeywords  = "keywords"
	ReasonStructure = "structure"
	ReasonStatus    = "status"
	ReasonHorizon   = "horizon"
	ReasonLiquidity = "liquidity"
)

// Stage is a single pipeline check. Evaluate returns a reason code when
// the instrument is rejected, or the empty string when it passes.
type Stage interface {
	Name() string
	Evaluate(ev model.Event, in model.Instrument) string
}

// Config controls what the pipeline accepts. Zero values fall back to
// the defaults in DefaultConfig.
type Config struct {
	// Series lists known match-contract series tickers. Membership is a
	// hint that satisfies the keyword stage; absence never rejects.
	Series []string

	// Keywords is the case-insensitive allow-list matched against the
	// event and instrument titles.
	Keywords []string

	// ExclusionTerms mark aggregate-outcome contracts (tournament
	// winners, season totals) that share keywords with single matches.
	ExclusionTerms []string

	// MaxHorizon is the furthest acceptable close time.
	MaxHorizon time.Duration

	// MinVolume is the minimum traded volume in contracts.
	MinVolume int64

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig targets professional tennis match contracts.
func DefaultConfig() Config {
	return Config{
		Series: []string{"KXATPMATCH", "KXWTAMATCH", "KXUNITEDCUPMATCH"},
		Keywords: []string{
			"tennis", "atp", "wta",
			"wimbledon", "us open", "french open", "australian open",
			"roland garros", "united cup", "grand slam",
		},
		ExclusionTerms: []string{
			"tournament", "championship", "champion", "season",
			"cup winner", "wins more than", "total sets", "to win the",
		},
		MaxHorizon: 72 * time.Hour,
		MinVolume:  1,
		Now:        time.Now,
	}
}

// Pipeline runs instruments through its stages in order and reports the
// first rejection reason.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds the standard six-stage pipeline from cfg.
func NewPipeline(cfg Config) *Pipeline {
	def := DefaultConfig()
	if len(cfg.Series) == 0 {
		cfg.Series = def.Series
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = def.Keywords
	}
	if len(cfg.ExclusionTerms) == 0 {
		cfg.ExclusionTerms = def.ExclusionTerms
	}
	if cfg.MaxHorizon <= 0 {
		cfg.MaxHorizon = def.MaxHorizon
	}
	if cfg.MinVolume <= 0 {
		cfg.MinVolume = def.MinVolume
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	series := make(map[string]struct{}, len(cfg.Series))
	for _, s := range cfg.Series {
		series[strings.ToUpper(s)] = struct{}{}
	}

	return &Pipeline{
		stages: []Stage{
			&seriesStage{},
			&keywordStage{known: series, keywords: lowerAll(cfg.Keywords)},
			&structureStage{exclusions: lowerAll(cfg.ExclusionTerms)},
			&statusStage{},
			&horizonStage{max: cfg.MaxHorizon, now: cfg.Now},
			&liquidityStage{minVolume: cfg.MinVolume},
		},
	}
}

// Evaluate returns the first stage's rejection reason, or the empty
// string when every stage passes.
func (p *Pipeline) Evaluate(ev model.Event, in model.Instrument) string {
	for _, s := range p.stages {
		if reason := s.Evaluate(ev, in); reason != "" {
			return reason
		}
	}
	return ""
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
