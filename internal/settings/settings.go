package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/mind-engage/fundreview/internal/scoring"
)

type Type string

const (
	PassPercentage           Type = "PASS_PERCENTAGE"
	PassExcellentPercentage  Type = "PASS_EXCELLENT_PERCENTAGE"
	ResubmitPercentage       Type = "RESUBMIT_PERCENTAGE"
	MilestoneValuePercentage Type = "MILESTONE_VALUE_PERCENTAGE"
	PlatformChargePercentage Type = "PLATFORM_CHARGE_PERCENTAGE"
	MaxSuspendedTime         Type = "MAX_SUSPENDED_TIME"
)

// GlobalSetting is a named configuration value. Percentage types hold a
// fraction in [0,1]; MAX_SUSPENDED_TIME holds a whole number.
type GlobalSetting struct {
	ID    string  `json:"id"`
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
}

func (t Type) IsPercentage() bool {
	switch t {
	case PassPercentage, PassExcellentPercentage, ResubmitPercentage,
		MilestoneValuePercentage, PlatformChargePercentage:
		return true
	}
	return false
}

var ErrInvalidValue = errors.New("invalid setting value")

func Validate(t Type, v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: NaN", ErrInvalidValue)
	}
	switch {
	case t.IsPercentage():
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be a fraction in [0,1], got %v", ErrInvalidValue, t, v)
		}
	case t == MaxSuspendedTime:
		if v < 0 || v != math.Trunc(v) {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %v", ErrInvalidValue, t, v)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidValue, t)
	}
	return nil
}

// Source is the backend side of the provider.
type Source interface {
	Settings(ctx context.Context) ([]GlobalSetting, error)
	SettingsByType(ctx context.Context, types ...Type) ([]GlobalSetting, error)
	UpdateSetting(ctx context.Context, id string, value float64) (GlobalSetting, error)
}

// Provider loads thresholds once and caches them until Invalidate or Update.
type Provider struct {
	src      Source
	defaults scoring.Thresholds

	mu     sync.Mutex
	cached *scoring.Thresholds
}

func NewProvider(src Source, defaults scoring.Thresholds) *Provider {
	return &Provider{src: src, defaults: defaults}
}

// Thresholds returns the pass/excellent/resubmit percentages. When the
// backend cannot be reached the defaults are returned along with the error,
// so callers can keep going.
func (p *Provider) Thresholds(ctx context.Context) (scoring.Thresholds, error) {
	p.mu.Lock()
	if p.cached != nil {
		t := *p.cached
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	list, err := p.src.SettingsByType(ctx, PassPercentage, PassExcellentPercentage, ResubmitPercentage)
	if err != nil {
		log.Printf("thresholds unavailable, using defaults %+v: %v", p.defaults, err)
		return p.defaults, err
	}
	t := ThresholdsFrom(list, p.defaults)
	if !t.Ordered() {
		log.Printf("thresholds out of order (excellent %.0f, pass %.0f, resubmit %.0f)", t.Excellent, t.Pass, t.Resubmit)
	}

	p.mu.Lock()
	p.cached = &t
	p.mu.Unlock()
	return t, nil
}

func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *Provider) All(ctx context.Context) ([]GlobalSetting, error) {
	return p.src.Settings(ctx)
}

// Update validates and persists a setting, then drops the cached thresholds.
func (p *Provider) Update(ctx context.Context, id string, t Type, value float64) (GlobalSetting, error) {
	if err := Validate(t, value); err != nil {
		return GlobalSetting{}, err
	}
	gs, err := p.src.UpdateSetting(ctx, id, value)
	if err != nil {
		return GlobalSetting{}, err
	}
	p.Invalidate()
	return gs, nil
}

// ThresholdsFrom converts fractional settings to percentages, keeping the
// default for any type that is absent.
func ThresholdsFrom(list []GlobalSetting, def scoring.Thresholds) scoring.Thresholds {
	t := def
	for _, s := range list {
		pct := toPercent(s.Value)
		switch s.Type {
		case PassPercentage:
			t.Pass = pct
		case PassExcellentPercentage:
			t.Excellent = pct
		case ResubmitPercentage:
			t.Resubmit = pct
		}
	}
	return t
}

// toPercent scales a fraction to a percentage rounded to two decimals, so
// 0.55 becomes exactly 55 rather than 55.00000000000001.
func toPercent(fraction float64) float64 {
	return math.Round(fraction*1e4) / 100
}
