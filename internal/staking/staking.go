// Package staking sizes bets as a fraction of current bankroll.
package staking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

// ExhaustionPolicy controls behavior when a stake would exceed the
// remaining bankroll.
type ExhaustionPolicy string

const (
	// PolicyClamp reduces the stake to the remaining balance
	PolicyClamp ExhaustionPolicy = "clamp"
	// PolicySkip declines the bet entirely
	PolicySkip ExhaustionPolicy = "skip"
)

// Policy computes flat fractional stakes. The base fraction can be
// scaled by a per-signal confidence multiplier but the result never
// exceeds the max fraction of bankroll. Stakes are rounded down to
// whole cents so ledgers stay exact.
type Policy struct {
	baseFraction float64
	maxFraction  float64
	exhaustion   ExhaustionPolicy
}

// NewPolicy builds a Policy from configuration
func NewPolicy(cfg config.StakingConfig) (*Policy, error) {
	if cfg.BaseFraction <= 0 || cfg.BaseFraction > cfg.MaxFraction {
		return nil, fmt.Errorf("staking: base fraction %.4f must be in (0, %.4f]", cfg.BaseFraction, cfg.MaxFraction)
	}
	policy := ExhaustionPolicy(cfg.ExhaustionPolicy)
	if policy != PolicyClamp && policy != PolicySkip {
		return nil, fmt.Errorf("staking: unknown exhaustion policy %q", cfg.ExhaustionPolicy)
	}
	return &Policy{
		baseFraction: cfg.BaseFraction,
		maxFraction:  cfg.MaxFraction,
		exhaustion:   policy,
	}, nil
}

// Stake returns the cash stake for a signal given the current bankroll.
// confidence scales the base fraction; pass 1 for flat staking. A
// confidence of exactly 0 declines the bet, a negative value is the
// no-scaling sentinel. A zero return with a nil error means the bet
// should be skipped. The bankroll-exhausted error is returned only
// under the skip policy.
func (p *Policy) Stake(bankroll, confidence float64) (float64, error) {
	if bankroll <= 0 {
		return 0, fmt.Errorf("staking: bankroll %.2f: %w", bankroll, models.ErrBankrollExhausted)
	}
	if confidence == 0 {
		return 0, nil
	}
	if confidence < 0 {
		confidence = 1.0
	}

	fraction := p.baseFraction * confidence
	if fraction > p.maxFraction {
		fraction = p.maxFraction
	}

	stake := roundToCents(bankroll * fraction)
	if stake <= 0 {
		return 0, nil
	}
	if stake > bankroll {
		if p.exhaustion == PolicySkip {
			return 0, fmt.Errorf("staking: stake %.2f exceeds bankroll %.2f: %w", stake, bankroll, models.ErrBankrollExhausted)
		}
		stake = roundToCents(bankroll)
	}
	return stake, nil
}

// MaxFraction exposes the configured cap for reporting
func (p *Policy) MaxFraction() float64 {
	return p.maxFraction
}

// roundToCents truncates toward zero at two decimal places. Truncation
// rather than rounding keeps a stake from ever exceeding the intended
// fraction by a fractional cent.
func roundToCents(amount float64) float64 {
	d := decimal.NewFromFloat(amount).Truncate(2)
	f, _ := d.Float64()
	return f
}
