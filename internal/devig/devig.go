// Package devig removes bookmaker margin from two-outcome odds pairs to
// recover fair probabilities.
package devig

import (
	"fmt"
	"math"

	"github.com/yourusername/courtside/internal/models"
)

// Method selects the vig-removal algorithm
type Method string

const (
	MethodMultiplicative Method = "multiplicative"
	MethodPower          Method = "power"
	MethodShin           Method = "shin"
)

// SumTolerance is the allowed deviation of a fair probability pair from 1.0
const SumTolerance = 1e-6

// Result holds de-vigged probabilities for a two-outcome market. HomeProb
// and AwayProb always sum to 1 within SumTolerance.
type Result struct {
	HomeProb float64 `json:"home_prob"`
	AwayProb float64 `json:"away_prob"`
	Method   Method  `json:"method"`
	// Fallback is set when the requested method failed to converge and
	// the multiplicative result was returned instead.
	Fallback bool `json:"fallback,omitempty"`
}

// ProbFor returns the fair probability for the given side
func (r Result) ProbFor(side models.Side) float64 {
	if side == models.SideHome {
		return r.HomeProb
	}
	return r.AwayProb
}

// DeVigger converts vigged decimal odds pairs into fair probabilities
// using a configurable method.
type DeVigger struct {
	method        Method
	powerExponent float64
	maxIterations int
	tolerance     float64
}

// Option configures a DeVigger
type Option func(*DeVigger)

// WithPowerExponent overrides the power-method exponent (default 2)
func WithPowerExponent(z float64) Option {
	return func(d *DeVigger) { d.powerExponent = z }
}

// WithConvergence overrides the Shin solver iteration and tolerance bounds
func WithConvergence(maxIterations int, tolerance float64) Option {
	return func(d *DeVigger) {
		d.maxIterations = maxIterations
		d.tolerance = tolerance
	}
}

// New creates a DeVigger for the given method
func New(method Method, opts ...Option) *DeVigger {
	d := &DeVigger{
		method:        method,
		powerExponent: 2.0,
		maxIterations: 100,
		tolerance:     1e-9,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Method returns the configured method
func (d *DeVigger) Method() Method {
	return d.method
}

// DeVig removes the margin from a (home, away) decimal odds pair. Odds
// must be finite and greater than 1.
func (d *DeVigger) DeVig(homeDec, awayDec float64) (Result, error) {
	if !oddsValid(homeDec) || !oddsValid(awayDec) {
		return Result{}, fmt.Errorf("%w: home=%v away=%v", models.ErrInvalidOdds, homeDec, awayDec)
	}

	switch d.method {
	case MethodPower:
		return d.power(homeDec, awayDec), nil
	case MethodShin:
		return d.shin(homeDec, awayDec), nil
	default:
		return d.multiplicative(homeDec, awayDec), nil
	}
}

// multiplicative scales implied probabilities so they sum to 1
func (d *DeVigger) multiplicative(homeDec, awayDec float64) Result {
	homeImplied := 1.0 / homeDec
	awayImplied := 1.0 / awayDec
	total := homeImplied + awayImplied
	return Result{
		HomeProb: homeImplied / total,
		AwayProb: awayImplied / total,
		Method:   MethodMultiplicative,
	}
}

// power raises each implied probability to 1/z and renormalizes. The
// exponent dampens the favorite-longshot bias relative to plain scaling.
func (d *DeVigger) power(homeDec, awayDec float64) Result {
	homeImplied := 1.0 / homeDec
	awayImplied := 1.0 / awayDec

	hz := math.Pow(homeImplied, 1.0/d.powerExponent)
	az := math.Pow(awayImplied, 1.0/d.powerExponent)
	total := hz + az
	if total <= 0 || math.IsNaN(total) {
		fallback := d.multiplicative(homeDec, awayDec)
		fallback.Fallback = true
		return fallback
	}
	return Result{
		HomeProb: hz / total,
		AwayProb: az / total,
		Method:   MethodPower,
	}
}

// shin solves the two-outcome Shin model, which attributes the overround
// to a fraction z of insider money. The exact binary closed form seeds a
// bounded bisection refinement; a solve that cannot satisfy the sum
// constraint within tolerance falls back to the multiplicative method.
func (d *DeVigger) shin(homeDec, awayDec float64) Result {
	homeImplied := 1.0 / homeDec
	awayImplied := 1.0 / awayDec
	total := homeImplied + awayImplied
	if total-1.0 <= d.tolerance {
		// No margin to remove
		return Result{
			HomeProb: homeImplied / total,
			AwayProb: awayImplied / total,
			Method:   MethodShin,
		}
	}

	z := d.solveShinZ(homeImplied, awayImplied)
	if math.IsNaN(z) {
		fallback := d.multiplicative(homeDec, awayDec)
		fallback.Fallback = true
		fallback.Method = MethodShin
		return fallback
	}

	homeFair := shinFair(homeImplied, total, z)
	awayFair := shinFair(awayImplied, total, z)
	sum := homeFair + awayFair
	if math.IsNaN(sum) || sum <= 0 || math.Abs(sum-1.0) > SumTolerance {
		fallback := d.multiplicative(homeDec, awayDec)
		fallback.Fallback = true
		fallback.Method = MethodShin
		return fallback
	}

	return Result{
		HomeProb: homeFair / sum,
		AwayProb: awayFair / sum,
		Method:   MethodShin,
	}
}

// solveShinZ finds the insider fraction z such that the fair
// probabilities sum to 1. For two outcomes the constraint reduces to
//
//	z = 1 - (2s - s^2 - d^2) / (s (1 - d^2))
//
// with s the implied sum and d the implied difference. The closed form
// is then refined by bisection on the residual to guard against
// floating-point drift at extreme odds. Returns NaN when z falls
// outside [0, 1) or the residual will not meet tolerance.
func (d *DeVigger) solveShinZ(homeImplied, awayImplied float64) float64 {
	s := homeImplied + awayImplied
	diff := homeImplied - awayImplied
	denom := s * (1.0 - diff*diff)
	if denom <= 0 {
		return math.NaN()
	}
	z := 1.0 - (2.0*s-s*s-diff*diff)/denom
	if math.IsNaN(z) || z < 0 || z >= 1 {
		return math.NaN()
	}

	residual := func(z float64) float64 {
		return shinFair(homeImplied, s, z) + shinFair(awayImplied, s, z) - 1.0
	}
	if math.Abs(residual(z)) < d.tolerance {
		return z
	}

	// The residual is monotone in z on [0, 1); bisect a small bracket
	// around the analytic estimate.
	lo, hi := math.Max(0, z-1e-3), math.Min(1-1e-12, z+1e-3)
	if residual(lo)*residual(hi) > 0 {
		return math.NaN()
	}
	for i := 0; i < d.maxIterations; i++ {
		mid := (lo + hi) / 2.0
		r := residual(mid)
		if math.Abs(r) < d.tolerance {
			return mid
		}
		if residual(lo)*r <= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return math.NaN()
}

func shinFair(implied, total, z float64) float64 {
	rad := z*z + 4.0*(1.0-z)*implied*implied/total
	if rad < 0 {
		return math.NaN()
	}
	return (math.Sqrt(rad) - z) / (2.0 * (1.0 - z))
}

func oddsValid(dec float64) bool {
	return dec > 1.0 && !math.IsInf(dec, 0) && !math.IsNaN(dec)
}
