// Package valuation implements the deterministic maturity curve for
// bottle records. Everything here is a pure function of a bottle and a
// caller-supplied year; the current year is never read from the clock
// inside this package, so results are reproducible in tests.
package valuation

import "github.com/klemenv/vinoteka/internal/model"

// Value returns the bottle's value at currentYear.
//
// The curve has two phases around the optimal age: a linear ramp from 0
// to MaxValue while the bottle matures, then a decline at half the ramp
// rate, floored at 0. Bottles at or before their vintage year are worth
// nothing. Both branches yield MaxValue at age == OptimalAge, so the
// curve is continuous at the peak. Division truncates.
func Value(b *model.Bottle, currentYear int) int64 {
	age := currentYear - b.Vintage
	if age <= 0 {
		return 0
	}
	if age <= b.OptimalAge {
		return b.MaxValue * int64(age) / int64(b.OptimalAge)
	}
	decline := b.MaxValue * int64(age-b.OptimalAge) / int64(2*b.OptimalAge)
	if decline >= b.MaxValue {
		return 0
	}
	return b.MaxValue - decline
}

// ConditionFactor returns the additive qualitative multiplier for a
// bottle: 1 plus one point each for an excellent cork, an excellent
// label, and a reputable cellar. Kept separate from the time-based
// curve; callers combine the two as they see fit.
func ConditionFactor(b *model.Bottle, reputableCellar bool) int64 {
	factor := int64(1)
	if b.CorkCondition == model.ConditionExcellent {
		factor++
	}
	if b.LabelCondition == model.ConditionExcellent {
		factor++
	}
	if reputableCellar {
		factor++
	}
	return factor
}
