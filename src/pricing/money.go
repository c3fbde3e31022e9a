package pricing

import "math"

// FeeAdjustments are the global surcharges applied on top of the net price.
// Nil fields mean the setting is absent. Percentages are additive: each term
// is computed against the same base, never against a running total.
type FeeAdjustments struct {
	TaxPercentage       *float64
	StripeFeePercentage *float64
	ExtraFeeCents       *int64
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func roundPercentOf(baseCents int64, percent float64) int64 {
	return int64(math.Round(float64(baseCents) * percent / 100))
}

// CalculateDiscountedPrice applies a percentage discount to a price in minor
// units. The discount is clamped to [0,100]; a non-positive price yields 0.
func CalculateDiscountedPrice(priceCents int64, discountPercentage float64) int64 {
	if priceCents <= 0 {
		return 0
	}
	pct := clampPercent(discountPercentage)
	if pct == 0 {
		return priceCents
	}
	out := roundPercentOf(priceCents, 100-pct)
	if out < 0 {
		return 0
	}
	return out
}

// ApplyFeesToPrice adds tax, processor fee and a flat extra fee to the price.
// Every percentage term is computed against the original base, so fees never
// compound against each other.
func ApplyFeesToPrice(priceCents int64, adj FeeAdjustments) int64 {
	base := priceCents
	if base < 0 {
		base = 0
	}
	total := base
	if adj.TaxPercentage != nil {
		total += roundPercentOf(base, clampPercent(*adj.TaxPercentage))
	}
	if adj.StripeFeePercentage != nil {
		total += roundPercentOf(base, clampPercent(*adj.StripeFeePercentage))
	}
	if adj.ExtraFeeCents != nil && *adj.ExtraFeeCents > 0 {
		total += *adj.ExtraFeeCents
	}
	if total < 0 {
		return 0
	}
	return total
}

// CalculatePriceAfterCredit discounts the price, subtracts loyalty credit
// and applies fees to the remaining net.
func CalculatePriceAfterCredit(priceCents int64, discountPercentage float64, loyaltyCreditAppliedCents int64, adj FeeAdjustments) int64 {
	return ApplyCouponAndCredits(priceCents, discountPercentage, 0, loyaltyCreditAppliedCents, adj)
}

// ApplyCouponAndCredits runs the full deduction chain: percentage discount,
// then coupon amount, then loyalty credit, each floored at zero, with fees
// applied to the resulting net.
func ApplyCouponAndCredits(priceCents int64, discountPercentage float64, couponDiscountCents int64, loyaltyCreditAppliedCents int64, adj FeeAdjustments) int64 {
	net := CalculateDiscountedPrice(priceCents, discountPercentage)
	if couponDiscountCents > 0 {
		net -= couponDiscountCents
	}
	if loyaltyCreditAppliedCents > 0 {
		net -= loyaltyCreditAppliedCents
	}
	if net < 0 {
		net = 0
	}
	return ApplyFeesToPrice(net, adj)
}
