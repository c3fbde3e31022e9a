package coupons

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sbp/src/models"
	"sbp/src/types"
)

// Discount is the tagged view of a coupon's discount so computation is an
// exhaustive switch instead of a chain of nullable checks.
type Discount struct {
	Type        types.CouponDiscountType
	Percentage  float64
	AmountCents int64
}

func DiscountOf(c *models.Coupon) Discount {
	switch c.DiscountType {
	case types.COUPON_PERCENTAGE:
		return Discount{Type: types.COUPON_PERCENTAGE, Percentage: c.DiscountValue}
	default:
		return Discount{Type: types.COUPON_AMOUNT, AmountCents: int64(math.Round(c.DiscountValue))}
	}
}

// NormalizeCode is the canonical form codes are stored and matched in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate runs the full eligibility check sequence against a coupon for a
// booking whose (already service-discounted) base amount and service are
// given. Redemption counts are supplied by the caller so the check can run
// inside the same transaction that writes the redemption.
func Validate(c *models.Coupon, now time.Time, baseAmountCents int64, serviceID uint, totalRedemptions int64, userRedemptions int64) *Error {
	if c == nil {
		return NewError(NOT_FOUND, "coupon not found")
	}
	if !c.Active {
		return NewError(INACTIVE, fmt.Sprintf("coupon %s is not active", c.Code))
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return NewError(NOT_YET_VALID, fmt.Sprintf("coupon %s is not valid yet", c.Code))
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return NewError(EXPIRED, fmt.Sprintf("coupon %s has expired", c.Code))
	}
	if baseAmountCents < c.MinBookingAmountCents {
		return NewError(BELOW_MINIMUM, fmt.Sprintf("booking amount is below the %d minimum for coupon %s", c.MinBookingAmountCents, c.Code))
	}
	if !c.AppliesToAllServices && !serviceEligible(c, serviceID) {
		return NewError(SERVICE_NOT_ELIGIBLE, fmt.Sprintf("coupon %s does not apply to this service", c.Code))
	}
	if c.MaxRedemptions != nil && totalRedemptions >= *c.MaxRedemptions {
		return NewError(REDEMPTION_LIMIT_REACHED, fmt.Sprintf("coupon %s has reached its redemption limit", c.Code))
	}
	if c.MaxRedemptionsPerUser != nil && userRedemptions >= *c.MaxRedemptionsPerUser {
		return NewError(USER_LIMIT_REACHED, fmt.Sprintf("coupon %s has already been used the maximum number of times", c.Code))
	}
	return nil
}

func serviceEligible(c *models.Coupon, serviceID uint) bool {
	for _, s := range c.Services {
		if s != nil && s.ID == serviceID {
			return true
		}
	}
	return false
}

// DiscountCents computes the discount a coupon grants against the given base
// amount, never exceeding the base.
func DiscountCents(c *models.Coupon, baseAmountCents int64) int64 {
	if baseAmountCents <= 0 {
		return 0
	}
	var discount int64
	d := DiscountOf(c)
	switch d.Type {
	case types.COUPON_PERCENTAGE:
		pct := d.Percentage
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = int64(math.Round(float64(baseAmountCents) * pct / 100))
	case types.COUPON_AMOUNT:
		discount = d.AmountCents
	}
	if discount < 0 {
		discount = 0
	}
	if discount > baseAmountCents {
		discount = baseAmountCents
	}
	return discount
}
