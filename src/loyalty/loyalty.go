package loyalty

import (
	"sbp/src/config"
)

// Config is the admin-configured accrual/conversion rule, injected per
// computation. Neither constant is hard-coded at call sites.
type Config struct {
	PointsPerBooking int64
	CentsPerPoint    int64
}

func DefaultConfig() Config {
	return Config{
		PointsPerBooking: config.DEFAULT_LOYALTY_POINTS_PER_BOOKING,
		CentsPerPoint:    config.DEFAULT_LOYALTY_CENTS_PER_POINT,
	}
}

// ConfigFromSettings builds the rule from raw setting values keyed by the
// canonical setting keys, falling back to defaults for absent keys.
func ConfigFromSettings(values map[string]any) Config {
	cfg := DefaultConfig()
	if v, ok := settingInt(values[config.SETTING_LOYALTY_POINTS_PER_BOOKING]); ok && v >= 0 {
		cfg.PointsPerBooking = v
	}
	if v, ok := settingInt(values[config.SETTING_LOYALTY_CENTS_PER_POINT]); ok && v > 0 {
		cfg.CentsPerPoint = v
	}
	return cfg
}

func settingInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}

type Summary struct {
	TotalPointsEarned    int64 `json:"total_points_earned"`
	PointsRedeemed       int64 `json:"points_redeemed"`
	AvailablePoints      int64 `json:"available_points"`
	AvailableCreditCents int64 `json:"available_credit_cents"`
}

// Summarize derives the balance from the count of qualifying (paid or
// completed) bookings. Earned points are recomputed on demand, never stored
// as a running counter, so edits and cancelations cannot cause drift.
func Summarize(qualifyingBookings int64, redeemedPoints int64, cfg Config) Summary {
	earned := qualifyingBookings * cfg.PointsPerBooking
	if earned < 0 {
		earned = 0
	}
	available := earned - redeemedPoints
	if available < 0 {
		available = 0
	}
	return Summary{
		TotalPointsEarned:    earned,
		PointsRedeemed:       redeemedPoints,
		AvailablePoints:      available,
		AvailableCreditCents: available * cfg.CentsPerPoint,
	}
}

// ClampRedemption converts a requested point spend into (points, credit).
// Points are clamped to the available balance; the credit is clamped so the
// remaining payable amount (after any coupon discount) never goes negative,
// and points are recomputed from the clamped credit so no point is deducted
// without value received.
func ClampRedemption(requested int64, available int64, discountedPriceCents int64, couponDiscountCents int64, cfg Config) (int64, int64) {
	if requested <= 0 || available <= 0 || cfg.CentsPerPoint <= 0 {
		return 0, 0
	}
	points := requested
	if points > available {
		points = available
	}
	remaining := discountedPriceCents - couponDiscountCents
	if remaining <= 0 {
		return 0, 0
	}
	credit := points * cfg.CentsPerPoint
	if credit > remaining {
		credit = remaining
		points = credit / cfg.CentsPerPoint
		credit = points * cfg.CentsPerPoint
	}
	if points <= 0 {
		return 0, 0
	}
	return points, credit
}
