package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(10), cfg.PointsPerBooking)
	assert.Equal(t, int64(1), cfg.CentsPerPoint)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(map[string]any{
		"loyalty.points_per_booking": 25.0,
		"loyalty.cents_per_point":    int64(5),
	})
	assert.Equal(t, int64(25), cfg.PointsPerBooking)
	assert.Equal(t, int64(5), cfg.CentsPerPoint)
}

func TestConfigFromSettingsRejectsBadValues(t *testing.T) {
	cfg := ConfigFromSettings(map[string]any{
		"loyalty.points_per_booking": -3,
		"loyalty.cents_per_point":    0,
	})
	assert.Equal(t, DefaultConfig(), cfg)

	cfg = ConfigFromSettings(map[string]any{
		"loyalty.cents_per_point": "five",
	})
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSummarize(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 2}
	s := Summarize(4, 15, cfg)
	assert.Equal(t, int64(40), s.TotalPointsEarned)
	assert.Equal(t, int64(15), s.PointsRedeemed)
	assert.Equal(t, int64(25), s.AvailablePoints)
	assert.Equal(t, int64(50), s.AvailableCreditCents)
}

func TestSummarizeNeverNegative(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 1}
	s := Summarize(1, 50, cfg)
	assert.Equal(t, int64(0), s.AvailablePoints)
	assert.Equal(t, int64(0), s.AvailableCreditCents)
}

func TestClampRedemptionHappyPath(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 1}
	points, credit := ClampRedemption(100, 500, 8000, 0, cfg)
	assert.Equal(t, int64(100), points)
	assert.Equal(t, int64(100), credit)
}

func TestClampRedemptionClampsToAvailable(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 1}
	points, credit := ClampRedemption(1000, 300, 8000, 0, cfg)
	assert.Equal(t, int64(300), points)
	assert.Equal(t, int64(300), credit)
}

func TestClampRedemptionClampsToRemainingNet(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 1}
	// Only 700 cents remain after the coupon; the 1000 requested points
	// shrink so credit never exceeds the net.
	points, credit := ClampRedemption(1000, 5000, 1700, 1000, cfg)
	assert.Equal(t, int64(700), points)
	assert.Equal(t, int64(700), credit)
}

func TestClampRedemptionWholePointsOnly(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 3}
	// 500 cents remain; 166 points = 498 cents is the largest whole-point
	// spend that fits.
	points, credit := ClampRedemption(400, 400, 500, 0, cfg)
	assert.Equal(t, int64(166), points)
	assert.Equal(t, int64(498), credit)
}

func TestClampRedemptionZeroCases(t *testing.T) {
	cfg := Config{PointsPerBooking: 10, CentsPerPoint: 1}

	points, credit := ClampRedemption(0, 100, 1000, 0, cfg)
	assert.Zero(t, points)
	assert.Zero(t, credit)

	points, credit = ClampRedemption(-5, 100, 1000, 0, cfg)
	assert.Zero(t, points)
	assert.Zero(t, credit)

	points, credit = ClampRedemption(50, 0, 1000, 0, cfg)
	assert.Zero(t, points)
	assert.Zero(t, credit)

	// Nothing left to pay after the coupon.
	points, credit = ClampRedemption(50, 100, 1000, 1000, cfg)
	assert.Zero(t, points)
	assert.Zero(t, credit)
}
