package stores

import (
	"context"
	"errors"

	"sbp/src/loyalty"
	"sbp/src/models"
	"sbp/src/pricing"
	"sbp/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Loyalty struct {
	db *gorm.DB
}

func NewLoyalty(db *gorm.DB) *Loyalty {
	return &Loyalty{db: db}
}

// Summary derives the balance from persisted bookings every time. Only paid
// and completed bookings accrue points.
func (s *Loyalty) Summary(ctx context.Context, userID uint, cfg loyalty.Config) (loyalty.Summary, error) {
	var qualifying int64
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("user_id = ? AND status IN ?", userID, []types.BookingStatus{types.BOOKING_PAID, types.BOOKING_COMPLETED}).
		Count(&qualifying).
		Error
	if err != nil {
		return loyalty.Summary{}, err
	}
	var user models.User
	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where(&models.User{ID: userID}).
		First(&user).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loyalty.Summarize(qualifying, 0, cfg), nil
	}
	if err != nil {
		return loyalty.Summary{}, err
	}
	return loyalty.Summarize(qualifying, user.LoyaltyRedeemedPoints, cfg), nil
}

// Commit deducts redeemed points inside the caller's transaction. The user
// row is locked and availability re-derived under that lock before the
// deduction, so two concurrent commits cannot both spend the same points.
// The quote was clamped without side effects, meaning another booking may
// have consumed the balance since.
func Commit(tx *gorm.DB, userID uint, points int64, creditCents int64, cfg loyalty.Config) error {
	if points <= 0 {
		return nil
	}
	var user models.User
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&models.User{ID: userID}).
		First(&user).
		Error; err != nil {
		return err
	}
	var qualifying int64
	if err := tx.
		Model(&models.Booking{}).
		Where("user_id = ? AND status IN ?", userID, []types.BookingStatus{types.BOOKING_PAID, types.BOOKING_COMPLETED}).
		Count(&qualifying).
		Error; err != nil {
		return err
	}
	summary := loyalty.Summarize(qualifying, user.LoyaltyRedeemedPoints, cfg)
	if points > summary.AvailablePoints {
		return pricing.NewError(pricing.INSUFFICIENT_POINTS, "not enough loyalty points available")
	}
	return tx.
		Model(&models.User{}).
		Where(&models.User{ID: userID}).
		Updates(map[string]any{
			"loyalty_redeemed_points": gorm.Expr("loyalty_redeemed_points + ?", points),
			"loyalty_credit_cents":    gorm.Expr("loyalty_credit_cents + ?", creditCents),
		}).Error
}

// Reverse returns previously committed points when a booking is canceled.
// The balance never goes below zero even if called twice.
func Reverse(tx *gorm.DB, userID uint, points int64, creditCents int64) error {
	if points <= 0 {
		return nil
	}
	return tx.
		Model(&models.User{}).
		Where("id = ? AND loyalty_redeemed_points >= ?", userID, points).
		Updates(map[string]any{
			"loyalty_redeemed_points": gorm.Expr("loyalty_redeemed_points - ?", points),
			"loyalty_credit_cents":    gorm.Expr("loyalty_credit_cents - ?", creditCents),
		}).Error
}
