package stores

import (
	"context"
	"errors"
	"log"

	"sbp/src/coupons"
	"sbp/src/models"
	"sbp/src/pricing"
	"sbp/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Bookings struct {
	db *gorm.DB
}

func NewBookings(db *gorm.DB) *Bookings {
	return &Bookings{db: db}
}

func (s *Bookings) Get(ctx context.Context, bookingID uint, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingID, UserID: userID}).
		First(&booking).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *Bookings) ListForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: userID}).
		Order("created_at DESC").
		Find(&bookings).
		Error
	return bookings, err
}

// CreateWithSnapshot persists a booking together with its pricing snapshot,
// the coupon redemption row and the loyalty point deduction, all in one
// transaction. The snapshot is written exactly once here; nothing else in
// the codebase sets the snapshot columns on an existing booking.
func (s *Bookings) CreateWithSnapshot(ctx context.Context, in pricing.Input, bd *pricing.Breakdown) (*models.Booking, error) {
	booking := models.Booking{
		UserID:               in.UserID,
		ServiceID:            in.ServiceID,
		Status:               types.BOOKING_PENDING,
		Latitude:             in.Latitude,
		Longitude:            in.Longitude,
		AreaID:               bd.AreaID,
		BasePriceCents:       bd.BasePriceCents,
		DiscountPercentage:   bd.DiscountPercentage,
		DiscountedPriceCents: bd.DiscountedPriceCents,

		TaxPercentage:               orZeroFloat(bd.TaxPercentage),
		StripeFeePercentage:         orZeroFloat(bd.StripeFeePercentage),
		ExtraFeeCents:               orZeroInt(bd.ExtraFeeCents),
		PartnerCommissionPercentage: orZeroFloat(bd.PartnerCommissionPercentage),
		CouponCode:                  bd.CouponCode,
		CouponID:                    bd.CouponID,
		LoyaltyPointsApplied:        bd.LoyaltyPointsApplied,
		CashAmountCents:             &bd.FinalPriceCents,
	}
	if in.VehicleCount != nil && *in.VehicleCount > 1 {
		booking.VehicleCount = *in.VehicleCount
	} else {
		booking.VehicleCount = 1
	}
	if bd.CouponID != nil {
		booking.CouponDiscountCents = &bd.CouponDiscountCents
	}
	if bd.LoyaltyPointsApplied > 0 {
		booking.LoyaltyCreditAppliedCents = &bd.LoyaltyCreditAppliedCents
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		if bd.CouponID != nil {
			// Recheck the caps under a row lock. The preview validated the
			// coupon without side effects, so another booking may have
			// consumed the last redemption in between.
			var coupon models.Coupon
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(&models.Coupon{ID: *bd.CouponID}).
				First(&coupon).
				Error; err != nil {
				return err
			}
			if err := tx.Model(&coupon).Association("Services").Find(&coupon.Services); err != nil {
				return err
			}
			total, user, err := redemptionCounts(tx, coupon.ID, in.UserID)
			if err != nil {
				return err
			}
			if verr := coupons.Validate(&coupon, tx.NowFunc(), bd.DiscountedPriceCents, in.ServiceID, total, user); verr != nil {
				return verr
			}
			redemption := models.CouponRedemption{
				CouponID:    coupon.ID,
				UserID:      in.UserID,
				BookingID:   booking.ID,
				AmountCents: bd.CouponDiscountCents,
			}
			if err := tx.Create(&redemption).Error; err != nil {
				return err
			}
		}
		if bd.LoyaltyPointsApplied > 0 {
			if err := Commit(tx, in.UserID, bd.LoyaltyPointsApplied, bd.LoyaltyCreditAppliedCents, bd.LoyaltyConfig); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateWithSnapshot failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

// Cancel marks the booking canceled and reverses its redemptions. The
// coupon redemption row is deleted so the coupon's caps are restored, and
// any committed loyalty points flow back to the user.
func (s *Bookings) Cancel(ctx context.Context, bookingID uint, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingID, UserID: userID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return coupons.NewError(coupons.INVALID_STATE, "booking not found")
			}
			return err
		}
		if booking.Status == types.BOOKING_CANCELED {
			return coupons.NewError(coupons.INVALID_STATE, "booking is already canceled")
		}
		if booking.Status == types.BOOKING_COMPLETED {
			return coupons.NewError(coupons.INVALID_STATE, "a completed booking cannot be canceled")
		}
		if booking.CouponID != nil {
			if err := tx.
				Where(&models.CouponRedemption{CouponID: *booking.CouponID, BookingID: booking.ID}).
				Delete(&models.CouponRedemption{}).
				Error; err != nil {
				return err
			}
		}
		if booking.LoyaltyPointsApplied > 0 {
			credit := int64(0)
			if booking.LoyaltyCreditAppliedCents != nil {
				credit = *booking.LoyaltyCreditAppliedCents
			}
			if err := Reverse(tx, booking.UserID, booking.LoyaltyPointsApplied, credit); err != nil {
				return err
			}
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_CANCELED).
			Error; err != nil {
			return err
		}
		booking.Status = types.BOOKING_CANCELED
		return nil
	})
	if err != nil {
		log.Printf("Cancel failed for booking %d: %s\n", bookingID, err.Error())
		return nil, err
	}
	return &booking, nil
}

// MarkPaid transitions a pending booking after a successful charge and
// records the payment intent that settled it.
func (s *Bookings) MarkPaid(ctx context.Context, bookingID uint, paymentIntentID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, types.BOOKING_PENDING).
		Updates(map[string]any{
			"status":            types.BOOKING_PAID,
			"payment_intent_id": paymentIntentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return coupons.NewError(coupons.INVALID_STATE, "booking is not pending")
	}
	return nil
}

// BackfillSnapshots stamps the current settings onto bookings that predate
// snapshotting. Bookings that already carry a snapshot are never touched.
func (s *Bookings) BackfillSnapshots(ctx context.Context, cfg pricing.FeeConfig) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("tax_percentage IS NULL").
		Updates(map[string]any{
			"tax_percentage":                orZeroFloat(cfg.TaxPercentage),
			"stripe_fee_percentage":         orZeroFloat(cfg.StripeFeePercentage),
			"extra_fee_cents":               orZeroInt(cfg.ExtraFeeCents),
			"partner_commission_percentage": orZeroFloat(cfg.PartnerCommissionPercentage),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// The snapshot columns mark a booking as priced, so an absent setting is
// stored as an explicit zero rather than NULL.
func orZeroFloat(v *float64) *float64 {
	if v != nil {
		return v
	}
	zero := 0.0
	return &zero
}

func orZeroInt(v *int64) *int64 {
	if v != nil {
		return v
	}
	zero := int64(0)
	return &zero
}
