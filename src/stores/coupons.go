package stores

import (
	"context"
	"errors"
	"log"

	"sbp/src/coupons"
	"sbp/src/models"
	"sbp/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Coupons struct {
	db *gorm.DB
}

func NewCoupons(db *gorm.DB) *Coupons {
	return &Coupons{db: db}
}

func (s *Coupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where(&models.Coupon{Code: coupons.NormalizeCode(code)}).
		Preload("Services").
		First(&coupon).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *Coupons) RedemptionCounts(ctx context.Context, couponID uint, userID uint) (int64, int64, error) {
	return redemptionCounts(s.db.WithContext(ctx), couponID, userID)
}

func redemptionCounts(tx *gorm.DB, couponID uint, userID uint) (int64, int64, error) {
	var total, user int64
	if err := tx.
		Model(&models.CouponRedemption{}).
		Where(&models.CouponRedemption{CouponID: couponID}).
		Count(&total).
		Error; err != nil {
		return 0, 0, err
	}
	if err := tx.
		Model(&models.CouponRedemption{}).
		Where(&models.CouponRedemption{CouponID: couponID, UserID: userID}).
		Count(&user).
		Error; err != nil {
		return 0, 0, err
	}
	return total, user, nil
}

// ApplyToBooking runs the whole read-check-write sequence in one
// transaction with the coupon row locked, so two concurrent requests cannot
// both pass the cap check and race past it. The coupon fields on the booking
// and the redemption row are written together or not at all.
func (s *Coupons) ApplyToBooking(ctx context.Context, bookingID uint, userID uint, code string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingID, UserID: userID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return coupons.NewError(coupons.INVALID_STATE, "booking not found")
			}
			return err
		}
		if booking.Status != types.BOOKING_PENDING {
			return coupons.NewError(coupons.INVALID_STATE, "coupon can only be applied to a pending booking")
		}
		if booking.CouponID != nil {
			return coupons.NewError(coupons.INVALID_STATE, "booking already has a coupon applied")
		}

		var coupon models.Coupon
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Coupon{Code: coupons.NormalizeCode(code)}).
			First(&coupon).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return coupons.NewError(coupons.NOT_FOUND, "coupon not found")
			}
			return err
		}
		if err := tx.Model(&coupon).Association("Services").Find(&coupon.Services); err != nil {
			return err
		}

		total, user, err := redemptionCounts(tx, coupon.ID, userID)
		if err != nil {
			return err
		}
		now := tx.NowFunc()
		if verr := coupons.Validate(&coupon, now, booking.DiscountedPriceCents, booking.ServiceID, total, user); verr != nil {
			return verr
		}
		discount := coupons.DiscountCents(&coupon, booking.DiscountedPriceCents)

		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{
				"coupon_code":           coupon.Code,
				"coupon_id":             coupon.ID,
				"coupon_discount_cents": discount,
			}).Error; err != nil {
			return err
		}
		redemption := models.CouponRedemption{
			CouponID:    coupon.ID,
			UserID:      userID,
			BookingID:   booking.ID,
			AmountCents: discount,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}
		booking.CouponCode = &coupon.Code
		booking.CouponID = &coupon.ID
		booking.CouponDiscountCents = &discount
		return nil
	})
	if err != nil {
		log.Printf("ApplyToBooking failed for booking %d: %s\n", bookingID, err.Error())
		return nil, err
	}
	return &booking, nil
}

// RemoveFromBooking clears the coupon fields on a still-pending booking and
// deletes the matching redemption row, restoring the caps.
func (s *Coupons) RemoveFromBooking(ctx context.Context, bookingID uint, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingID, UserID: userID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return coupons.NewError(coupons.INVALID_STATE, "booking not found")
			}
			return err
		}
		if booking.Status != types.BOOKING_PENDING {
			return coupons.NewError(coupons.INVALID_STATE, "coupon can only be removed from a pending booking")
		}
		if booking.CouponID == nil {
			return coupons.NewError(coupons.INVALID_STATE, "booking has no coupon applied")
		}
		if err := tx.
			Where(&models.CouponRedemption{CouponID: *booking.CouponID, BookingID: booking.ID}).
			Delete(&models.CouponRedemption{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{
				"coupon_code":           nil,
				"coupon_id":             nil,
				"coupon_discount_cents": nil,
			}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("RemoveFromBooking failed for booking %d: %s\n", bookingID, err.Error())
	}
	return err
}
