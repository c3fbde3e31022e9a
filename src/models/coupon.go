package models

import (
	"time"

	"sbp/src/types"

	"github.com/google/uuid"
)

type Coupon struct {
	ID                    uint                     `gorm:"primarykey" json:"id"`
	Code                  string                   `gorm:"uniqueIndex" json:"code"`
	DiscountType          types.CouponDiscountType `json:"discount_type"`
	DiscountValue         float64                  `json:"discount_value"`
	ValidFrom             *time.Time               `json:"valid_from,omitempty"`
	ValidUntil            *time.Time               `json:"valid_until,omitempty"`
	Active                bool                     `gorm:"default:true" json:"active"`
	MaxRedemptions        *int64                   `json:"max_redemptions,omitempty"`
	MaxRedemptionsPerUser *int64                   `json:"max_redemptions_per_user,omitempty"`
	MinBookingAmountCents int64                    `json:"min_booking_amount_cents"`
	AppliesToAllServices  bool                     `gorm:"default:true" json:"applies_to_all_services"`

	Services []*Service `gorm:"many2many:coupon_services;" json:"services,omitempty"`

	types.Timestamps
}

// CouponRedemption records one successful application of a coupon to a
// booking. Rows are created in the same transaction as the booking's coupon
// fields and deleted only when a coupon is removed from a still-pending
// booking.
type CouponRedemption struct {
	ID          uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	CouponID    uint      `gorm:"uniqueIndex:coupon_booking" json:"coupon_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	BookingID   uint      `gorm:"uniqueIndex:coupon_booking" json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`

	Coupon  Coupon  `gorm:"foreignKey:coupon_id" json:"-"`
	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}
