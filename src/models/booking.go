package models

import "sbp/src/types"

type Booking struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	UserID       uint                `json:"user_id,omitempty"`
	ServiceID    uint                `json:"service_id,omitempty"`
	Status       types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	VehicleCount int                 `gorm:"default:1" json:"vehicle_count,omitempty"`
	Latitude     *float64            `json:"latitude,omitempty"`
	Longitude    *float64            `json:"longitude,omitempty"`
	AreaID       *uint               `json:"area_id,omitempty"`
	Currency     string              `gorm:"default:'usd'" json:"currency,omitempty"`

	BasePriceCents       int64   `json:"base_price_cents"`
	DiscountPercentage   float64 `json:"discount_percentage"`
	DiscountedPriceCents int64   `json:"discounted_price_cents"`

	// Pricing snapshot. Null until the booking first reaches a
	// price-determining state; immutable afterwards, so historical invoices
	// never track later changes to the global settings.
	TaxPercentage               *float64 `json:"tax_percentage,omitempty"`
	StripeFeePercentage         *float64 `json:"stripe_fee_percentage,omitempty"`
	ExtraFeeCents               *int64   `json:"extra_fee_cents,omitempty"`
	PartnerCommissionPercentage *float64 `json:"partner_commission_percentage,omitempty"`
	CouponCode                  *string  `json:"coupon_code,omitempty"`
	CouponID                    *uint    `json:"coupon_id,omitempty"`
	CouponDiscountCents         *int64   `json:"coupon_discount_cents,omitempty"`
	LoyaltyPointsApplied        int64    `json:"loyalty_points_applied,omitempty"`
	LoyaltyCreditAppliedCents   *int64   `json:"loyalty_credit_applied_cents,omitempty"`
	CashAmountCents             *int64   `json:"cash_amount_cents,omitempty"`

	PaymentIntentID *string `json:"-"`

	User    *User    `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Service *Service `gorm:"foreignKey:service_id" json:"service,omitempty"`
	Area    *Area    `gorm:"foreignKey:area_id" json:"area,omitempty"`

	types.Timestamps
}

// HasSnapshot reports whether the pricing snapshot has been written.
func (b *Booking) HasSnapshot() bool {
	return b.TaxPercentage != nil
}
