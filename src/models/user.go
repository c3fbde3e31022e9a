package models

import "sbp/src/types"

type User struct {
	ID                    uint            `gorm:"primarykey" json:"id"`
	Name                  string          `json:"name,omitempty"`
	Email                 string          `json:"email,omitempty"`
	Role                  string          `json:"role,omitempty"`
	UID                   string          `json:"uid,omitempty"`
	LoyaltyRedeemedPoints int64           `json:"loyalty_redeemed_points"`
	LoyaltyCreditCents    int64           `json:"loyalty_credit_cents"`
	Metadata              *types.Metadata `gorm:"type:jsonb" json:"-"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
