package models

import "sbp/src/types"

type Service struct {
	ID                 uint         `gorm:"primarykey" json:"id"`
	Name               string       `json:"name,omitempty"`
	Slug               string       `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description        *string      `json:"description,omitempty"`
	BasePriceCents     int64        `json:"base_price_cents"`
	DiscountPercentage *float64     `json:"discount_percentage,omitempty"`
	Currency           string       `gorm:"default:'usd'" json:"currency,omitempty"`
	Active             bool         `gorm:"default:true" json:"active"`
	Attributes         *types.JSONB `gorm:"type:jsonb" json:"attributes,omitempty"`

	Areas []Area `gorm:"foreignKey:service_id" json:"areas,omitempty"`

	types.Timestamps
}
