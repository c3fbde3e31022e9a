package models

import "sbp/src/types"

// Area is a geo-fenced region that may override a service's price or
// discount within its bounds. ServiceID nil means the area applies to
// every service.
type Area struct {
	ID                 uint             `gorm:"primarykey" json:"id"`
	Name               string           `json:"name,omitempty"`
	Code               string           `gorm:"uniqueIndex" json:"code,omitempty"`
	ServiceID          *uint            `json:"service_id,omitempty"`
	Kind               types.AreaKind   `gorm:"default:'circle'" json:"kind,omitempty"`
	CenterLat          *float64         `json:"center_lat,omitempty"`
	CenterLng          *float64         `json:"center_lng,omitempty"`
	RadiusM            *float64         `json:"radius_m,omitempty"`
	Polygon            types.JSONBArray `gorm:"type:jsonb" json:"polygon,omitempty"`
	PriceCents         *int64           `json:"price_cents,omitempty"`
	DiscountPercentage *float64         `json:"discount_percentage,omitempty"`
	Priority           *int             `json:"priority,omitempty"`
	Active             bool             `gorm:"default:true" json:"active"`

	Service *Service `gorm:"foreignKey:service_id" json:"service,omitempty"`

	types.Timestamps
}
