package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any
type JSONBAny struct {
	Inner any
}

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBAny) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a.Inner)
	return string(valueString), err
}
func (a *JSONBAny) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	var inner any
	if err := json.Unmarshal(b, &inner); err != nil {
		return err
	}
	a.Inner = inner
	return nil
}

type Metadata map[string]any

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_PAID      BookingStatus = "paid"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "canceled"
)

type CouponDiscountType string

const (
	COUPON_PERCENTAGE CouponDiscountType = "PERCENTAGE"
	COUPON_AMOUNT     CouponDiscountType = "AMOUNT"
)

type AreaKind string

const (
	AREA_CIRCLE  AreaKind = "circle"
	AREA_POLYGON AreaKind = "polygon"
)

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PricingPreviewRequestBody struct {
	ServiceID                 uint     `json:"service_id" binding:"required"`
	CouponCode                *string  `json:"coupon_code,omitempty" binding:"omitempty,couponcode"`
	LoyaltyPoints             *int64   `json:"loyalty_points,omitempty" binding:"omitempty,min=0"`
	BookingID                 *uint    `json:"booking_id,omitempty"`
	VehicleCount              *int     `json:"vehicle_count,omitempty" binding:"omitempty,min=1"`
	ServicePriceCentsOverride *int64   `json:"service_price_cents_override,omitempty" binding:"omitempty,min=0"`
	Latitude                  *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude                 *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`
}

type CreateBookingRequestBody struct {
	PricingPreviewRequestBody
}

type ApplyCouponRequestBody struct {
	Code string `json:"code" binding:"required,couponcode"`
}

type CreateServiceRequestBody struct {
	Name               string   `json:"name" binding:"required"`
	Description        string   `json:"description,omitempty"`
	BasePriceCents     int64    `json:"base_price_cents" binding:"required,min=1"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty" binding:"omitempty,min=0,max=100"`
	Currency           string   `json:"currency,omitempty"`
	Active             *bool    `json:"active,omitempty"`
}

type GeoPoint struct {
	Lat float64 `json:"lat" binding:"latitude"`
	Lng float64 `json:"lng" binding:"longitude"`
}

type CreateAreaRequestBody struct {
	Name               string     `json:"name" binding:"required"`
	ServiceID          *uint      `json:"service_id,omitempty"`
	Kind               AreaKind   `json:"kind" binding:"required,oneof=circle polygon"`
	CenterLat          *float64   `json:"center_lat,omitempty" binding:"omitempty,latitude"`
	CenterLng          *float64   `json:"center_lng,omitempty" binding:"omitempty,longitude"`
	RadiusM            *float64   `json:"radius_m,omitempty" binding:"omitempty,gt=0"`
	Polygon            []GeoPoint `json:"polygon,omitempty" binding:"omitempty,min=3,dive"`
	PriceCents         *int64     `json:"price_cents,omitempty" binding:"omitempty,min=0"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty" binding:"omitempty,min=0,max=100"`
	Priority           *int       `json:"priority,omitempty"`
}

type CreateCouponRequestBody struct {
	Code                  string             `json:"code" binding:"required,couponcode"`
	DiscountType          CouponDiscountType `json:"discount_type" binding:"required,oneof=PERCENTAGE AMOUNT"`
	DiscountValue         float64            `json:"discount_value" binding:"required,gt=0"`
	ValidFrom             *time.Time         `json:"valid_from,omitempty"`
	ValidUntil            *time.Time         `json:"valid_until,omitempty"`
	MaxRedemptions        *int64             `json:"max_redemptions,omitempty" binding:"omitempty,min=1"`
	MaxRedemptionsPerUser *int64             `json:"max_redemptions_per_user,omitempty" binding:"omitempty,min=1"`
	MinBookingAmountCents int64              `json:"min_booking_amount_cents,omitempty" binding:"omitempty,min=0"`
	AppliesToAllServices  bool               `json:"applies_to_all_services,omitempty"`
	ServiceIDs            []uint             `json:"service_ids,omitempty"`
}

type CreateSettingRequestBody struct {
	Key   string `json:"key" binding:"required"`
	Value any    `json:"value" binding:"required"`
	Group string `json:"group" binding:"required"`
}

type ZoneLookupQuery struct {
	Lat       float64 `form:"lat" binding:"latitude"`
	Lng       float64 `form:"lng" binding:"longitude"`
	ServiceID *uint   `form:"service"`
}

type ZoneRef struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ZoneLookupResponse struct {
	Coordinates      GeoPoint `json:"coordinates"`
	Zone             *ZoneRef `json:"zone"`
	IsSupported      bool     `json:"is_supported"`
	ResolutionMethod string   `json:"resolution_method"`
	Explanation      string   `json:"explanation"`
}
