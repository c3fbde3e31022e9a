package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

var (
	API_ENV      = os.Getenv("API_ENV")
	GAPI_API_KEY = os.Getenv("GAPI_API_KEY")
)

// Canonical setting keys. The settings table is keyed by these identifiers,
// not by human names, so consumers must go through the constants.
const (
	SETTING_TAX_PERCENTAGE                = "pricing.tax_percentage"
	SETTING_STRIPE_FEE_PERCENTAGE         = "pricing.stripe_fee_percentage"
	SETTING_EXTRA_FEE_CENTS               = "pricing.extra_fee_cents"
	SETTING_PARTNER_COMMISSION_PERCENTAGE = "pricing.partner_commission_percentage"
	SETTING_LOYALTY_POINTS_PER_BOOKING    = "loyalty.points_per_booking"
	SETTING_LOYALTY_CENTS_PER_POINT       = "loyalty.cents_per_point"
)

const (
	SETTING_GROUP_PRICING = "pricing"
	SETTING_GROUP_LOYALTY = "loyalty"
)

const (
	DEFAULT_LOYALTY_POINTS_PER_BOOKING int64 = 10
	DEFAULT_LOYALTY_CENTS_PER_POINT    int64 = 1
)
