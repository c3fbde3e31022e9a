package pricing

import (
	"context"
	"time"

	"sbp/src/coupons"
	"sbp/src/geo"
	"sbp/src/loyalty"
	"sbp/src/models"
)

// Collaborator interfaces. The engine only reads through these; every write
// (redemption rows, loyalty increments, booking snapshots) belongs to the
// commit path, which keeps Calculate side-effect-free and safe to retry.

type Catalog interface {
	// GetService returns nil when no such service exists.
	GetService(ctx context.Context, id uint) (*models.Service, error)
}

type ZoneSource interface {
	// ZonesForService returns the active zones scoped to the service plus
	// the global ones.
	ZonesForService(ctx context.Context, serviceID uint) ([]geo.Zone, error)
}

type CouponSource interface {
	// FindByCode returns nil when no coupon matches the normalized code.
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	RedemptionCounts(ctx context.Context, couponID uint, userID uint) (total int64, user int64, err error)
}

type LoyaltySource interface {
	Summary(ctx context.Context, userID uint, cfg loyalty.Config) (loyalty.Summary, error)
}

type SettingsSource interface {
	// Values returns every admin setting keyed by its canonical key.
	Values(ctx context.Context) (map[string]any, error)
}

type Input struct {
	UserID                    uint
	ServiceID                 uint
	CouponCode                *string
	LoyaltyPoints             *int64
	BookingID                 *uint
	VehicleCount              *int
	ServicePriceCentsOverride *int64
	Latitude                  *float64
	Longitude                 *float64
}

type Breakdown struct {
	BasePriceCents            int64    `json:"base_price_cents"`
	DiscountPercentage        float64  `json:"discount_percentage"`
	DiscountedPriceCents      int64    `json:"discounted_price_cents"`
	CouponCode                *string  `json:"coupon_code"`
	CouponID                  *uint    `json:"coupon_id,omitempty"`
	CouponDiscountCents       int64    `json:"coupon_discount_cents"`
	LoyaltyPointsApplied      int64    `json:"loyalty_points_applied"`
	LoyaltyCreditAppliedCents int64    `json:"loyalty_credit_applied_cents"`
	TaxPercentage             *float64 `json:"tax_percentage"`
	StripeFeePercentage       *float64 `json:"stripe_fee_percentage"`
	ExtraFeeCents             *int64   `json:"extra_fee_cents"`
	FinalPriceCents           int64    `json:"final_price_cents"`
	AreaID                    *uint    `json:"area_id"`
	AreaName                  *string  `json:"area_name"`

	// Carried for the snapshot; not part of the customer-facing quote.
	PartnerCommissionPercentage *float64 `json:"-"`

	// Conversion rule this quote was computed with. The commit path re-derives
	// availability under a row lock with the same rule.
	LoyaltyConfig loyalty.Config `json:"-"`
}

type Engine struct {
	catalog  Catalog
	zones    ZoneSource
	coupons  CouponSource
	loyalty  LoyaltySource
	settings SettingsSource
	now      func() time.Time
}

func NewEngine(catalog Catalog, zones ZoneSource, couponSrc CouponSource, loyaltySrc LoyaltySource, settings SettingsSource) *Engine {
	return &Engine{
		catalog:  catalog,
		zones:    zones,
		coupons:  couponSrc,
		loyalty:  loyaltySrc,
		settings: settings,
		now:      time.Now,
	}
}

// NewEngineAt is NewEngine with an injected clock, for tests.
func NewEngineAt(catalog Catalog, zones ZoneSource, couponSrc CouponSource, loyaltySrc LoyaltySource, settings SettingsSource, now func() time.Time) *Engine {
	e := NewEngine(catalog, zones, couponSrc, loyaltySrc, settings)
	e.now = now
	return e
}

// Calculate runs the pricing pipeline. The step order is load-bearing: any
// reordering silently changes money amounts. A failure at any step aborts
// the whole computation; partial breakdowns are never returned.
func (e *Engine) Calculate(ctx context.Context, in Input) (*Breakdown, error) {
	// 1. Resolve the service and the effective unit price.
	svc, err := e.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil || !svc.Active {
		return nil, NewError(SERVICE_NOT_FOUND, "service not found or inactive")
	}
	unitPrice := svc.BasePriceCents
	if in.ServicePriceCentsOverride != nil {
		if *in.ServicePriceCentsOverride < 0 {
			return nil, NewError(INVALID_OVERRIDE, "price override must not be negative")
		}
		unitPrice = *in.ServicePriceCentsOverride
	}
	discountPct := 0.0
	if svc.DiscountPercentage != nil {
		discountPct = *svc.DiscountPercentage
	}

	// 2. Area/zone override, when coordinates were supplied. An explicit
	// price override from the caller beats the zone price; the zone discount
	// still applies.
	var areaID *uint
	var areaName *string
	if in.Latitude != nil && in.Longitude != nil {
		zones, err := e.zones.ZonesForService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if z := geo.Resolve(zones, geo.Point{Lat: *in.Latitude, Lng: *in.Longitude}); z != nil {
			if z.PriceCents != nil && in.ServicePriceCentsOverride == nil {
				unitPrice = *z.PriceCents
			}
			if z.DiscountPercentage != nil {
				discountPct = *z.DiscountPercentage
			}
			id := z.ID
			name := z.Name
			areaID = &id
			areaName = &name
		}
	}

	vehicles := 1
	if in.VehicleCount != nil && *in.VehicleCount > 1 {
		vehicles = *in.VehicleCount
	}
	basePrice := unitPrice * int64(vehicles)

	// 3. Service/zone percentage discount.
	discounted := CalculateDiscountedPrice(basePrice, discountPct)

	// Settings snapshot for this computation. Loaded once and reused for the
	// loyalty conversion and the fee surcharges below.
	values, err := e.settings.Values(ctx)
	if err != nil {
		return nil, NewError(SETTINGS_UNAVAILABLE, "could not load pricing settings")
	}
	feeCfg := FeeConfigFromSettings(values)
	loyaltyCfg := loyalty.ConfigFromSettings(values)

	// 4. Coupon validation + discount, side-effect-free.
	var couponDiscount int64
	var couponCode *string
	var couponID *uint
	if in.CouponCode != nil && *in.CouponCode != "" {
		code := coupons.NormalizeCode(*in.CouponCode)
		c, err := e.coupons.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, coupons.NewError(coupons.NOT_FOUND, "coupon not found")
		}
		total, user, err := e.coupons.RedemptionCounts(ctx, c.ID, in.UserID)
		if err != nil {
			return nil, err
		}
		if verr := coupons.Validate(c, e.now(), discounted, in.ServiceID, total, user); verr != nil {
			return nil, verr
		}
		couponDiscount = coupons.DiscountCents(c, discounted)
		couponCode = &c.Code
		id := c.ID
		couponID = &id
	}

	// 5. Loyalty credit, clamped against availability and the remaining net.
	var pointsApplied, creditApplied int64
	if in.LoyaltyPoints != nil && *in.LoyaltyPoints > 0 {
		summary, err := e.loyalty.Summary(ctx, in.UserID, loyaltyCfg)
		if err != nil {
			return nil, err
		}
		pointsApplied, creditApplied = loyalty.ClampRedemption(*in.LoyaltyPoints, summary.AvailablePoints, discounted, couponDiscount, loyaltyCfg)
	}

	// 6–7. Net out the deductions and add the fee surcharges.
	final := ApplyCouponAndCredits(basePrice, discountPct, couponDiscount, creditApplied, feeCfg.Adjustments())

	return &Breakdown{
		BasePriceCents:              basePrice,
		DiscountPercentage:          discountPct,
		DiscountedPriceCents:        discounted,
		CouponCode:                  couponCode,
		CouponID:                    couponID,
		CouponDiscountCents:         couponDiscount,
		LoyaltyPointsApplied:        pointsApplied,
		LoyaltyCreditAppliedCents:   creditApplied,
		TaxPercentage:               feeCfg.TaxPercentage,
		StripeFeePercentage:         feeCfg.StripeFeePercentage,
		ExtraFeeCents:               feeCfg.ExtraFeeCents,
		FinalPriceCents:             final,
		AreaID:                      areaID,
		AreaName:                    areaName,
		PartnerCommissionPercentage: feeCfg.PartnerCommissionPercentage,
		LoyaltyConfig:               loyaltyCfg,
	}, nil
}
