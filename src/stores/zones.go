package stores

import (
	"context"

	"sbp/src/geo"
	"sbp/src/models"
	"sbp/src/types"

	"gorm.io/gorm"
)

type Zones struct {
	db *gorm.DB
}

func NewZones(db *gorm.DB) *Zones {
	return &Zones{db: db}
}

// ZonesForService loads the active areas scoped to the service plus the
// global ones, in the geometry form the resolver consumes. Both the pricing
// pipeline and the public zone lookup go through this, so "serviceable" and
// "priced" can never disagree.
func (z *Zones) ZonesForService(ctx context.Context, serviceID uint) ([]geo.Zone, error) {
	var areas []models.Area
	q := z.db.WithContext(ctx).
		Model(&models.Area{}).
		Where("active = ?", true)
	if serviceID > 0 {
		q = q.Where("service_id = ? OR service_id IS NULL", serviceID)
	}
	if err := q.Find(&areas).Error; err != nil {
		return nil, err
	}
	zones := make([]geo.Zone, 0, len(areas))
	for i := range areas {
		zones = append(zones, ZoneFromArea(&areas[i]))
	}
	return zones, nil
}

// AllZones is ZonesForService without the service scope, for the public
// serviceability check.
func (z *Zones) AllZones(ctx context.Context) ([]geo.Zone, error) {
	return z.ZonesForService(ctx, 0)
}

func ZoneFromArea(a *models.Area) geo.Zone {
	zone := geo.Zone{
		ID:                 a.ID,
		Name:               a.Name,
		Code:               a.Code,
		Kind:               geo.ZoneKind(a.Kind),
		Priority:           a.Priority,
		PriceCents:         a.PriceCents,
		DiscountPercentage: a.DiscountPercentage,
		CreatedAt:          a.CreatedAt,
	}
	if a.CenterLat != nil {
		zone.CenterLat = *a.CenterLat
	}
	if a.CenterLng != nil {
		zone.CenterLng = *a.CenterLng
	}
	if a.RadiusM != nil {
		zone.RadiusM = *a.RadiusM
	}
	zone.Polygon = decodePolygon(a.Polygon)
	return zone
}

func decodePolygon(raw types.JSONBArray) []geo.Point {
	points := make([]geo.Point, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		lat, latOk := m["lat"].(float64)
		lng, lngOk := m["lng"].(float64)
		if latOk && lngOk {
			points = append(points, geo.Point{Lat: lat, Lng: lng})
		}
	}
	return points
}
