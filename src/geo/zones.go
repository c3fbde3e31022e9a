package geo

import (
	"math"
	"sort"
	"time"
)

const earthRadiusM = 6371000.0

type Point struct {
	Lat float64
	Lng float64
}

type ZoneKind string

const (
	ZoneCircle  ZoneKind = "circle"
	ZonePolygon ZoneKind = "polygon"
)

// Zone is the geometry view of a pricing area. Price/discount overrides ride
// along so the resolver can hand the winning zone straight to the pricing
// pipeline.
type Zone struct {
	ID                 uint
	Name               string
	Code               string
	Kind               ZoneKind
	CenterLat          float64
	CenterLng          float64
	RadiusM            float64
	Polygon            []Point
	Priority           *int
	PriceCents         *int64
	DiscountPercentage *float64
	CreatedAt          time.Time
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// pointInPolygon is a standard ray-casting containment test.
func pointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Lat > p.Lat) != (pj.Lat > p.Lat) {
			x := (pj.Lng-pi.Lng)*(p.Lat-pi.Lat)/(pj.Lat-pi.Lat) + pi.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Contains reports whether the point falls inside the zone's boundary.
func (z Zone) Contains(p Point) bool {
	switch z.Kind {
	case ZonePolygon:
		return pointInPolygon(p, z.Polygon)
	default:
		if z.RadiusM <= 0 {
			return false
		}
		return HaversineMeters(Point{Lat: z.CenterLat, Lng: z.CenterLng}, p) <= z.RadiusM
	}
}

// AreaSquareMeters estimates the zone's footprint, used only to rank
// overlapping zones by specificity.
func (z Zone) AreaSquareMeters() float64 {
	switch z.Kind {
	case ZonePolygon:
		return polygonAreaSquareMeters(z.Polygon)
	default:
		return math.Pi * z.RadiusM * z.RadiusM
	}
}

// polygonAreaSquareMeters applies the shoelace formula on an equirectangular
// projection around the polygon's mean latitude. Good enough for ranking;
// not a survey-grade area.
func polygonAreaSquareMeters(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var meanLat float64
	for _, p := range poly {
		meanLat += p.Lat
	}
	meanLat /= float64(len(poly))
	mPerDegLat := 2 * math.Pi * earthRadiusM / 360
	mPerDegLng := mPerDegLat * math.Cos(meanLat*math.Pi/180)

	var sum float64
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		xi, yi := poly[i].Lng*mPerDegLng, poly[i].Lat*mPerDegLat
		xj, yj := poly[j].Lng*mPerDegLng, poly[j].Lat*mPerDegLat
		sum += xj*yi - xi*yj
		j = i
	}
	return math.Abs(sum) / 2
}

// Resolve returns the single authoritative zone for the point, or nil when
// no zone contains it. When several zones contain the point the most
// specific (smallest) zone wins; remaining ties fall back to the explicit
// priority field, then creation order, then id, so the answer is stable
// across calls.
func Resolve(zones []Zone, p Point) *Zone {
	var matches []Zone
	for _, z := range zones {
		if z.Contains(p) {
			matches = append(matches, z)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		ai, aj := matches[i].AreaSquareMeters(), matches[j].AreaSquareMeters()
		if ai != aj {
			return ai < aj
		}
		pi, pj := priorityOf(matches[i]), priorityOf(matches[j])
		if pi != pj {
			return pi < pj
		}
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	winner := matches[0]
	return &winner
}

func priorityOf(z Zone) int {
	if z.Priority == nil {
		return math.MaxInt32
	}
	return *z.Priority
}
