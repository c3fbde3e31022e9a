package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"sbp/src/config"
	"sbp/src/db"
	"sbp/src/geo"
	"sbp/src/lib"
	"sbp/src/models"
	"sbp/src/stores"
	"sbp/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

const zoneLookupCacheTTL = 5 * time.Minute

func zoneLookupCacheKey(q *types.ZoneLookupQuery) string {
	svc := uint(0)
	if q.ServiceID != nil {
		svc = *q.ServiceID
	}
	// Exact coordinates, so a cached answer never leaks across a zone
	// boundary to a nearby point.
	return fmt.Sprintf("zone-lookup:%d:%v:%v", svc, q.Lat, q.Lng)
}

func resolveZoneLookup(ctx *gin.Context, q *types.ZoneLookupQuery) (*types.ZoneLookupResponse, error) {
	conn := db.GetDb()
	zs := stores.NewZones(conn)
	var zones []geo.Zone
	var err error
	if q.ServiceID != nil {
		zones, err = zs.ZonesForService(ctx, *q.ServiceID)
	} else {
		zones, err = zs.AllZones(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := types.ZoneLookupResponse{
		Coordinates:      types.GeoPoint{Lat: q.Lat, Lng: q.Lng},
		ResolutionMethod: "none",
	}
	z := geo.Resolve(zones, geo.Point{Lat: q.Lat, Lng: q.Lng})
	if z == nil {
		resp.Explanation = "The location is outside every service area."
		if config.GAPI_API_KEY != "" {
			if addr := lib.ReverseGeocode(ctx, q.Lat, q.Lng); addr != "" {
				resp.Explanation = fmt.Sprintf("%s is outside every service area.", addr)
			}
		}
		return &resp, nil
	}
	resp.IsSupported = true
	resp.ResolutionMethod = string(z.Kind)
	resp.Zone = &types.ZoneRef{ID: z.ID, Code: z.Code, Name: z.Name}
	resp.Explanation = fmt.Sprintf("The location falls inside the %s area.", z.Name)
	if config.GAPI_API_KEY != "" {
		if addr := lib.ReverseGeocode(ctx, q.Lat, q.Lng); addr != "" {
			resp.Explanation = fmt.Sprintf("%s falls inside the %s area.", addr, z.Name)
		}
	}
	return &resp, nil
}

func areaHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/zones/lookup", func(ctx *gin.Context) {
			var query types.ZoneLookupQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rdb := lib.GetRedisClient()
			cacheKey := zoneLookupCacheKey(&query)
			if rdb != nil {
				if cached, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
					var resp types.ZoneLookupResponse
					if err := json.Unmarshal([]byte(cached), &resp); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": resp})
						return
					}
				}
			}
			resp, err := resolveZoneLookup(ctx, &query)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if rdb != nil {
				if raw, err := json.Marshal(resp); err == nil {
					if err := rdb.Set(ctx, cacheKey, raw, zoneLookupCacheTTL).Err(); err != nil {
						log.Printf("Error caching zone lookup: %s\n", err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": resp})
		})
	return g
}

func adminAreaHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/areas", func(ctx *gin.Context) {
			conn := db.GetDb()
			var areas []models.Area
			err := conn.
				Model(&models.Area{}).
				Preload("Service").
				Order("created_at DESC").
				Find(&areas).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": areas, "count": len(areas)})
		}).
		POST("/areas", func(ctx *gin.Context) {
			var body types.CreateAreaRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.Kind == types.AREA_CIRCLE && (body.CenterLat == nil || body.CenterLng == nil || body.RadiusM == nil) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "a circle area needs center_lat, center_lng and radius_m"})
				return
			}
			if body.Kind == types.AREA_POLYGON && len(body.Polygon) < 3 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "a polygon area needs at least 3 vertices"})
				return
			}
			area := models.Area{
				Name:               body.Name,
				Code:               slug.Make(body.Name),
				ServiceID:          body.ServiceID,
				Kind:               body.Kind,
				CenterLat:          body.CenterLat,
				CenterLng:          body.CenterLng,
				RadiusM:            body.RadiusM,
				PriceCents:         body.PriceCents,
				DiscountPercentage: body.DiscountPercentage,
				Priority:           body.Priority,
				Active:             true,
			}
			if body.Kind == types.AREA_POLYGON {
				poly := types.JSONBArray{}
				for _, p := range body.Polygon {
					poly = append(poly, map[string]any{"lat": p.Lat, "lng": p.Lng})
				}
				area.Polygon = poly
			}
			conn := db.GetDb()
			if err := conn.Create(&area).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": area})
		}).
		PUT("/areas/:id/deactivate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			res := conn.
				Model(&models.Area{}).
				Where(&models.Area{ID: params.ID}).
				Update("active", false)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
