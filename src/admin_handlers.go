package main

import (
	"net/http"

	"sbp/src/db"
	"sbp/src/models"
	"sbp/src/pricing"
	"sbp/src/stores"
	"sbp/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/settings", func(ctx *gin.Context) {
			var body types.CreateSettingRequestBody
			err := ctx.ShouldBindJSON(&body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				setting := models.Setting{
					SettingKey:   body.Key,
					SettingValue: types.JSONBAny{Inner: body.Value},
					Group:        body.Group,
				}
				err := tx.
					Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "setting_key"}, {Name: "group"}},
						DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
					}).
					Create(&setting).
					Error
				if err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/settings", func(ctx *gin.Context) {
			var settings []models.Setting
			db := db.GetDb()
			err := db.Find(&settings).Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": settings})
		}).
		GET("/services", func(ctx *gin.Context) {
			db := db.GetDb()
			var services []models.Service
			err := db.
				Model(&models.Service{}).
				Order("created_at DESC").
				Find(&services).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
		}).
		POST("/services", func(ctx *gin.Context) {
			var body types.CreateServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			service := models.Service{
				Name:               body.Name,
				Slug:               slug.Make(body.Name),
				BasePriceCents:     body.BasePriceCents,
				DiscountPercentage: body.DiscountPercentage,
				Active:             true,
			}
			if body.Description != "" {
				service.Description = &body.Description
			}
			if body.Currency != "" {
				service.Currency = body.Currency
			}
			if body.Active != nil {
				service.Active = *body.Active
			}
			db := db.GetDb()
			if err := db.Create(&service).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": service})
		}).
		POST("/bookings/backfill-snapshots", func(ctx *gin.Context) {
			conn := db.GetDb()
			values, err := stores.NewSettings(conn).Values(ctx)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load pricing settings"})
				return
			}
			cfg := pricing.FeeConfigFromSettings(values)
			updated, err := stores.NewBookings(conn).BackfillSnapshots(ctx, cfg)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"updated": updated})
		})
	return g
}
