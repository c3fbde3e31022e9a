package main

import (
	"net/http"

	"sbp/src/coupons"
	"sbp/src/db"
	"sbp/src/models"
	"sbp/src/stores"
	"sbp/src/types"

	"github.com/gin-gonic/gin"
)

func couponHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/coupon", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ApplyCouponRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			booking, err := stores.NewCoupons(conn).ApplyToBooking(ctx, params.ID, userId, body.Code)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		DELETE("/bookings/:id/coupon", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			if err := stores.NewCoupons(conn).RemoveFromBooking(ctx, params.ID, userId); err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func adminCouponHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/coupons", func(ctx *gin.Context) {
			conn := db.GetDb()
			var list []models.Coupon
			err := conn.
				Model(&models.Coupon{}).
				Preload("Services").
				Order("created_at DESC").
				Find(&list).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
		}).
		POST("/coupons", func(ctx *gin.Context) {
			var body types.CreateCouponRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.DiscountType == types.COUPON_PERCENTAGE && body.DiscountValue > 100 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "percentage discount cannot exceed 100"})
				return
			}
			coupon := models.Coupon{
				Code:                  coupons.NormalizeCode(body.Code),
				DiscountType:          body.DiscountType,
				DiscountValue:         body.DiscountValue,
				ValidFrom:             body.ValidFrom,
				ValidUntil:            body.ValidUntil,
				Active:                true,
				MaxRedemptions:        body.MaxRedemptions,
				MaxRedemptionsPerUser: body.MaxRedemptionsPerUser,
				MinBookingAmountCents: body.MinBookingAmountCents,
				AppliesToAllServices:  body.AppliesToAllServices || len(body.ServiceIDs) == 0,
			}
			conn := db.GetDb()
			if len(body.ServiceIDs) > 0 {
				var services []*models.Service
				if err := conn.Where("id IN ?", body.ServiceIDs).Find(&services).Error; err != nil {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
				coupon.Services = services
			}
			if err := conn.Create(&coupon).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": coupon})
		}).
		PUT("/coupons/:id/deactivate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			res := conn.
				Model(&models.Coupon{}).
				Where(&models.Coupon{ID: params.ID}).
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
