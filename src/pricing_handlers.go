package main

import (
	"errors"
	"log"
	"net/http"

	"sbp/src/coupons"
	"sbp/src/db"
	"sbp/src/lib"
	"sbp/src/models"
	"sbp/src/pricing"
	"sbp/src/stores"
	"sbp/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newPricingEngine(conn *gorm.DB) *pricing.Engine {
	return pricing.NewEngine(
		stores.NewCatalog(conn),
		stores.NewZones(conn),
		stores.NewCoupons(conn),
		stores.NewLoyalty(conn),
		stores.NewSettings(conn),
	)
}

// respondDomainError translates pricing and coupon failures into their
// suggested HTTP statuses. Anything else is treated as unprocessable.
func respondDomainError(ctx *gin.Context, err error) {
	var perr *pricing.Error
	if errors.As(err, &perr) {
		ctx.JSON(perr.Status, gin.H{"error": perr.Message, "code": perr.Code})
		return
	}
	var cerr *coupons.Error
	if errors.As(err, &cerr) {
		ctx.JSON(cerr.Status, gin.H{"error": cerr.Message, "code": cerr.Code})
		return
	}
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func inputFromBody(ctx *gin.Context, body *types.PricingPreviewRequestBody) pricing.Input {
	return pricing.Input{
		UserID:                    ctx.GetUint("id"),
		ServiceID:                 body.ServiceID,
		CouponCode:                body.CouponCode,
		LoyaltyPoints:             body.LoyaltyPoints,
		BookingID:                 body.BookingID,
		VehicleCount:              body.VehicleCount,
		ServicePriceCentsOverride: body.ServicePriceCentsOverride,
		Latitude:                  body.Latitude,
		Longitude:                 body.Longitude,
	}
}

func pricingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/pricing/preview", func(ctx *gin.Context) {
			var body types.PricingPreviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			engine := newPricingEngine(conn)
			breakdown, err := engine.Calculate(ctx, inputFromBody(ctx, &body))
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": breakdown})
		})
	return g
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			bookings, err := stores.NewBookings(conn).ListForUser(ctx, userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			booking, err := stores.NewBookings(conn).Get(ctx, params.ID, userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if booking == nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			engine := newPricingEngine(conn)
			in := inputFromBody(ctx, &body.PricingPreviewRequestBody)
			breakdown, err := engine.Calculate(ctx, in)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			booking, err := stores.NewBookings(conn).CreateWithSnapshot(ctx, in, breakdown)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}

			var clientSecret *string
			if breakdown.FinalPriceCents > 0 {
				var svc models.Service
				currency := "usd"
				if err := conn.Model(&models.Service{}).Where(&models.Service{ID: in.ServiceID}).First(&svc).Error; err == nil && svc.Currency != "" {
					currency = svc.Currency
				}
				pi, err := lib.CreateBookingPaymentIntent(ctx, breakdown.FinalPriceCents, currency, booking.ID)
				if err != nil {
					log.Printf("Error creating PaymentIntent for booking %d: %s\n", booking.ID, err.Error())
				} else {
					clientSecret = &pi.ClientSecret
					if err := conn.
						Model(&models.Booking{}).
						Where(&models.Booking{ID: booking.ID}).
						Update("payment_intent_id", pi.ID).
						Error; err != nil {
						log.Printf("Error saving PaymentIntent id: %s\n", err.Error())
					}
				}
			}

			go lib.KafkaProduceMessage("sbp-api", "booking-priced", map[string]any{
				"booking_id":        booking.ID,
				"user_id":           userId,
				"service_id":        in.ServiceID,
				"final_price_cents": breakdown.FinalPriceCents,
			})
			if breakdown.CouponID != nil {
				go lib.KafkaProduceMessage("sbp-api", "coupon-applied", map[string]any{
					"booking_id":     booking.ID,
					"coupon_id":      *breakdown.CouponID,
					"discount_cents": breakdown.CouponDiscountCents,
				})
			}

			ctx.JSON(http.StatusCreated, gin.H{
				"data":          booking,
				"breakdown":     breakdown,
				"client_secret": clientSecret,
			})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			booking, err := stores.NewBookings(conn).Cancel(ctx, params.ID, userId)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
