package main

import (
	"net/http"

	"sbp/src/db"
	"sbp/src/loyalty"
	"sbp/src/stores"

	"github.com/gin-gonic/gin"
)

func loyaltyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/loyalty/summary", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			conn := db.GetDb()
			values, err := stores.NewSettings(conn).Values(ctx)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load loyalty settings"})
				return
			}
			cfg := loyalty.ConfigFromSettings(values)
			summary, err := stores.NewLoyalty(conn).Summary(ctx, userId, cfg)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": summary})
		})
	return g
}
