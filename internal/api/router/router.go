package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kedr891/metal-rates-service/internal/api/handler"
	"github.com/kedr891/metal-rates-service/internal/api/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	rateHandler *handler.RateHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/metal-rates", rateHandler.GetRatesSummary)

		admin := v1.Group("/admin")
		{
			admin.POST("/metal-rates",
				authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(),
				rateHandler.UpdateMetalRate)
			// Поток открывается через EventSource - токен допускается в query
			admin.GET("/metal-rates/stream",
				authMiddleware.RequireStreamAuth(), authMiddleware.RequireAdmin(),
				rateHandler.StreamRateUpdates)
		}
	}
}
