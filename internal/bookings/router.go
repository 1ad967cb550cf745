package bookings

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts booking endpoints. Everything requires auth;
// per-event listings and status updates are admin only.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, authMW, adminMW gin.HandlerFunc) {
	b := rg.Group("/bookings", authMW)
	{
		b.POST("", ctrl.Create)
		b.POST("/by-count", ctrl.CreateByCount)
		b.GET("/me", ctrl.ListMine)
		b.GET("/:id", ctrl.Get)
		b.DELETE("/:id", ctrl.Cancel)
		b.PATCH("/:id/status", adminMW, ctrl.UpdateStatus)
	}

	rg.GET("/events/:id/bookings", authMW, adminMW, ctrl.ListForEvent)
}
