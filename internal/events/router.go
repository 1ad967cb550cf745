package events

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts event endpoints. Reads are public, writes are
// restricted to admins.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, authMW, adminMW gin.HandlerFunc) {
	evts := rg.Group("/events")
	{
		evts.GET("", ctrl.List)
		evts.GET("/:id", ctrl.Get)
		evts.GET("/:id/seats", ctrl.Seats)

		evts.POST("", authMW, adminMW, ctrl.Create)
		evts.PUT("/:id", authMW, adminMW, ctrl.Update)
		evts.DELETE("/:id", authMW, adminMW, ctrl.Delete)
	}
}
