package analytics

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts analytics endpoints. Rollups are admin only, the
// ranked search backs the public event search.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, authMW, adminMW gin.HandlerFunc) {
	a := rg.Group("/analytics")
	{
		a.GET("/search", ctrl.Search)

		a.GET("/popular", authMW, adminMW, ctrl.Popular)
		a.GET("/revenue", authMW, adminMW, ctrl.Revenue)
		a.GET("/top-users", authMW, adminMW, ctrl.TopUsers)
	}
}
