package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts auth endpoints under the given group.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, authMiddleware gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", ctrl.Register)
		authGroup.POST("/login", ctrl.Login)
		authGroup.POST("/refresh", ctrl.Refresh)
		authGroup.GET("/me", authMiddleware, ctrl.Profile)
	}
}
