package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seatly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) Popular(c *gin.Context) {
	out, err := ctrl.service.PopularEvents(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Popular events fetched", out, nil)
}

func (ctrl *Controller) Revenue(c *gin.Context) {
	out, err := ctrl.service.RevenueByEvent(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Revenue report fetched", out, nil)
}

func (ctrl *Controller) TopUsers(c *gin.Context) {
	out, err := ctrl.service.TopUsers(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Top users fetched", out, nil)
}

func (ctrl *Controller) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	out, err := ctrl.service.SearchRanked(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Search results fetched", out, nil)
}
