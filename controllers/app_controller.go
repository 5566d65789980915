package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type AppController struct {
	Svc *services.AppService
}

func NewAppController(svc *services.AppService) *AppController {
	return &AppController{Svc: svc}
}

// GET /
func (h *AppController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.Health())
}

// GET /version
func (h *AppController) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.Version())
}

// GET /health/ready
func (h *AppController) Ready(c *gin.Context) {
	r, err := h.Svc.Ready(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, r)
		return
	}
	c.JSON(http.StatusOK, r)
}
