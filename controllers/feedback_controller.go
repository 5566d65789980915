package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	Svc *services.FeedbackService
}

func NewFeedbackController(svc *services.FeedbackService) *FeedbackController {
	return &FeedbackController{Svc: svc}
}

// POST /feedback
func (h *FeedbackController) Submit(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.FeedbackInput
	if !bindJSON(c, &input) {
		return
	}
	fb, err := h.Svc.Submit(c.Request.Context(), uid, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// GET /feedback/me
func (h *FeedbackController) Mine(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Svc.Mine(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
