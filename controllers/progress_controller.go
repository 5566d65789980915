package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Svc *services.ProgressService
}

func NewProgressController(svc *services.ProgressService) *ProgressController {
	return &ProgressController{Svc: svc}
}

func (h *ProgressController) Record(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.ProgressInput
	if !bindJSON(c, &input) {
		return
	}
	rec, err := h.Svc.Record(c.Request.Context(), uid, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GET /progress?from=2025-01-01&to=2025-01-31
func (h *ProgressController) List(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	from, to, err := services.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.Svc.List(c.Request.Context(), uid, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProgressController) Latest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Latest(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *ProgressController) Summary(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	sum, err := h.Svc.Summary(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *ProgressController) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
