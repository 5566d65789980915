package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type StoreController struct {
	Svc *services.StoreService
}

func NewStoreController(svc *services.StoreService) *StoreController {
	return &StoreController{Svc: svc}
}

// GET /stores?include_inactive=true
func (h *StoreController) List(c *gin.Context) {
	stores, err := h.Svc.List(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *StoreController) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	st, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoreController) Create(c *gin.Context) {
	var input services.StoreInput
	if !bindJSON(c, &input) {
		return
	}
	st, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *StoreController) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input services.StoreInput
	if !bindJSON(c, &input) {
		return
	}
	st, err := h.Svc.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StoreController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /stores/:id/prices
func (h *StoreController) Prices(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	prices, err := h.Svc.Prices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// PUT /stores/:id/prices  { "food_id": "...", "price": "12.50", "unit": "kg" }
func (h *StoreController) SetPrice(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input services.PriceInput
	if !bindJSON(c, &input) {
		return
	}
	price, err := h.Svc.SetPrice(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}
