package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	Favorites *services.FavoriteService
}

func NewFavoriteController(favorites *services.FavoriteService) *FavoriteController {
	return &FavoriteController{Favorites: favorites}
}

// POST /favorites  { "food_id": "..." }
func (h *FavoriteController) Add(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.FavoriteInput
	if !bindJSON(c, &input) {
		return
	}
	fav, err := h.Favorites.Add(c.Request.Context(), uid, input.FoodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (h *FavoriteController) List(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	favs, err := h.Favorites.List(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

// DELETE /favorites/:foodId
func (h *FavoriteController) Remove(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	foodID, ok := uuidParam(c, "foodId")
	if !ok {
		return
	}
	if err := h.Favorites.Remove(c.Request.Context(), uid, foodID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
