package controllers

import (
	"net/http"

	"github.com/mazn1600/SmartBite/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Svc: svc}
}

// GET /users/me
func (h *UserController) GetProfile(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PUT /users/me
func (h *UserController) UpdateProfile(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := h.Svc.Update(c.Request.Context(), uid, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PUT /users/me/password
func (h *UserController) ChangePassword(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// PUT /users/me/profile-image  { "image_base64": "data:image/...;base64,..." }
func (h *UserController) UploadProfileImage(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.ProfileImageInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := h.Svc.UpdateProfileImage(c.Request.Context(), uid, input.ImageBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DELETE /users/me
func (h *UserController) Deactivate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Svc.Deactivate(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}
