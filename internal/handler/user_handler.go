package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/address"
)

// UserHandler serves public user data and profiles.
type UserHandler struct {
	profiles *service.ProfileService
}

func NewUserHandler(profiles *service.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.profiles.User(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, u)
}

// GET /api/users/:id/profile
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, p)
}

// UpdateAddresses replaces the caller's addresses.
// PUT /api/users/me/addresses
func (h *UserHandler) UpdateAddresses(c *gin.Context) {
	var req struct {
		Addresses []address.Payload `json:"addresses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p, err := h.profiles.UpdateAddresses(c.Request.Context(), middleware.GetActor(c), req.Addresses)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, p)
}
