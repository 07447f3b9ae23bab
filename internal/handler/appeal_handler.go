package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// AppealHandler serves complaints and their reasons.
type AppealHandler struct {
	appeals *service.AppealService
}

func NewAppealHandler(appeals *service.AppealService) *AppealHandler {
	return &AppealHandler{appeals: appeals}
}

// GET /api/appeal-reasons
func (h *AppealHandler) Reasons(c *gin.Context) {
	reasons, err := h.appeals.Reasons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, reasons)
}

// List returns the caller's own appeals.
// GET /api/appeals
func (h *AppealHandler) List(c *gin.Context) {
	appeals, err := h.appeals.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, appeals)
}

// POST /api/appeals
func (h *AppealHandler) Create(c *gin.Context) {
	var req eligibility.ComplaintPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	a, err := h.appeals.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, a)
}

// POST /api/appeals/:id/photos (multipart, field "file")
func (h *AppealHandler) AddPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, ok := readPhoto(c)
	if !ok {
		return
	}
	photo, err := h.appeals.AddPhoto(c.Request.Context(), middleware.GetActor(c), id, up)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, photo)
}
