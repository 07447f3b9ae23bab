package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List returns the reviews about a user.
// GET /api/reviews?user=ID[&type=client|master]
func (h *ReviewHandler) List(c *gin.Context) {
	userID, ok := requiredQueryID(c, "user")
	if !ok {
		return
	}
	reviews, err := h.reviews.List(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, reviews)
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req eligibility.ReviewPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	rv, err := h.reviews.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, rv)
}

// POST /api/reviews/:id/photos (multipart, field "file")
func (h *ReviewHandler) AddPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, ok := readPhoto(c)
	if !ok {
		return
	}
	photo, err := h.reviews.AddPhoto(c.Request.Context(), middleware.GetActor(c), id, up)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, photo)
}
