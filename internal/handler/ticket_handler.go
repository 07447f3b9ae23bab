package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/directory"
)

// TicketHandler serves the ticket directory.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// List runs a directory query built from the query string.
// GET /api/tickets?category=&subcategory=&active=&service=&excludeAuthor=&excludeMaster=
func (h *TicketHandler) List(c *gin.Context) {
	q, err := directory.ParseQuery(c.Request.URL.Query())
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
		return
	}
	listings, err := h.tickets.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, listings)
}

// GET /api/tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, l)
}

// POST /api/tickets
func (h *TicketHandler) Create(c *gin.Context) {
	var req service.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	l, err := h.tickets.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, l)
}

// Patch applies a partial update. Only the author may edit.
// PATCH /api/tickets/:id
func (h *TicketHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.TicketPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	l, err := h.tickets.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, l)
}

// Links lists the tickets between the caller and another user.
// GET /api/tickets/links?with=ID
func (h *TicketHandler) Links(c *gin.Context) {
	otherID, ok := requiredQueryID(c, "with")
	if !ok {
		return
	}
	links, err := h.tickets.Links(c.Request.Context(), middleware.GetActor(c), otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, links)
}
