package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Find returns the chat with another user as a list of zero or one element.
// GET /api/chats?with=ID
func (h *ChatHandler) Find(c *gin.Context) {
	otherID, ok := requiredQueryID(c, "with")
	if !ok {
		return
	}
	chats, err := h.chats.With(c.Request.Context(), middleware.GetActor(c), otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, chats)
}

// POST /api/chats {"participant": "/api/users/ID"}
func (h *ChatHandler) Create(c *gin.Context) {
	var req struct {
		Participant string `json:"participant" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	participantID, err := account.ParseUserIRI(req.Participant)
	if err != nil {
		utils.ValidationError(c, "Invalid participant", map[string]string{"participant": err.Error()})
		return
	}
	chat, err := h.chats.Open(c.Request.Context(), middleware.GetActor(c), participantID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 201, chat)
}
