package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medical-app/logger"
	"medical-app/middlewares"
	"medical-app/services"
	"medical-app/utils"
)

// ConversationController exposes the durable side of the messaging system:
// listing threads and reading back what the relay persisted.
type ConversationController struct {
	store *services.ConversationStore
}

func NewConversationController(store *services.ConversationStore) *ConversationController {
	return &ConversationController{store: store}
}

// ListConversations returns the caller's active threads, newest first.
func (cc *ConversationController) ListConversations(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	convs, err := cc.store.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		logger.Log.Error("list conversations failed", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}
	utils.RespondSuccess(c, convs, gin.H{"results": len(convs)})
}

// GetMessages returns the full log of one conversation. Offline messages
// are only reachable here; the relay never replays them.
func (cc *ConversationController) GetMessages(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	msgs, err := cc.store.Messages(c.Request.Context(), c.Param("conversation_id"), user.ID)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		utils.RespondError(c, http.StatusNotFound, "Conversation not found")
		return
	case errors.Is(err, services.ErrNotParticipant):
		utils.RespondError(c, http.StatusForbidden, "You are not part of this conversation")
		return
	case err != nil:
		logger.Log.Error("fetch messages failed", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	utils.RespondSuccess(c, msgs, gin.H{"results": len(msgs)})
}

// MarkRead flags the other party's messages in the thread as read.
func (cc *ConversationController) MarkRead(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	err := cc.store.MarkRead(c.Request.Context(), c.Param("conversation_id"), user.ID)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		utils.RespondError(c, http.StatusNotFound, "Conversation not found")
		return
	case errors.Is(err, services.ErrNotParticipant):
		utils.RespondError(c, http.StatusForbidden, "You are not part of this conversation")
		return
	case err != nil:
		logger.Log.Error("mark read failed", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update messages")
		return
	}
	utils.RespondSuccess(c, gin.H{"message": "Messages marked as read"}, nil)
}
