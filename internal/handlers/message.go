package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/services"
)

type MessageHandler struct {
  log             *logger.Logger
  messageService  services.MessageService
}

func NewMessageHandler(log *logger.Logger, messageService services.MessageService) *MessageHandler {
  return &MessageHandler{
    log:            log.With("handler", "MessageHandler"),
    messageService: messageService,
  }
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
  chatID, err := uuid.Parse(c.Param("chat_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
    return
  }
  messages, err := h.messageService.ListMessages(c.Request.Context(), chatID)
  if err != nil {
    h.log.Error("ListMessages failed", "error", err, "chat_id", chatID)
    RespondServiceError(c, "list_messages_failed", err)
    return
  }
  RespondOK(c, gin.H{"messages": messages})
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
  chatID, err := uuid.Parse(c.Param("chat_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
    return
  }
  var req struct {
    Content     string      `json:"content"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
    return
  }
  userMsg, aiMsg, err := h.messageService.SendMessage(c.Request.Context(), chatID, req.Content)
  if err != nil {
    h.log.Error("SendMessage failed", "error", err, "chat_id", chatID)
    RespondServiceError(c, "send_message_failed", err)
    return
  }
  RespondOK(c, gin.H{"user_message": userMsg, "ai_message": aiMsg})
}
