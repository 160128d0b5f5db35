package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/services"
)

type ChatHandler struct {
  log                 *logger.Logger
  chatService         services.ChatService
  allowRootChatDelete bool
}

// allowRootChatDelete comes from ALLOW_ROOT_CHAT_DELETE. It defaults to off:
// deleting a root chat empties the whole graph while leaving the graph row
// behind, which the UI has no way to present.
func NewChatHandler(log *logger.Logger, chatService services.ChatService, allowRootChatDelete bool) *ChatHandler {
  return &ChatHandler{
    log:                 log.With("handler", "ChatHandler"),
    chatService:         chatService,
    allowRootChatDelete: allowRootChatDelete,
  }
}

func (h *ChatHandler) CreateBranch(c *gin.Context) {
  var req struct {
    GraphID               string    `json:"graph_id"`
    ParentChatID          string    `json:"parent_chat_id"`
    Title                 string    `json:"title"`
    BranchPointMessageID  string    `json:"branch_point_message_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
    return
  }
  graphID, err := uuid.Parse(req.GraphID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_graph_id", err)
    return
  }
  parentChatID, err := uuid.Parse(req.ParentChatID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_parent_chat_id", err)
    return
  }
  var branchPoint *uuid.UUID
  if req.BranchPointMessageID != "" {
    parsed, pErr := uuid.Parse(req.BranchPointMessageID)
    if pErr != nil {
      RespondError(c, http.StatusBadRequest, "invalid_branch_point_message_id", pErr)
      return
    }
    branchPoint = &parsed
  }
  chat, err := h.chatService.CreateBranch(c.Request.Context(), graphID, parentChatID, req.Title, branchPoint)
  if err != nil {
    h.log.Error("CreateBranch failed", "error", err, "graph_id", graphID, "parent_chat_id", parentChatID)
    RespondServiceError(c, "create_branch_failed", err)
    return
  }
  RespondOK(c, gin.H{"chat": chat})
}

func (h *ChatHandler) ListChats(c *gin.Context) {
  graphID, err := uuid.Parse(c.Param("graph_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_graph_id", err)
    return
  }
  chats, err := h.chatService.ListChatsForGraph(c.Request.Context(), graphID)
  if err != nil {
    h.log.Error("ListChats failed", "error", err, "graph_id", graphID)
    RespondServiceError(c, "list_chats_failed", err)
    return
  }
  RespondOK(c, gin.H{"chats": chats})
}

func (h *ChatHandler) RenameChat(c *gin.Context) {
  chatID, err := uuid.Parse(c.Param("chat_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
    return
  }
  var req struct {
    Title       string      `json:"title"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
    return
  }
  chat, err := h.chatService.RenameChat(c.Request.Context(), chatID, req.Title)
  if err != nil {
    h.log.Error("RenameChat failed", "error", err, "chat_id", chatID)
    RespondServiceError(c, "rename_chat_failed", err)
    return
  }
  RespondOK(c, gin.H{"chat": chat})
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
  chatID, err := uuid.Parse(c.Param("chat_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_chat_id", err)
    return
  }
  if !h.allowRootChatDelete {
    chat, gErr := h.chatService.GetChat(c.Request.Context(), chatID)
    if gErr != nil {
      RespondServiceError(c, "delete_chat_failed", gErr)
      return
    }
    if chat.IsRoot() {
      RespondError(c, http.StatusForbidden, "root_chat_protected", nil)
      return
    }
  }
  if err := h.chatService.DeleteChat(c.Request.Context(), chatID); err != nil {
    h.log.Error("DeleteChat failed", "error", err, "chat_id", chatID)
    RespondServiceError(c, "delete_chat_failed", err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}
