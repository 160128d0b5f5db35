package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/services"
)

type GraphHandler struct {
  log           *logger.Logger
  graphService  services.GraphService
}

func NewGraphHandler(log *logger.Logger, graphService services.GraphService) *GraphHandler {
  return &GraphHandler{
    log:          log.With("handler", "GraphHandler"),
    graphService: graphService,
  }
}

func (h *GraphHandler) CreateGraph(c *gin.Context) {
  var req struct {
    Title       string      `json:"title"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
    return
  }
  graph, rootChat, err := h.graphService.CreateGraph(c.Request.Context(), req.Title)
  if err != nil {
    h.log.Error("CreateGraph failed", "error", err)
    RespondServiceError(c, "create_graph_failed", err)
    return
  }
  RespondOK(c, gin.H{"graph": graph, "root_chat": rootChat})
}

func (h *GraphHandler) ListGraphs(c *gin.Context) {
  graphs, err := h.graphService.ListGraphs(c.Request.Context())
  if err != nil {
    h.log.Error("ListGraphs failed", "error", err)
    RespondServiceError(c, "list_graphs_failed", err)
    return
  }
  RespondOK(c, gin.H{"graphs": graphs})
}

func (h *GraphHandler) DeleteGraph(c *gin.Context) {
  graphID, err := uuid.Parse(c.Param("graph_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_graph_id", err)
    return
  }
  if err := h.graphService.DeleteGraph(c.Request.Context(), graphID); err != nil {
    h.log.Error("DeleteGraph failed", "error", err, "graph_id", graphID)
    RespondServiceError(c, "delete_graph_failed", err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}
