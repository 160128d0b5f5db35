package services

import (
  "context"
  "fmt"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/apierr"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/normalization"
  "github.com/yungbote/chatgraph-backend/internal/repos"
  "github.com/yungbote/chatgraph-backend/internal/requestdata"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

type GraphService interface {
  // CreateGraph creates the graph together with its root chat. Every graph
  // has exactly one root from the moment creation returns: if the root chat
  // insert fails the graph row is deleted again before the error surfaces.
  CreateGraph(ctx context.Context, title string) (*types.Graph, *types.Chat, error)
  ListGraphs(ctx context.Context) ([]*types.Graph, error)
  DeleteGraph(ctx context.Context, graphID uuid.UUID) error
}

type graphService struct {
  db          *gorm.DB
  log         *logger.Logger
  graphRepo   repos.GraphRepo
  chatRepo    repos.ChatRepo
  messageRepo repos.MessageRepo
}

func NewGraphService(
  db *gorm.DB,
  log *logger.Logger,
  graphRepo repos.GraphRepo,
  chatRepo repos.ChatRepo,
  messageRepo repos.MessageRepo,
) GraphService {
  serviceLog := log.With("service", "GraphService")
  return &graphService{
    db:          db,
    log:         serviceLog,
    graphRepo:   graphRepo,
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
  }
}

func (gs *graphService) CreateGraph(ctx context.Context, title string) (*types.Graph, *types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, nil, apierr.ErrUnauthorized
  }
  title = normalization.ParseTitle(title)
  if title == "" {
    return nil, nil, fmt.Errorf("%w: title is required", apierr.ErrInvalidArgument)
  }

  graph := &types.Graph{
    ID:     uuid.New(),
    UserID: rd.UserID,
    Title:  title,
  }
  if _, err := gs.graphRepo.Create(ctx, nil, []*types.Graph{graph}); err != nil {
    gs.log.Error("Failed to create graph", "error", err)
    return nil, nil, fmt.Errorf("Failed to create graph: %w", err)
  }

  // Root chat mirrors the graph title. ParentID nil marks it as the root.
  rootChat := &types.Chat{
    ID:      uuid.New(),
    GraphID: graph.ID,
    UserID:  rd.UserID,
    Title:   title,
  }
  if _, err := gs.chatRepo.Create(ctx, nil, []*types.Chat{rootChat}); err != nil {
    gs.log.Error("Failed to create root chat, rolling back graph", "graph_id", graph.ID, "error", err)
    // Compensating delete: a graph without a root must never become visible.
    if dErr := gs.graphRepo.DeleteByID(ctx, nil, graph.ID, rd.UserID); dErr != nil {
      gs.log.Error("Failed to delete graph after root chat failure, orphan graph left behind", "graph_id", graph.ID, "error", dErr)
    }
    return nil, nil, fmt.Errorf("Failed to create root chat: %w", err)
  }

  return graph, rootChat, nil
}

func (gs *graphService) ListGraphs(ctx context.Context) ([]*types.Graph, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  graphs, err := gs.graphRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list graphs: %w", err)
  }
  return graphs, nil
}

func (gs *graphService) DeleteGraph(ctx context.Context, graphID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.ErrUnauthorized
  }
  if graphID == uuid.Nil {
    return fmt.Errorf("%w: graph id is required", apierr.ErrInvalidArgument)
  }

  graph, err := gs.graphRepo.GetByID(ctx, nil, graphID, rd.UserID)
  if err != nil {
    return fmt.Errorf("Failed to fetch graph: %w", err)
  }
  if graph == nil {
    return apierr.ErrNotFound
  }

  // Best-effort cascade: keep going on partial failures so a flaky message
  // delete cannot strand the whole graph, but the graph row delete itself
  // decides success.
  chats, err := gs.chatRepo.GetByGraphID(ctx, nil, graphID, rd.UserID)
  if err != nil {
    gs.log.Warn("Failed to list chats for graph cascade, attempting graph delete anyway", "graph_id", graphID, "error", err)
  } else if len(chats) > 0 {
    chatIDs := make([]uuid.UUID, 0, len(chats))
    for _, c := range chats {
      chatIDs = append(chatIDs, c.ID)
    }
    if mErr := gs.messageRepo.DeleteByChatIDs(ctx, nil, chatIDs); mErr != nil {
      gs.log.Warn("Failed to delete messages during graph cascade", "graph_id", graphID, "error", mErr)
    }
    if cErr := gs.chatRepo.DeleteByGraphID(ctx, nil, graphID, rd.UserID); cErr != nil {
      gs.log.Warn("Failed to delete chats during graph cascade", "graph_id", graphID, "error", cErr)
    }
  }

  if err := gs.graphRepo.DeleteByID(ctx, nil, graphID, rd.UserID); err != nil {
    return fmt.Errorf("Failed to delete graph: %w", err)
  }
  return nil
}

func touchGraphWatermark(ctx context.Context, log *logger.Logger, graphRepo repos.GraphRepo, graphID, userID uuid.UUID) {
  // created_at doubles as the "recently active" sort key for graph listings.
  // Last write wins; a lost race only costs listing freshness.
  if err := graphRepo.TouchCreatedAt(ctx, nil, graphID, userID, time.Now()); err != nil {
    log.Warn("Failed to touch graph watermark", "graph_id", graphID, "error", err)
  }
}
