package services

import (
  "context"
  "fmt"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/apierr"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/normalization"
  "github.com/yungbote/chatgraph-backend/internal/repos"
  "github.com/yungbote/chatgraph-backend/internal/requestdata"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

type ChatService interface {
  // CreateBranch creates a child chat under parentChatID carrying a frozen
  // summary of everything upstream. Step order matters: parent messages are
  // fetched first, then summarized together with the parent's own inherited
  // context, then the chat row is inserted, then the graph watermark bumped.
  CreateBranch(ctx context.Context, graphID, parentChatID uuid.UUID, title string, branchPointMessageID *uuid.UUID) (*types.Chat, error)
  ListChatsForGraph(ctx context.Context, graphID uuid.UUID) ([]*types.Chat, error)
  GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error)
  RenameChat(ctx context.Context, chatID uuid.UUID, newTitle string) (*types.Chat, error)
  DeleteChat(ctx context.Context, chatID uuid.UUID) error
}

type chatService struct {
  db          *gorm.DB
  log         *logger.Logger
  graphRepo   repos.GraphRepo
  chatRepo    repos.ChatRepo
  messageRepo repos.MessageRepo
  summarizer  SummarizerService
}

func NewChatService(
  db *gorm.DB,
  log *logger.Logger,
  graphRepo repos.GraphRepo,
  chatRepo repos.ChatRepo,
  messageRepo repos.MessageRepo,
  summarizer SummarizerService,
) ChatService {
  serviceLog := log.With("service", "ChatService")
  return &chatService{
    db:          db,
    log:         serviceLog,
    graphRepo:   graphRepo,
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
    summarizer:  summarizer,
  }
}

// resolveInheritedContext returns the context a branch from parent should
// inherit. The parent's stored parent_summary already folds the entire
// ancestor chain (it was computed at the parent's own creation from the
// grandparent's summary plus the grandparent's messages), so one field read
// replaces an O(depth) walk. Ancestors are never re-read and summaries are
// never recomputed here.
func (cs *chatService) resolveInheritedContext(parent *types.Chat) string {
  return parent.ParentSummary
}

func (cs *chatService) CreateBranch(ctx context.Context, graphID, parentChatID uuid.UUID, title string, branchPointMessageID *uuid.UUID) (*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  title = normalization.ParseTitle(title)
  if title == "" {
    return nil, fmt.Errorf("%w: title is required", apierr.ErrInvalidArgument)
  }
  if graphID == uuid.Nil {
    return nil, fmt.Errorf("%w: graph id is required", apierr.ErrInvalidArgument)
  }
  if parentChatID == uuid.Nil {
    return nil, fmt.Errorf("%w: parent chat id is required", apierr.ErrInvalidArgument)
  }

  graph, err := cs.graphRepo.GetByID(ctx, nil, graphID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch graph: %w", err)
  }
  if graph == nil {
    return nil, apierr.ErrNotFound
  }
  parent, err := cs.chatRepo.GetByID(ctx, nil, parentChatID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch parent chat: %w", err)
  }
  if parent == nil {
    return nil, apierr.ErrNotFound
  }
  if parent.GraphID != graphID {
    return nil, fmt.Errorf("%w: parent chat belongs to a different graph", apierr.ErrInvalidArgument)
  }

  parentMessages, err := cs.messageRepo.GetByChatID(ctx, nil, parent.ID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch parent messages: %w", err)
  }

  // Summarizer failures come back as an empty summary, never an error: a
  // branch with degraded context still beats a blocked branch creation.
  inherited := cs.resolveInheritedContext(parent)
  summary := cs.summarizer.SummarizeChat(ctx, parentMessages, inherited)

  chat := &types.Chat{
    ID:                   uuid.New(),
    GraphID:              graphID,
    UserID:               rd.UserID,
    Title:                title,
    ParentID:             &parent.ID,
    ParentSummary:        summary,
    BranchPointMessageID: branchPointMessageID,
  }
  if _, err := cs.chatRepo.Create(ctx, nil, []*types.Chat{chat}); err != nil {
    return nil, fmt.Errorf("Failed to create branch chat: %w", err)
  }

  touchGraphWatermark(ctx, cs.log, cs.graphRepo, graphID, rd.UserID)
  return chat, nil
}

func (cs *chatService) ListChatsForGraph(ctx context.Context, graphID uuid.UUID) ([]*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  if graphID == uuid.Nil {
    return nil, fmt.Errorf("%w: graph id is required", apierr.ErrInvalidArgument)
  }
  graph, err := cs.graphRepo.GetByID(ctx, nil, graphID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch graph: %w", err)
  }
  if graph == nil {
    return nil, apierr.ErrNotFound
  }
  chats, err := cs.chatRepo.GetByGraphID(ctx, nil, graphID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list chats: %w", err)
  }
  return chats, nil
}

func (cs *chatService) GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  chat, err := cs.chatRepo.GetByID(ctx, nil, chatID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch chat: %w", err)
  }
  if chat == nil {
    return nil, apierr.ErrNotFound
  }
  return chat, nil
}

func (cs *chatService) RenameChat(ctx context.Context, chatID uuid.UUID, newTitle string) (*types.Chat, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  newTitle = normalization.ParseTitle(newTitle)
  if newTitle == "" {
    return nil, fmt.Errorf("%w: title is required", apierr.ErrInvalidArgument)
  }

  chat, err := cs.chatRepo.GetByID(ctx, nil, chatID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch chat: %w", err)
  }
  if chat == nil {
    return nil, apierr.ErrNotFound
  }

  if err := cs.chatRepo.UpdateTitle(ctx, nil, chatID, rd.UserID, newTitle); err != nil {
    return nil, fmt.Errorf("Failed to rename chat: %w", err)
  }
  chat.Title = newTitle

  // Root chat title and graph title are kept equal by convention, there is
  // no constraint tying them together.
  if chat.IsRoot() {
    if err := cs.graphRepo.UpdateTitle(ctx, nil, chat.GraphID, rd.UserID, newTitle); err != nil {
      cs.log.Warn("Failed to sync graph title with root chat rename", "graph_id", chat.GraphID, "error", err)
    }
  } else {
    root, rErr := cs.chatRepo.GetRootByGraphID(ctx, nil, chat.GraphID, rd.UserID)
    if rErr != nil {
      cs.log.Warn("Failed to check graph root during rename", "graph_id", chat.GraphID, "error", rErr)
    } else if root == nil {
      // Repair-on-write: a graph should never be rootless, but if one shows
      // up here, synthesize a root rather than failing the rename.
      cs.log.Warn("Graph has no root chat at rename time, synthesizing one", "graph_id", chat.GraphID)
      repaired := &types.Chat{
        ID:      uuid.New(),
        GraphID: chat.GraphID,
        UserID:  rd.UserID,
        Title:   newTitle,
      }
      if _, cErr := cs.chatRepo.Create(ctx, nil, []*types.Chat{repaired}); cErr != nil {
        cs.log.Error("Failed to synthesize root chat during rename", "graph_id", chat.GraphID, "error", cErr)
      }
      if gErr := cs.graphRepo.UpdateTitle(ctx, nil, chat.GraphID, rd.UserID, newTitle); gErr != nil {
        cs.log.Warn("Failed to sync graph title after root repair", "graph_id", chat.GraphID, "error", gErr)
      }
    }
  }

  touchGraphWatermark(ctx, cs.log, cs.graphRepo, chat.GraphID, rd.UserID)
  return chat, nil
}

func (cs *chatService) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.ErrUnauthorized
  }
  chat, err := cs.chatRepo.GetByID(ctx, nil, chatID, rd.UserID)
  if err != nil {
    return fmt.Errorf("Failed to fetch chat: %w", err)
  }
  if chat == nil {
    return apierr.ErrNotFound
  }

  visited := map[uuid.UUID]bool{}
  if err := cs.deleteSubtree(ctx, rd.UserID, chat.ID, visited); err != nil {
    return err
  }

  touchGraphWatermark(ctx, cs.log, cs.graphRepo, chat.GraphID, rd.UserID)
  return nil
}

// deleteSubtree removes chatID and everything under it, children before
// parent so the storage boundary never sees an orphaned child. Descendant
// failures are logged and skipped (best effort, no cross-call transactions);
// only a failure to delete chatID's own row makes the call fail.
func (cs *chatService) deleteSubtree(ctx context.Context, userID, chatID uuid.UUID, visited map[uuid.UUID]bool) error {
  if visited[chatID] {
    // A cycle cannot be produced by CreateBranch, but corrupt parent links
    // must not loop the cascade forever.
    cs.log.Error("Cycle detected in chat tree during delete, skipping", "chat_id", chatID)
    return nil
  }
  visited[chatID] = true

  children, err := cs.chatRepo.GetChildren(ctx, nil, chatID, userID)
  if err != nil {
    cs.log.Warn("Failed to list children during cascade delete", "chat_id", chatID, "error", err)
  }
  for _, child := range children {
    if cErr := cs.deleteSubtree(ctx, userID, child.ID, visited); cErr != nil {
      cs.log.Warn("Failed to delete descendant chat, continuing cascade", "chat_id", child.ID, "error", cErr)
    }
  }

  if mErr := cs.messageRepo.DeleteByChatID(ctx, nil, chatID); mErr != nil {
    cs.log.Warn("Failed to delete messages during cascade delete, continuing", "chat_id", chatID, "error", mErr)
  }

  if err := cs.chatRepo.DeleteByID(ctx, nil, chatID, userID); err != nil {
    return fmt.Errorf("Failed to delete chat %s: %w", chatID, err)
  }
  return nil
}
