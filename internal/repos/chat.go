package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

type ChatRepo interface {
  Create(ctx context.Context, tx *gorm.DB, chats []*types.Chat) ([]*types.Chat, error)
  GetByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error)
  GetByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) ([]*types.Chat, error)
  GetChildren(ctx context.Context, tx *gorm.DB, parentID, userID uuid.UUID) ([]*types.Chat, error)
  GetRootByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Chat, error)
  UpdateTitle(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID, title string) error
  DeleteByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) error
  DeleteByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error
}

type chatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
  repoLog := baseLog.With("repo", "ChatRepo")
  return &chatRepo{db: db, log: repoLog}
}

func (r *chatRepo) Create(ctx context.Context, tx *gorm.DB, chats []*types.Chat) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(chats) == 0 {
    return []*types.Chat{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&chats).Error; err != nil {
    return nil, err
  }
  return chats, nil
}

func (r *chatRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Chat
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", chatID, userID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *chatRepo) GetByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Chat
  if err := transaction.WithContext(ctx).
    Where("graph_id = ? AND user_id = ?", graphID, userID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *chatRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID, userID uuid.UUID) ([]*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Chat
  if err := transaction.WithContext(ctx).
    Where("parent_id = ? AND user_id = ?", parentID, userID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *chatRepo) GetRootByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Chat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Chat
  if err := transaction.WithContext(ctx).
    Where("graph_id = ? AND user_id = ? AND parent_id IS NULL", graphID, userID).
    Order("created_at ASC").
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *chatRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID, title string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Chat{}).
    Where("id = ? AND user_id = ?", chatID, userID).
    Update("title", title).Error; err != nil {
    return err
  }
  return nil
}

func (r *chatRepo) DeleteByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", chatID, userID).
    Delete(&types.Chat{}).Error; err != nil {
    return err
  }
  return nil
}

func (r *chatRepo) DeleteByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("graph_id = ? AND user_id = ?", graphID, userID).
    Delete(&types.Chat{}).Error; err != nil {
    return err
  }
  return nil
}
