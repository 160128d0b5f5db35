package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

// MessageRepo is the append-only message log per chat. There is no update
// method, messages are only removed wholesale when a chat is cascaded away.
type MessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error)
  GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error)
  DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error
  DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  repoLog := baseLog.With("repo", "MessageRepo")
  return &messageRepo{db: db, log: repoLog}
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(messages) == 0 {
    return []*types.Message{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
    return nil, err
  }
  return messages, nil
}

func (r *messageRepo) GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Message
  if err := transaction.WithContext(ctx).
    Where("chat_id = ?", chatID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *messageRepo) DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
  return r.DeleteByChatIDs(ctx, tx, []uuid.UUID{chatID})
}

func (r *messageRepo) DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(chatIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("chat_id IN ?", chatIDs).
    Delete(&types.Message{}).Error; err != nil {
    return err
  }
  return nil
}
