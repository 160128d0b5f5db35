package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

// Every read and write is scoped by user_id even though the service layer
// checks ownership too, a query that forgets the predicate should still not
// be able to touch another user's rows.
type GraphRepo interface {
  Create(ctx context.Context, tx *gorm.DB, graphs []*types.Graph) ([]*types.Graph, error)
  GetByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Graph, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Graph, error)
  UpdateTitle(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, title string) error
  TouchCreatedAt(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, at time.Time) error
  DeleteByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error
}

type graphRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewGraphRepo(db *gorm.DB, baseLog *logger.Logger) GraphRepo {
  repoLog := baseLog.With("repo", "GraphRepo")
  return &graphRepo{db: db, log: repoLog}
}

func (r *graphRepo) Create(ctx context.Context, tx *gorm.DB, graphs []*types.Graph) ([]*types.Graph, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(graphs) == 0 {
    return []*types.Graph{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&graphs).Error; err != nil {
    return nil, err
  }
  return graphs, nil
}

func (r *graphRepo) GetByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Graph, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Graph
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", graphID, userID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *graphRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Graph, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Graph
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *graphRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, title string) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Graph{}).
    Where("id = ? AND user_id = ?", graphID, userID).
    Update("title", title).Error; err != nil {
    return err
  }
  return nil
}

func (r *graphRepo) TouchCreatedAt(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Graph{}).
    Where("id = ? AND user_id = ?", graphID, userID).
    Update("created_at", at).Error; err != nil {
    return err
  }
  return nil
}

func (r *graphRepo) DeleteByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", graphID, userID).
    Delete(&types.Graph{}).Error; err != nil {
    return err
  }
  return nil
}
