package db

import (
  "fmt"
  "strings"
  "gorm.io/driver/postgres"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
  "github.com/yungbote/chatgraph-backend/internal/utils"
)

type PostgresService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))
  if driver == "sqlite" {
    sqlitePath := utils.GetEnv("SQLITE_PATH", "chatgraph.db", log)
    log.Info("Opening sqlite database...", "path", sqlitePath)
    db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
    if err != nil {
      log.Error("Failed to open sqlite database", "error", err)
      return nil, fmt.Errorf("Failed to open sqlite database: %w", err)
    }
    return &PostgresService{db: db, log: serviceLog}, nil
  }

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "chatgraph", log)
  log.Debug("Environment variables loaded")

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }
  log.Info("uuid-ossp extension enabled")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Graph{},
    &types.Chat{},
    &types.Message{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  if s.db.Dialector.Name() != "postgres" {
    return nil
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  constraints := []struct {
    name string
    ddl  string
  }{
    {"fk_user_token_user_id", `
      ALTER TABLE "user_token"
      ADD CONSTRAINT "fk_user_token_user_id"
      FOREIGN KEY ("user_id")
      REFERENCES "user"("id")
      ON DELETE CASCADE
    `},
    {"fk_graph_user_id", `
      ALTER TABLE "graph"
      ADD CONSTRAINT "fk_graph_user_id"
      FOREIGN KEY ("user_id")
      REFERENCES "user"("id")
      ON DELETE CASCADE
    `},
    {"fk_chat_graph_id", `
      ALTER TABLE "chat"
      ADD CONSTRAINT "fk_chat_graph_id"
      FOREIGN KEY ("graph_id")
      REFERENCES "graph"("id")
      ON DELETE CASCADE
    `},
    {"fk_message_chat_id", `
      ALTER TABLE "message"
      ADD CONSTRAINT "fk_message_chat_id"
      FOREIGN KEY ("chat_id")
      REFERENCES "chat"("id")
      ON DELETE CASCADE
    `},
  }
  // chat.parent_id stays unconstrained: the subtree cascade is driven by the
  // service layer children-before-parent, not by the database.
  for _, c := range constraints {
    var count int64
    if err := s.db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, c.name).Scan(&count).Error; err != nil {
      return fmt.Errorf("Failed to check constraint %s: %w", c.name, err)
    }
    if count > 0 {
      continue
    }
    if err := s.db.Exec(c.ddl).Error; err != nil {
      return fmt.Errorf("Failed to add %s: %w", c.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
