package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/yungbote/chatgraph-backend/internal/clients/redis"
  "github.com/yungbote/chatgraph-backend/internal/db"
  "github.com/yungbote/chatgraph-backend/internal/handlers"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/middleware"
  "github.com/yungbote/chatgraph-backend/internal/observability"
  "github.com/yungbote/chatgraph-backend/internal/repos"
  "github.com/yungbote/chatgraph-backend/internal/server"
  "github.com/yungbote/chatgraph-backend/internal/services"
  "github.com/yungbote/chatgraph-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  serviceName := utils.GetEnv("SERVICE_NAME", "chatgraph-backend", log)
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  allowRootChatDelete := utils.GetEnvAsBool("ALLOW_ROOT_CHAT_DELETE", false, log)

  // Tracing
  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: serviceName,
    Environment: utils.GetEnv("ENVIRONMENT", "development", log),
    Version:     utils.GetEnv("SERVICE_VERSION", "", log),
  })
  if otelShutdown != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = otelShutdown(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  graphRepo := repos.NewGraphRepo(thePG, log)
  chatRepo := repos.NewChatRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  summarizerService := services.NewSummarizerService(log, openaiClient)
  answerService := services.NewAnswerService(log, openaiClient)
  graphService := services.NewGraphService(thePG, log, graphRepo, chatRepo, messageRepo)
  chatService := services.NewChatService(thePG, log, graphRepo, chatRepo, messageRepo, summarizerService)
  messageService := services.NewMessageService(log, graphRepo, chatRepo, messageRepo, answerService)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  graphHandler := handlers.NewGraphHandler(log, graphService)
  chatHandler := handlers.NewChatHandler(log, chatService, allowRootChatDelete)
  messageHandler := handlers.NewMessageHandler(log, messageService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  var rateLimitMiddleware *middleware.RateLimitMiddleware
  if os.Getenv("REDIS_ADDR") != "" {
    rateLimiter, rlErr := redis.NewRateLimiter(log)
    if rlErr != nil {
      log.Warn("Could not init rate limiter, continuing without", "error", rlErr)
    } else {
      defer rateLimiter.Close()
      rateLimitMiddleware = middleware.NewRateLimitMiddleware(log, rateLimiter)
    }
  }

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    ServiceName:         serviceName,
    AuthHandler:         authHandler,
    AuthMiddleware:      authMiddleware,
    RateLimitMiddleware: rateLimitMiddleware,
    GraphHandler:        graphHandler,
    ChatHandler:         chatHandler,
    MessageHandler:      messageHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
