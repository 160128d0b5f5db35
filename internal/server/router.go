package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/yungbote/chatgraph-backend/internal/handlers"
  "github.com/yungbote/chatgraph-backend/internal/middleware"
)

type RouterConfig struct {
  ServiceName         string
  AuthHandler         *handlers.AuthHandler
  AuthMiddleware      *middleware.AuthMiddleware
  RateLimitMiddleware *middleware.RateLimitMiddleware
  GraphHandler        *handlers.GraphHandler
  ChatHandler         *handlers.ChatHandler
  MessageHandler      *handlers.MessageHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  router.Use(otelgin.Middleware(cfg.ServiceName))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  if cfg.RateLimitMiddleware != nil {
    protected.Use(cfg.RateLimitMiddleware.Limit())
  }
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // Graphs
  protected.POST("/graphs", cfg.GraphHandler.CreateGraph)
  protected.GET("/graphs", cfg.GraphHandler.ListGraphs)
  protected.DELETE("/graphs/:graph_id", cfg.GraphHandler.DeleteGraph)
  // Chats
  protected.POST("/chats", cfg.ChatHandler.CreateBranch)
  protected.GET("/graphs/:graph_id/chats", cfg.ChatHandler.ListChats)
  protected.PATCH("/chats/:chat_id", cfg.ChatHandler.RenameChat)
  protected.DELETE("/chats/:chat_id", cfg.ChatHandler.DeleteChat)
  // Messages
  protected.GET("/chats/:chat_id/messages", cfg.MessageHandler.ListMessages)
  protected.POST("/chats/:chat_id/messages", cfg.MessageHandler.SendMessage)

  return router
}
