package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "github.com/yungbote/chatgraph-backend/internal/apierr"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/repos"
  "github.com/yungbote/chatgraph-backend/internal/requestdata"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

type MessageService interface {
  ListMessages(ctx context.Context, chatID uuid.UUID) ([]*types.Message, error)
  // SendMessage appends the user's message, generates the assistant reply
  // against the chat's history plus its frozen branch context, and appends
  // that reply. Both stored messages come back in order.
  SendMessage(ctx context.Context, chatID uuid.UUID, content string) (*types.Message, *types.Message, error)
}

type messageService struct {
  log         *logger.Logger
  graphRepo   repos.GraphRepo
  chatRepo    repos.ChatRepo
  messageRepo repos.MessageRepo
  answerer    AnswerService
}

func NewMessageService(
  log *logger.Logger,
  graphRepo repos.GraphRepo,
  chatRepo repos.ChatRepo,
  messageRepo repos.MessageRepo,
  answerer AnswerService,
) MessageService {
  serviceLog := log.With("service", "MessageService")
  return &messageService{
    log:         serviceLog,
    graphRepo:   graphRepo,
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
    answerer:    answerer,
  }
}

func (ms *messageService) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*types.Message, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.ErrUnauthorized
  }
  chat, err := ms.chatRepo.GetByID(ctx, nil, chatID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch chat: %w", err)
  }
  if chat == nil {
    return nil, apierr.ErrNotFound
  }
  messages, err := ms.messageRepo.GetByChatID(ctx, nil, chat.ID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list messages: %w", err)
  }
  return messages, nil
}

func (ms *messageService) SendMessage(ctx context.Context, chatID uuid.UUID, content string) (*types.Message, *types.Message, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, nil, apierr.ErrUnauthorized
  }
  content = strings.TrimSpace(content)
  if content == "" {
    return nil, nil, fmt.Errorf("%w: message content is required", apierr.ErrInvalidArgument)
  }

  chat, err := ms.chatRepo.GetByID(ctx, nil, chatID, rd.UserID)
  if err != nil {
    return nil, nil, fmt.Errorf("Failed to fetch chat: %w", err)
  }
  if chat == nil {
    return nil, nil, apierr.ErrNotFound
  }

  history, err := ms.messageRepo.GetByChatID(ctx, nil, chat.ID)
  if err != nil {
    return nil, nil, fmt.Errorf("Failed to fetch chat history: %w", err)
  }

  userMsg := &types.Message{
    ID:      uuid.New(),
    ChatID:  chat.ID,
    Author:  types.MessageAuthorUser,
    Content: content,
  }
  if _, err := ms.messageRepo.Create(ctx, nil, []*types.Message{userMsg}); err != nil {
    return nil, nil, fmt.Errorf("Failed to store user message: %w", err)
  }

  // History holds everything before this message; the new prompt goes to the
  // model separately. The chat's frozen branch context rides along so a
  // branched conversation answers with upstream knowledge.
  reply := ms.answerer.Answer(ctx, content, history, chat.ParentSummary)

  aiMsg := &types.Message{
    ID:      uuid.New(),
    ChatID:  chat.ID,
    Author:  types.MessageAuthorAI,
    Content: reply,
  }
  if _, err := ms.messageRepo.Create(ctx, nil, []*types.Message{aiMsg}); err != nil {
    return nil, nil, fmt.Errorf("Failed to store assistant message: %w", err)
  }

  touchGraphWatermark(ctx, ms.log, ms.graphRepo, chat.GraphID, rd.UserID)
  return userMsg, aiMsg, nil
}
