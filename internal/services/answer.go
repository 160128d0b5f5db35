package services

import (
  "context"

  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

// AnswerService generates the assistant reply for a user message. The stored
// parent_summary of the chat (when present) rides along as system context so
// a branched assistant knows everything upstream without replaying history.
type AnswerService interface {
  Answer(ctx context.Context, prompt string, history []*types.Message, inheritedContext string) string
}

type answerService struct {
  log    *logger.Logger
  client OpenAIClient
}

func NewAnswerService(log *logger.Logger, client OpenAIClient) AnswerService {
  serviceLog := log.With("service", "AnswerService")
  return &answerService{log: serviceLog, client: client}
}

const answerSystemPrompt = `You are a helpful assistant in a program called "ChatGraph", a conversation branching AI program. The user may create a branch off of this conversation at any time at which point a summary of this chat will be provided to the new assistant.`

const answerFallbackReply = "Sorry, I could not process your request."

func (s *answerService) Answer(ctx context.Context, prompt string, history []*types.Message, inheritedContext string) string {
  system := answerSystemPrompt
  if inheritedContext != "" {
    system += "\n\nThis conversation is a branch of a previous chat. Use the following summary as context:\n" + inheritedContext
  }

  messages := make([]ChatMessage, 0, len(history)+2)
  messages = append(messages, ChatMessage{Role: "system", Content: system})
  for _, m := range history {
    switch m.Author {
    case types.MessageAuthorUser:
      messages = append(messages, ChatMessage{Role: "user", Content: m.Content})
    case types.MessageAuthorAI, "assistant":
      messages = append(messages, ChatMessage{Role: "assistant", Content: m.Content})
    }
  }
  messages = append(messages, ChatMessage{Role: "user", Content: prompt})

  reply, err := s.client.ChatCompletion(ctx, messages, 0.7)
  if err != nil {
    s.log.Error("Answer generation failed, returning fallback reply", "error", err)
    return answerFallbackReply
  }
  return reply
}
