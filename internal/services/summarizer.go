package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/types"
)

// SummarizerService folds a chat transcript, plus the context the chat itself
// inherited, into one self-contained summary string for a new branch.
//
// SummarizeChat never fails: any error from the model is absorbed and an
// empty summary returned, a branch with degraded context beats a branch
// creation that errors out. Callers cannot distinguish "nothing to
// summarize" from "summarization failed".
type SummarizerService interface {
  SummarizeChat(ctx context.Context, messages []*types.Message, inheritedContext string) string
}

type summarizerService struct {
  log    *logger.Logger
  client OpenAIClient
}

func NewSummarizerService(log *logger.Logger, client OpenAIClient) SummarizerService {
  serviceLog := log.With("service", "SummarizerService")
  return &summarizerService{log: serviceLog, client: client}
}

const summarizerSystemPrompt = "You summarize chat history for branching purposes. When a parent summary is provided, integrate it into your summary so that all context is preserved for future branches."

func (s *summarizerService) SummarizeChat(ctx context.Context, messages []*types.Message, inheritedContext string) string {
  // An empty transcript has nothing to fold: hand the inherited context
  // through unchanged so branching from an empty chat keeps the chain.
  if len(messages) == 0 {
    return inheritedContext
  }

  prompt := buildSummaryPrompt(messages, inheritedContext)
  summary, err := s.client.ChatCompletion(ctx, []ChatMessage{
    {Role: "system", Content: summarizerSystemPrompt},
    {Role: "user", Content: prompt},
  }, 0.2)
  if err != nil {
    s.log.Warn("Summary generation failed, continuing with empty summary", "error", err)
    return ""
  }
  return strings.TrimSpace(summary)
}

func buildSummaryPrompt(messages []*types.Message, inheritedContext string) string {
  var transcript strings.Builder
  for _, m := range messages {
    fmt.Fprintf(&transcript, "%s: %s\n", m.Author, m.Content)
  }

  var b strings.Builder
  b.WriteString(`We are creating a summary of the following chat history to provide context for a branched conversation.
Create a concise, but in depth summary that captures all main points that have been discussed.
This summary should be as understandable as possible on its own for a new AI instance, without needing to reference the full chat history.
`)
  if inheritedContext != "" {
    b.WriteString(`
IMPORTANT: This chat is itself a branch from a previous conversation. Below is the summary of that previous conversation, which provides important context:
`)
    b.WriteString(inheritedContext)
    b.WriteString(`

Now, here is the current chat that branched from that conversation:
`)
  }
  b.WriteString("\nChat:\n")
  b.WriteString(transcript.String())
  return b.String()
}
