package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/chatgraph-backend/internal/types"
)

func TestSummarizeChat_EmptyTranscriptPassesContextThrough(t *testing.T) {
	client := &fakeOpenAIClient{reply: "should never be used"}
	svc := NewSummarizerService(testLogger(t), client)

	got := svc.SummarizeChat(context.Background(), nil, "upstream context")
	if got != "upstream context" {
		t.Fatalf("expected inherited context passthrough, got %q", got)
	}
	if client.calls != 0 {
		t.Fatalf("empty transcript must not hit the model, got %d calls", client.calls)
	}
}

func TestSummarizeChat_EmptyTranscriptEmptyContext(t *testing.T) {
	client := &fakeOpenAIClient{}
	svc := NewSummarizerService(testLogger(t), client)

	if got := svc.SummarizeChat(context.Background(), nil, ""); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

func TestSummarizeChat_ModelFailureYieldsEmptySummary(t *testing.T) {
	client := &fakeOpenAIClient{err: fmt.Errorf("model unavailable")}
	svc := NewSummarizerService(testLogger(t), client)

	msgs := []*types.Message{
		{ID: uuid.New(), Author: types.MessageAuthorUser, Content: "hello"},
	}
	if got := svc.SummarizeChat(context.Background(), msgs, "context"); got != "" {
		t.Fatalf("failure must yield empty summary, got %q", got)
	}
}

func TestSummarizeChat_IncludesTranscriptAndInheritedContext(t *testing.T) {
	client := &fakeOpenAIClient{reply: "  a summary  "}
	svc := NewSummarizerService(testLogger(t), client)

	msgs := []*types.Message{
		{ID: uuid.New(), Author: types.MessageAuthorUser, Content: "what is gorm"},
		{ID: uuid.New(), Author: types.MessageAuthorAI, Content: "an orm"},
	}
	got := svc.SummarizeChat(context.Background(), msgs, "earlier we discussed go")
	if got != "a summary" {
		t.Fatalf("expected trimmed model reply, got %q", got)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", client.calls)
	}
	if client.lastTemp != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", client.lastTemp)
	}
	prompt := client.lastMsgs[len(client.lastMsgs)-1].Content
	if !strings.Contains(prompt, "user: what is gorm") || !strings.Contains(prompt, "ai: an orm") {
		t.Fatalf("prompt missing transcript: %q", prompt)
	}
	if !strings.Contains(prompt, "earlier we discussed go") {
		t.Fatalf("prompt missing inherited context: %q", prompt)
	}
}

func TestAnswer_FallbackOnModelFailure(t *testing.T) {
	client := &fakeOpenAIClient{err: fmt.Errorf("model unavailable")}
	svc := NewAnswerService(testLogger(t), client)

	got := svc.Answer(context.Background(), "hi", nil, "")
	if got != answerFallbackReply {
		t.Fatalf("expected fallback reply, got %q", got)
	}
}

func TestAnswer_BranchContextRidesInSystemPrompt(t *testing.T) {
	client := &fakeOpenAIClient{reply: "sure"}
	svc := NewAnswerService(testLogger(t), client)

	history := []*types.Message{
		{ID: uuid.New(), Author: types.MessageAuthorUser, Content: "first"},
		{ID: uuid.New(), Author: types.MessageAuthorAI, Content: "second"},
	}
	if got := svc.Answer(context.Background(), "third", history, "the branch summary"); got != "sure" {
		t.Fatalf("unexpected reply %q", got)
	}
	if client.lastTemp != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", client.lastTemp)
	}
	if len(client.lastMsgs) != 4 {
		t.Fatalf("expected system + 2 history + prompt, got %d messages", len(client.lastMsgs))
	}
	if client.lastMsgs[0].Role != "system" || !strings.Contains(client.lastMsgs[0].Content, "the branch summary") {
		t.Fatalf("system message missing branch context: %+v", client.lastMsgs[0])
	}
	if client.lastMsgs[2].Role != "assistant" {
		t.Fatalf("ai history turn must map to assistant role, got %q", client.lastMsgs[2].Role)
	}
	if client.lastMsgs[3].Content != "third" {
		t.Fatalf("prompt must be the final message, got %q", client.lastMsgs[3].Content)
	}
}
