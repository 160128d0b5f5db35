package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/chatgraph-backend/internal/apierr"
	"github.com/yungbote/chatgraph-backend/internal/types"
)

func TestSendMessage_AppendsUserAndAITurns(t *testing.T) {
	h := newChatHarness(t)
	ctx := authedCtx(uuid.New())

	_, root, err := h.graphSvc.CreateGraph(ctx, "g")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	h.client.reply = "the answer"

	userMsg, aiMsg, err := h.msgSvc.SendMessage(ctx, root.ID, "the question")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if userMsg.Author != types.MessageAuthorUser || userMsg.Content != "the question" {
		t.Fatalf("unexpected user message %+v", userMsg)
	}
	if aiMsg.Author != types.MessageAuthorAI || aiMsg.Content != "the answer" {
		t.Fatalf("unexpected ai message %+v", aiMsg)
	}

	stored, err := h.msgSvc.ListMessages(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(stored))
	}
	if stored[0].Author != types.MessageAuthorUser || stored[1].Author != types.MessageAuthorAI {
		t.Fatalf("messages stored out of order: %q then %q", stored[0].Author, stored[1].Author)
	}
}

func TestSendMessage_BranchContextReachesModel(t *testing.T) {
	h := newChatHarness(t)
	ctx := authedCtx(uuid.New())

	graph, root, err := h.graphSvc.CreateGraph(ctx, "g")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	h.seedMessages(root.ID, 2)
	h.client.reply = "frozen upstream summary"
	branch, err := h.chatSvc.CreateBranch(ctx, graph.ID, root.ID, "branch", nil)
	if err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	h.client.reply = "contextual answer"
	if _, _, err := h.msgSvc.SendMessage(ctx, branch.ID, "follow up"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	system := h.client.lastMsgs[0]
	if system.Role != "system" || !strings.Contains(system.Content, "frozen upstream summary") {
		t.Fatalf("branch summary missing from system prompt: %+v", system)
	}
}

func TestSendMessage_ModelFailureStoresFallback(t *testing.T) {
	h := newChatHarness(t)
	ctx := authedCtx(uuid.New())

	_, root, err := h.graphSvc.CreateGraph(ctx, "g")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	h.client.err = errors.New("model down")

	userMsg, aiMsg, err := h.msgSvc.SendMessage(ctx, root.ID, "hello")
	if err != nil {
		t.Fatalf("SendMessage must not fail on model errors: %v", err)
	}
	if aiMsg.Content != answerFallbackReply {
		t.Fatalf("expected fallback reply, got %q", aiMsg.Content)
	}
	if userMsg.Content != "hello" {
		t.Fatalf("user message must still be stored")
	}
}

func TestSendMessage_RejectsEmptyContent(t *testing.T) {
	h := newChatHarness(t)
	ctx := authedCtx(uuid.New())

	_, root, err := h.graphSvc.CreateGraph(ctx, "g")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	_, _, err = h.msgSvc.SendMessage(ctx, root.ID, "   ")
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListMessages_ForeignChatLooksMissing(t *testing.T) {
	h := newChatHarness(t)
	alice := authedCtx(uuid.New())
	bob := authedCtx(uuid.New())

	_, root, err := h.graphSvc.CreateGraph(alice, "private")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	_, err = h.msgSvc.ListMessages(bob, root.ID)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("foreign chat must look missing, got %v", err)
	}
}
