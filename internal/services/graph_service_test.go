package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/chatgraph-backend/internal/apierr"
)

func newGraphService(t *testing.T, store *fakeStore) GraphService {
	t.Helper()
	return NewGraphService(nil, testLogger(t), &fakeGraphRepo{s: store}, &fakeChatRepo{s: store}, &fakeMessageRepo{s: store})
}

func TestCreateGraph_CreatesRootChatAtomically(t *testing.T) {
	store := newFakeStore()
	svc := newGraphService(t, store)
	userID := uuid.New()

	graph, root, err := svc.CreateGraph(authedCtx(userID), "My Graph")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	if graph.Title != "My Graph" || root.Title != "My Graph" {
		t.Fatalf("graph and root chat must share the title, got %q / %q", graph.Title, root.Title)
	}
	if root.ParentID != nil {
		t.Fatalf("root chat must have nil parent")
	}
	if root.GraphID != graph.ID {
		t.Fatalf("root chat bound to wrong graph")
	}
	if root.ParentSummary != "" {
		t.Fatalf("root chat must carry no inherited context, got %q", root.ParentSummary)
	}
	if len(store.graphs) != 1 || len(store.chats) != 1 {
		t.Fatalf("expected one graph and one chat, got %d / %d", len(store.graphs), len(store.chats))
	}
}

func TestCreateGraph_RootChatFailureRollsBackGraph(t *testing.T) {
	store := newFakeStore()
	store.failChatCreate = true
	svc := newGraphService(t, store)

	_, _, err := svc.CreateGraph(authedCtx(uuid.New()), "doomed")
	if err == nil {
		t.Fatalf("expected error when root chat insert fails")
	}
	if len(store.graphs) != 0 {
		t.Fatalf("graph row must be rolled back, %d graphs remain", len(store.graphs))
	}
}

func TestCreateGraph_RejectsEmptyTitle(t *testing.T) {
	svc := newGraphService(t, newFakeStore())
	_, _, err := svc.CreateGraph(authedCtx(uuid.New()), "   ")
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateGraph_RequiresAuth(t *testing.T) {
	svc := newGraphService(t, newFakeStore())
	_, _, err := svc.CreateGraph(context.Background(), "title")
	if !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestListGraphs_ScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := newGraphService(t, store)
	alice := uuid.New()
	bob := uuid.New()

	if _, _, err := svc.CreateGraph(authedCtx(alice), "alice graph"); err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	if _, _, err := svc.CreateGraph(authedCtx(bob), "bob graph"); err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}

	graphs, err := svc.ListGraphs(authedCtx(alice))
	if err != nil {
		t.Fatalf("ListGraphs failed: %v", err)
	}
	if len(graphs) != 1 || graphs[0].Title != "alice graph" {
		t.Fatalf("expected only alice's graph, got %d graphs", len(graphs))
	}
}

func TestDeleteGraph_RemovesChatsAndMessages(t *testing.T) {
	store := newFakeStore()
	graphSvc := newGraphService(t, store)
	userID := uuid.New()
	ctx := authedCtx(userID)

	graph, root, err := graphSvc.CreateGraph(ctx, "to delete")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}

	summarizer := &fakeSummarizer{summary: "s"}
	chatSvc := NewChatService(nil, testLogger(t), &fakeGraphRepo{s: store}, &fakeChatRepo{s: store}, &fakeMessageRepo{s: store}, summarizer)
	if _, err := chatSvc.CreateBranch(ctx, graph.ID, root.ID, "branch", nil); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	if err := graphSvc.DeleteGraph(ctx, graph.ID); err != nil {
		t.Fatalf("DeleteGraph failed: %v", err)
	}
	if len(store.graphs) != 0 || len(store.chats) != 0 || len(store.messages) != 0 {
		t.Fatalf("cascade left rows behind: %d graphs, %d chats, %d messages",
			len(store.graphs), len(store.chats), len(store.messages))
	}
}

func TestDeleteGraph_SucceedsDespiteMessageDeleteFailure(t *testing.T) {
	store := newFakeStore()
	graphSvc := newGraphService(t, store)
	ctx := authedCtx(uuid.New())

	graph, _, err := graphSvc.CreateGraph(ctx, "flaky")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	store.failMsgDelete = true

	if err := graphSvc.DeleteGraph(ctx, graph.ID); err != nil {
		t.Fatalf("graph delete must survive a message delete failure: %v", err)
	}
	if len(store.graphs) != 0 {
		t.Fatalf("graph row must be gone")
	}
}

func TestDeleteGraph_NotFoundForOtherUser(t *testing.T) {
	store := newFakeStore()
	svc := newGraphService(t, store)

	graph, _, err := svc.CreateGraph(authedCtx(uuid.New()), "mine")
	if err != nil {
		t.Fatalf("CreateGraph failed: %v", err)
	}
	err = svc.DeleteGraph(authedCtx(uuid.New()), graph.ID)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("other user's delete must look like not found, got %v", err)
	}
	if len(store.graphs) != 1 {
		t.Fatalf("graph must survive a foreign delete attempt")
	}
}
