package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/chatgraph-backend/internal/apierr"
	"github.com/yungbote/chatgraph-backend/internal/logger"
	"github.com/yungbote/chatgraph-backend/internal/types"
)

type stubChatService struct {
	chat        *types.Chat
	deleteCalls int
}

func (s *stubChatService) CreateBranch(ctx context.Context, graphID, parentChatID uuid.UUID, title string, branchPointMessageID *uuid.UUID) (*types.Chat, error) {
	return nil, apierr.ErrNotFound
}

func (s *stubChatService) ListChatsForGraph(ctx context.Context, graphID uuid.UUID) ([]*types.Chat, error) {
	return nil, nil
}

func (s *stubChatService) GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error) {
	if s.chat == nil || s.chat.ID != chatID {
		return nil, apierr.ErrNotFound
	}
	return s.chat, nil
}

func (s *stubChatService) RenameChat(ctx context.Context, chatID uuid.UUID, newTitle string) (*types.Chat, error) {
	return nil, apierr.ErrNotFound
}

func (s *stubChatService) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	s.deleteCalls++
	return nil
}

func newChatTestRouter(t *testing.T, svc *stubChatService, allowRootDelete bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	h := NewChatHandler(log, svc, allowRootDelete)
	router := gin.New()
	router.DELETE("/chats/:chat_id", h.DeleteChat)
	return router
}

func TestDeleteChat_RootProtectedByDefault(t *testing.T) {
	rootID := uuid.New()
	svc := &stubChatService{chat: &types.Chat{ID: rootID, GraphID: uuid.New()}}
	router := newChatTestRouter(t, svc, false)

	req := httptest.NewRequest(http.MethodDelete, "/chats/"+rootID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for root delete, got %d", rec.Code)
	}
	if svc.deleteCalls != 0 {
		t.Fatalf("delete must not reach the service when the gate blocks it")
	}
}

func TestDeleteChat_NonRootPassesGate(t *testing.T) {
	parentID := uuid.New()
	chatID := uuid.New()
	svc := &stubChatService{chat: &types.Chat{ID: chatID, GraphID: uuid.New(), ParentID: &parentID}}
	router := newChatTestRouter(t, svc, false)

	req := httptest.NewRequest(http.MethodDelete, "/chats/"+chatID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.deleteCalls != 1 {
		t.Fatalf("expected one service delete call, got %d", svc.deleteCalls)
	}
}

func TestDeleteChat_RootAllowedWhenGateOpen(t *testing.T) {
	rootID := uuid.New()
	svc := &stubChatService{chat: &types.Chat{ID: rootID, GraphID: uuid.New()}}
	router := newChatTestRouter(t, svc, true)

	req := httptest.NewRequest(http.MethodDelete, "/chats/"+rootID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with gate open, got %d", rec.Code)
	}
	if svc.deleteCalls != 1 {
		t.Fatalf("expected one service delete call, got %d", svc.deleteCalls)
	}
}

func TestDeleteChat_InvalidIDRejected(t *testing.T) {
	svc := &stubChatService{}
	router := newChatTestRouter(t, svc, false)

	req := httptest.NewRequest(http.MethodDelete, "/chats/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
