package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/chatgraph-backend/internal/logger"
	"github.com/yungbote/chatgraph-backend/internal/requestdata"
	"github.com/yungbote/chatgraph-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

// fakeStore backs all three fake repos with one set of in-memory tables so
// cross-repo effects (cascades, watermarks) are observable in tests.
type fakeStore struct {
	graphs   map[uuid.UUID]*types.Graph
	chats    map[uuid.UUID]*types.Chat
	messages map[uuid.UUID]*types.Message

	seq              int64
	failGraphCreate  bool
	failChatCreate   bool
	failChatDelete   map[uuid.UUID]bool
	failMsgDelete    bool
	chatGetCalls     int
	msgGetCalls      int
	touchCalls       int
	deletedChatOrder []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		graphs:         map[uuid.UUID]*types.Graph{},
		chats:          map[uuid.UUID]*types.Chat{},
		messages:       map[uuid.UUID]*types.Message{},
		failChatDelete: map[uuid.UUID]bool{},
	}
}

// nextTime hands out strictly increasing timestamps so creation order is
// unambiguous even when rows are inserted within the same clock tick.
func (s *fakeStore) nextTime() time.Time {
	s.seq++
	return time.Unix(0, s.seq)
}

type fakeGraphRepo struct{ s *fakeStore }

func (r *fakeGraphRepo) Create(ctx context.Context, tx *gorm.DB, graphs []*types.Graph) ([]*types.Graph, error) {
	if r.s.failGraphCreate {
		return nil, fmt.Errorf("graph insert failed")
	}
	for _, g := range graphs {
		cp := *g
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = r.s.nextTime()
		}
		r.s.graphs[cp.ID] = &cp
	}
	return graphs, nil
}

func (r *fakeGraphRepo) GetByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Graph, error) {
	g, ok := r.s.graphs[graphID]
	if !ok || g.UserID != userID {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGraphRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Graph, error) {
	var out []*types.Graph
	for _, g := range r.s.graphs {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeGraphRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, title string) error {
	g, ok := r.s.graphs[graphID]
	if !ok || g.UserID != userID {
		return nil
	}
	g.Title = title
	return nil
}

func (r *fakeGraphRepo) TouchCreatedAt(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID, at time.Time) error {
	r.s.touchCalls++
	g, ok := r.s.graphs[graphID]
	if !ok || g.UserID != userID {
		return nil
	}
	g.CreatedAt = at
	return nil
}

func (r *fakeGraphRepo) DeleteByID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error {
	g, ok := r.s.graphs[graphID]
	if !ok || g.UserID != userID {
		return nil
	}
	delete(r.s.graphs, graphID)
	return nil
}

type fakeChatRepo struct{ s *fakeStore }

func (r *fakeChatRepo) Create(ctx context.Context, tx *gorm.DB, chats []*types.Chat) ([]*types.Chat, error) {
	if r.s.failChatCreate {
		return nil, fmt.Errorf("chat insert failed")
	}
	for _, c := range chats {
		cp := *c
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = r.s.nextTime()
		}
		r.s.chats[cp.ID] = &cp
	}
	return chats, nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error) {
	r.s.chatGetCalls++
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChatRepo) GetByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) ([]*types.Chat, error) {
	var out []*types.Chat
	for _, c := range r.s.chats {
		if c.GraphID == graphID && c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeChatRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID, userID uuid.UUID) ([]*types.Chat, error) {
	var out []*types.Chat
	for _, c := range r.s.chats {
		if c.ParentID != nil && *c.ParentID == parentID && c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeChatRepo) GetRootByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) (*types.Chat, error) {
	for _, c := range r.s.chats {
		if c.GraphID == graphID && c.UserID == userID && c.ParentID == nil {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID, title string) error {
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != userID {
		return nil
	}
	c.Title = title
	return nil
}

func (r *fakeChatRepo) DeleteByID(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) error {
	if r.s.failChatDelete[chatID] {
		return fmt.Errorf("chat delete failed")
	}
	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != userID {
		return nil
	}
	delete(r.s.chats, chatID)
	r.s.deletedChatOrder = append(r.s.deletedChatOrder, chatID)
	return nil
}

func (r *fakeChatRepo) DeleteByGraphID(ctx context.Context, tx *gorm.DB, graphID, userID uuid.UUID) error {
	for id, c := range r.s.chats {
		if c.GraphID == graphID && c.UserID == userID {
			delete(r.s.chats, id)
			r.s.deletedChatOrder = append(r.s.deletedChatOrder, id)
		}
	}
	return nil
}

type fakeMessageRepo struct{ s *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
	for _, m := range messages {
		cp := *m
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = r.s.nextTime()
		}
		r.s.messages[cp.ID] = &cp
	}
	return messages, nil
}

func (r *fakeMessageRepo) GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error) {
	r.s.msgGetCalls++
	var out []*types.Message
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
	if r.s.failMsgDelete {
		return fmt.Errorf("message delete failed")
	}
	for id, m := range r.s.messages {
		if m.ChatID == chatID {
			delete(r.s.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) DeleteByChatIDs(ctx context.Context, tx *gorm.DB, chatIDs []uuid.UUID) error {
	if r.s.failMsgDelete {
		return fmt.Errorf("message delete failed")
	}
	for _, chatID := range chatIDs {
		for id, m := range r.s.messages {
			if m.ChatID == chatID {
				delete(r.s.messages, id)
			}
		}
	}
	return nil
}

// fakeOpenAIClient scripts one reply and counts calls, so tests can assert
// exactly how many model round trips an operation costs.
type fakeOpenAIClient struct {
	reply     string
	err       error
	calls     int
	lastMsgs  []ChatMessage
	lastTemp  float64
}

func (f *fakeOpenAIClient) ChatCompletion(ctx context.Context, messages []ChatMessage, temperature float64) (string, error) {
	f.calls++
	f.lastMsgs = messages
	f.lastTemp = temperature
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSummarizer struct {
	summary string
	calls   int
}

func (f *fakeSummarizer) SummarizeChat(ctx context.Context, messages []*types.Message, inheritedContext string) string {
	f.calls++
	return f.summary
}
