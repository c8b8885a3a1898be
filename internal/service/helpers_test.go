package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"hyperlens/internal/domain"
	"hyperlens/internal/security"
	"hyperlens/internal/service"
	"hyperlens/internal/store/memory"
)

// recordingSink captures pushed events instead of delivering them.
type recordingSink struct {
	mu     sync.Mutex
	global []any
	rooms  map[string][]any
}

func newRecordingSink() *recordingSink {
	return &recordingSink{rooms: make(map[string][]any)}
}

func (s *recordingSink) BroadcastAll(payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = append(s.global, payload)
}

func (s *recordingSink) EmitToRoom(room string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room] = append(s.rooms[room], payload)
}

func (s *recordingSink) roomEvents(room string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.rooms[room]...)
}

// testEnv wires the full service stack onto the memory store.
type testEnv struct {
	users      *memory.UserRepo
	businesses *memory.BusinessRepo
	broadcasts *memory.BroadcastRepo
	chats      *memory.ChatRepo
	messages   *memory.MessageRepo

	sink *recordingSink

	auth *service.AuthService
	biz  *service.BusinessService
	bc   *service.BroadcastService
	chat *service.ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:      memory.NewUserRepo(),
		businesses: memory.NewBusinessRepo(),
		broadcasts: memory.NewBroadcastRepo(),
		chats:      memory.NewChatRepo(),
		messages:   memory.NewMessageRepo(),
		sink:       newRecordingSink(),
	}

	tokens := security.NewTokenService("test-secret", time.Hour)
	hasher := security.NewPasswordHasher(4) // low cost for tests

	env.auth = service.NewAuthService(env.users, tokens, hasher)
	env.biz = service.NewBusinessService(env.businesses)
	env.bc = service.NewBroadcastService(env.businesses, env.broadcasts, env.sink)
	env.chat = service.NewChatService(env.chats, env.messages, env.businesses, env.sink)
	return env
}

// addUser inserts a user directly and returns its id.
func (env *testEnv) addUser(t *testing.T, name, role string) string {
	t.Helper()
	u := &domain.User{
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := env.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

// addBusiness inserts a business at the given coordinates and returns it.
func (env *testEnv) addBusiness(t *testing.T, ownerID, shopName string, lat, lng float64) *domain.Business {
	t.Helper()
	b, err := env.biz.Register(context.Background(), ownerID, service.BusinessRegisterInput{
		ShopName: shopName,
		Category: "Kirana",
		Address:  "Main Road",
		Lat:      lat,
		Lng:      lng,
	})
	if err != nil {
		t.Fatalf("register business %s: %v", shopName, err)
	}
	return b
}
