package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hyperlens/internal/domain"
	"hyperlens/internal/ws"
)

// DefaultMessagePageSize bounds how many messages a single fetch returns.
const DefaultMessagePageSize = 100

// ChatService orchestrates thread lifecycle, message flow, read-state
// transitions, and real-time emission.
type ChatService struct {
	chats      domain.ChatRepository
	messages   domain.MessageRepository
	businesses domain.BusinessRepository
	sink       EventSink
}

func NewChatService(chats domain.ChatRepository, messages domain.MessageRepository, businesses domain.BusinessRepository, sink EventSink) *ChatService {
	return &ChatService{
		chats:      chats,
		messages:   messages,
		businesses: businesses,
		sink:       sink,
	}
}

// Start returns the existing thread between the user and the business owner,
// or creates one. Idempotent: calling it twice yields the same thread.
func (s *ChatService) Start(ctx context.Context, userID, businessID string) (*domain.ChatThread, error) {
	if businessID == "" {
		return nil, fmt.Errorf("business id is required: %w", domain.ErrInvalidInput)
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business == nil {
		return nil, fmt.Errorf("business not found: %w", domain.ErrNotFound)
	}
	if business.OwnerID == userID {
		return nil, fmt.Errorf("cannot chat with your own business: %w", domain.ErrForbidden)
	}

	participants := []string{userID, business.OwnerID}
	existing, err := s.chats.FindByBusinessAndParticipants(ctx, businessID, participants)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	thread := &domain.ChatThread{
		Participants: participants,
		BusinessID:   businessID,
		UnreadCount: map[string]int{
			userID:           0,
			business.OwnerID: 0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chats.Create(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// Send persists a message, updates the thread's snapshot and unread counters,
// and pushes the event to the chat room and to each participant's user room.
func (s *ChatService) Send(ctx context.Context, senderID, chatID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if chatID == "" || text == "" {
		return nil, fmt.Errorf("chat id and text are required: %w", domain.ErrInvalidInput)
	}
	if len([]rune(text)) > 2000 {
		return nil, fmt.Errorf("message exceeds 2000 characters: %w", domain.ErrInvalidInput)
	}

	thread, err := s.requireParticipant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	last := domain.LastMessage{Text: text, SenderID: senderID, CreatedAt: now}
	var recipients []string
	for _, pid := range thread.Participants {
		if pid != senderID {
			recipients = append(recipients, pid)
		}
	}
	if err := s.chats.RecordMessage(ctx, chatID, last, recipients); err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}

	s.sink.EmitToRoom(ws.ChatRoom(chatID), map[string]any{
		"type":    "newMessage",
		"chatId":  chatID,
		"message": msg,
	})
	for _, pid := range thread.Participants {
		unread := thread.UnreadCount[pid]
		if pid != senderID {
			unread++
		}
		s.sink.EmitToRoom(ws.UserRoom(pid), map[string]any{
			"type":        "chatUpdated",
			"chatId":      chatID,
			"lastMessage": last,
			"unreadCount": unread,
		})
	}

	return msg, nil
}

// Messages returns the most recent messages of the thread in chronological
// order and resets the caller's unread counter (read-on-view).
func (s *ChatService) Messages(ctx context.Context, userID, chatID string, limit int) ([]*domain.Message, error) {
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultMessagePageSize {
		limit = DefaultMessagePageSize
	}

	msgs, err := s.messages.ListForChat(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	// The store returns newest first; flip to oldest first for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if err := s.chats.ResetUnread(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("reset unread: %w", err)
	}
	return msgs, nil
}

// MarkRead resets the caller's unread counter. Idempotent.
func (s *ChatService) MarkRead(ctx context.Context, userID, chatID string) error {
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chats.ResetUnread(ctx, chatID, userID)
}

// Mine returns every thread the caller participates in, most recently
// updated first.
func (s *ChatService) Mine(ctx context.Context, userID string) ([]*domain.ChatThread, error) {
	return s.chats.ListForUser(ctx, userID)
}

// Delete removes the thread and all of its messages. Irreversible.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	if _, err := s.messages.DeleteForChat(ctx, chatID); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chatID)
}

// requireParticipant loads the thread and verifies membership. A thread the
// caller does not belong to is reported as not found, so outsiders cannot
// probe which chat ids exist.
func (s *ChatService) requireParticipant(ctx context.Context, chatID, userID string) (*domain.ChatThread, error) {
	thread, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if thread == nil || !thread.HasParticipant(userID) {
		return nil, fmt.Errorf("chat not found: %w", domain.ErrNotFound)
	}
	return thread, nil
}
