package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hyperlens/internal/domain"
	"hyperlens/internal/ws"
)

func TestStartChat(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesThread", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)

		thread, err := env.chat.Start(ctx, customer, biz.ID)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{customer, owner}, thread.Participants)
		assert.Equal(t, 0, thread.UnreadCount[customer])
		assert.Equal(t, 0, thread.UnreadCount[owner])
		assert.Empty(t, thread.LastMessage.Text)
	})

	t.Run("Idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)

		first, err := env.chat.Start(ctx, customer, biz.ID)
		assert.NoError(t, err)
		second, err := env.chat.Start(ctx, customer, biz.ID)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("SelfChatForbidden", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)

		_, err := env.chat.Start(ctx, owner, biz.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		threads, err := env.chat.Mine(ctx, owner)
		assert.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("BusinessMissing", func(t *testing.T) {
		env := newTestEnv(t)
		customer := env.addUser(t, "customer", domain.RoleUser)

		_, err := env.chat.Start(ctx, customer, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		before := time.Now().UTC()
		msg, err := env.chat.Send(ctx, customer, thread.ID, "  Is this available?  ")
		after := time.Now().UTC()

		assert.NoError(t, err)
		assert.Equal(t, "Is this available?", msg.Text)
		assert.Equal(t, customer, msg.SenderID)
		assert.False(t, msg.CreatedAt.Before(before))
		assert.False(t, msg.CreatedAt.After(after))

		msgs, err := env.chat.Messages(ctx, owner, thread.ID, 0)
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)
		assert.Equal(t, "Is this available?", msgs[0].Text)
	})

	t.Run("UnreadAccounting", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		for i := 0; i < 3; i++ {
			_, err := env.chat.Send(ctx, customer, thread.ID, "ping")
			assert.NoError(t, err)
		}

		got, err := env.chats.GetByID(ctx, thread.ID)
		assert.NoError(t, err)
		assert.Equal(t, 3, got.UnreadCount[owner])
		assert.Equal(t, 0, got.UnreadCount[customer])
		assert.Equal(t, "ping", got.LastMessage.Text)
		assert.Equal(t, customer, got.LastMessage.SenderID)

		// Reading resets the reader's counter only.
		_, err = env.chat.Messages(ctx, owner, thread.ID, 0)
		assert.NoError(t, err)
		got, _ = env.chats.GetByID(ctx, thread.ID)
		assert.Equal(t, 0, got.UnreadCount[owner])
	})

	t.Run("PushesToRooms", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		_, err := env.chat.Send(ctx, customer, thread.ID, "hello")
		assert.NoError(t, err)

		chatEvents := env.sink.roomEvents(ws.ChatRoom(thread.ID))
		assert.Len(t, chatEvents, 1)
		assert.Equal(t, "newMessage", chatEvents[0].(map[string]any)["type"])

		ownerEvents := env.sink.roomEvents(ws.UserRoom(owner))
		assert.Len(t, ownerEvents, 1)
		updated := ownerEvents[0].(map[string]any)
		assert.Equal(t, "chatUpdated", updated["type"])
		assert.Equal(t, 1, updated["unreadCount"])

		customerEvents := env.sink.roomEvents(ws.UserRoom(customer))
		assert.Len(t, customerEvents, 1)
		assert.Equal(t, 0, customerEvents[0].(map[string]any)["unreadCount"])
	})

	t.Run("EmptyText", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		_, err := env.chat.Send(ctx, customer, thread.ID, "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("NonParticipant", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		stranger := env.addUser(t, "stranger", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		_, err := env.chat.Send(ctx, stranger, thread.ID, "let me in")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListMessages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", domain.RoleBusiness)
	customer := env.addUser(t, "customer", domain.RoleUser)
	biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
	thread, _ := env.chat.Start(ctx, customer, biz.ID)

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		_, err := env.chat.Send(ctx, customer, thread.ID, text)
		assert.NoError(t, err)
		time.Sleep(2 * time.Millisecond) // distinct created_at per message
	}

	// Chronological order, oldest first.
	msgs, err := env.chat.Messages(ctx, owner, thread.ID, 0)
	assert.NoError(t, err)
	assert.Len(t, msgs, 3)
	for i, text := range texts {
		assert.Equal(t, text, msgs[i].Text)
	}

	// Limit keeps the most recent messages.
	msgs, err = env.chat.Messages(ctx, owner, thread.ID, 2)
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Text)
	assert.Equal(t, "third", msgs[1].Text)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", domain.RoleBusiness)
	customer := env.addUser(t, "customer", domain.RoleUser)
	biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
	thread, _ := env.chat.Start(ctx, customer, biz.ID)

	_, err := env.chat.Send(ctx, customer, thread.ID, "hello")
	assert.NoError(t, err)

	// Twice in a row: both leave the counter at zero.
	assert.NoError(t, env.chat.MarkRead(ctx, owner, thread.ID))
	got, _ := env.chats.GetByID(ctx, thread.ID)
	assert.Equal(t, 0, got.UnreadCount[owner])

	assert.NoError(t, env.chat.MarkRead(ctx, owner, thread.ID))
	got, _ = env.chats.GetByID(ctx, thread.ID)
	assert.Equal(t, 0, got.UnreadCount[owner])
}

func TestMyChats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	o1 := env.addUser(t, "o1", domain.RoleBusiness)
	o2 := env.addUser(t, "o2", domain.RoleBusiness)
	customer := env.addUser(t, "customer", domain.RoleUser)
	b1 := env.addBusiness(t, o1, "Shop One", 28.6, 77.2)
	b2 := env.addBusiness(t, o2, "Shop Two", 28.7, 77.3)

	t1, _ := env.chat.Start(ctx, customer, b1.ID)
	t2, _ := env.chat.Start(ctx, customer, b2.ID)

	time.Sleep(2 * time.Millisecond)
	_, err := env.chat.Send(ctx, customer, t1.ID, "bump")
	assert.NoError(t, err)

	// Most recently updated first.
	threads, err := env.chat.Mine(ctx, customer)
	assert.NoError(t, err)
	assert.Len(t, threads, 2)
	assert.Equal(t, t1.ID, threads[0].ID)
	assert.Equal(t, t2.ID, threads[1].ID)
}

func TestDeleteChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Cascade", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		for i := 0; i < 5; i++ {
			_, err := env.chat.Send(ctx, customer, thread.ID, "msg")
			assert.NoError(t, err)
		}

		assert.NoError(t, env.chat.Delete(ctx, customer, thread.ID))

		remaining, err := env.messages.ListForChat(ctx, thread.ID, 100)
		assert.NoError(t, err)
		assert.Empty(t, remaining)

		gone, err := env.chats.GetByID(ctx, thread.ID)
		assert.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("NonParticipant", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.addUser(t, "owner", domain.RoleBusiness)
		customer := env.addUser(t, "customer", domain.RoleUser)
		stranger := env.addUser(t, "stranger", domain.RoleUser)
		biz := env.addBusiness(t, owner, "Shop", 28.6, 77.2)
		thread, _ := env.chat.Start(ctx, customer, biz.ID)

		err := env.chat.Delete(ctx, stranger, thread.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
