package ws

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hyperlens/internal/domain"
	"hyperlens/internal/security"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
// Authenticates via Bearer token (Authorization header or
// Sec-WebSocket-Protocol), then dispatches control events:
//   - joinUserRoom -> join the caller's personal notification room
//   - joinChat     -> join chat:<id> after a participant check
//   - leaveChat    -> leave chat:<id>
//   - typing       -> relay userTyping to other chat room members
//   - stopTyping   -> relay userStoppedTyping to other chat room members
//
// Disconnecting drops every room membership; nothing is replayed on
// reconnect.
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	chats domain.ChatRepository,
	allowedOrigins []string,
	log zerolog.Logger,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		sub, ok := security.Subject(claims)
		if !ok {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByID(ctx, sub)
		if err != nil || user == nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID := uuid.NewString()
		slog := log.With().Str("session", sessionID).Str("user", user.ID).Logger()
		slog.Debug().Msg("ws: session connected")

		hub.Register(conn)
		defer func() {
			hub.Unregister(conn)
			slog.Debug().Msg("ws: session disconnected")
		}()

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				break
			}
			eventType, _ := payload["type"].(string)
			switch eventType {

			case "joinUserRoom":
				// The room is derived from the authenticated identity; a
				// client cannot join another user's notification channel.
				hub.Join(conn, UserRoom(user.ID))

			case "joinChat":
				chatID, _ := payload["chatId"].(string)
				if chatID == "" {
					sendError(conn, "joinChat requires chatId")
					continue
				}
				thread, err := chats.GetByID(ctx, chatID)
				if err != nil || thread == nil || !thread.HasParticipant(user.ID) {
					sendError(conn, "not allowed for this chat")
					continue
				}
				hub.Join(conn, ChatRoom(chatID))

			case "leaveChat":
				chatID, _ := payload["chatId"].(string)
				if chatID != "" {
					hub.Leave(conn, ChatRoom(chatID))
				}

			case "typing":
				chatID, _ := payload["chatId"].(string)
				userName, _ := payload["userName"].(string)
				if chatID == "" {
					continue
				}
				if !isParticipant(r, chats, chatID, user.ID) {
					sendError(conn, "not allowed for this chat")
					continue
				}
				if userName == "" {
					userName = user.Name
				}
				hub.EmitToRoomExcept(ChatRoom(chatID), conn, map[string]any{
					"type":     "userTyping",
					"chatId":   chatID,
					"userName": userName,
				})

			case "stopTyping":
				chatID, _ := payload["chatId"].(string)
				if chatID == "" {
					continue
				}
				if !isParticipant(r, chats, chatID, user.ID) {
					continue
				}
				hub.EmitToRoomExcept(ChatRoom(chatID), conn, map[string]any{
					"type":   "userStoppedTyping",
					"chatId": chatID,
				})

			default:
				slog.Debug().Str("event", eventType).Msg("ws: unknown event type")
			}
		}
	}
}

func isParticipant(r *http.Request, chats domain.ChatRepository, chatID, userID string) bool {
	thread, err := chats.GetByID(r.Context(), chatID)
	return err == nil && thread != nil && thread.HasParticipant(userID)
}

func sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(map[string]any{
		"type":    "error",
		"message": msg,
	})
}
