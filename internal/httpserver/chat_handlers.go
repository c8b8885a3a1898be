package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hyperlens/internal/service"
)

type chatStartRequest struct {
	BusinessID string `json:"businessId" validate:"required"`
}

type chatSendRequest struct {
	ChatID string `json:"chatId" validate:"required"`
	Text   string `json:"text" validate:"required,max=2000"`
}

func handleStartChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "business ID is required")
			return
		}

		thread, err := chatSvc.Start(r.Context(), CurrentUser(r).ID, req.BusinessID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"chat": thread})
	}
}

func handleMyChats(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threads, err := chatSvc.Mine(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"count": len(threads),
			"chats": threads,
		})
	}
}

func handleChatMessages(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatID")
		messages, err := chatSvc.Messages(r.Context(), CurrentUser(r).ID, chatID, service.DefaultMessagePageSize)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", map[string]any{"messages": messages})
	}
}

func handleSendMessage(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatSendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "chat ID and text are required")
			return
		}

		msg, err := chatSvc.Send(r.Context(), CurrentUser(r).ID, req.ChatID, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		// "message" carries the created message here, mirroring the API shape
		// clients already consume.
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": msg,
		})
	}
}

func handleMarkChatRead(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatID")
		if err := chatSvc.MarkRead(r.Context(), CurrentUser(r).ID, chatID); err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", nil)
	}
}

func handleDeleteChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatID")
		if err := chatSvc.Delete(r.Context(), CurrentUser(r).ID, chatID); err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "chat deleted", nil)
	}
}
