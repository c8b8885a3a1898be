package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"hyperlens/internal/config"
	"hyperlens/internal/domain"
	"hyperlens/internal/security"
	"hyperlens/internal/service"
	"hyperlens/internal/ws"
)

// Deps carries everything the router needs wired in. Repositories are
// interfaces, so main decides whether mongo or the memory store backs them.
type Deps struct {
	Users      domain.UserRepository
	Businesses domain.BusinessRepository
	Broadcasts domain.BroadcastRepository
	Chats      domain.ChatRepository
	Messages   domain.MessageRepository
	Hub        *ws.Hub
	Tokens     *security.TokenService
	Hasher     *security.PasswordHasher
	Log        zerolog.Logger
}

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware.
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services. The hub is injected here rather than set on a package global
	// after the fact, so a service can never fire before the router is wired.
	authSvc := service.NewAuthService(d.Users, d.Tokens, d.Hasher)
	bizSvc := service.NewBusinessService(d.Businesses)
	bcSvc := service.NewBroadcastService(d.Businesses, d.Broadcasts, d.Hub)
	chatSvc := service.NewChatService(d.Chats, d.Messages, d.Businesses, d.Hub)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "hyperlens API is running", map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(d.Tokens, d.Users))
				r.Get("/me", handleMe())
			})
		})

		r.Route("/business", func(r chi.Router) {
			r.Get("/nearby", handleNearbyBusinesses(bizSvc))
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(d.Tokens, d.Users))
				r.With(RequireBusinessRole).Post("/register", handleRegisterBusiness(bizSvc))
				r.With(RequireBusinessRole).Get("/my", handleMyBusiness(bizSvc))
			})
		})

		r.Route("/broadcast", func(r chi.Router) {
			r.Get("/nearby", handleNearbyBroadcasts(bcSvc))
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(d.Tokens, d.Users))
				r.With(RequireBusinessRole).Post("/create", handleCreateBroadcast(bcSvc))
				r.With(RequireBusinessRole).Get("/my", handleMyBroadcasts(bcSvc))
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(AuthMiddleware(d.Tokens, d.Users))
			r.Post("/start", handleStartChat(chatSvc))
			r.Get("/my", handleMyChats(chatSvc))
			r.Get("/{chatID}/messages", handleChatMessages(chatSvc))
			r.Post("/send", handleSendMessage(chatSvc))
			r.Put("/{chatID}/read", handleMarkChatRead(chatSvc))
			r.Delete("/{chatID}", handleDeleteChat(chatSvc))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(d.Hub, d.Tokens, d.Users, d.Chats, cfg.CORSOrigins, d.Log))

	return r
}
