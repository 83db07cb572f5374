package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/krishi-mitra/gateway/internal/backend"
	chatHandler "github.com/krishi-mitra/gateway/internal/handler/chat"
	classifyHandler "github.com/krishi-mitra/gateway/internal/handler/classify"
	suggestionHandler "github.com/krishi-mitra/gateway/internal/handler/suggestion"
	voiceHandler "github.com/krishi-mitra/gateway/internal/handler/voice"
	middlewarePkg "github.com/krishi-mitra/gateway/internal/middleware"
	suggestionModel "github.com/krishi-mitra/gateway/internal/model/suggestion"
	"github.com/krishi-mitra/gateway/internal/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(appCtx context.Context, registry *session.Registry, backendClient *backend.Client, suggestions suggestionModel.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chat := chatHandler.New(appCtx, registry, backendClient)
	classify := classifyHandler.New(backendClient)
	suggestion := suggestionHandler.New(suggestions)
	voice := voiceHandler.New(registry)

	r.Route("/api", func(api chi.Router) {
		chat.RegisterRoutes(api)
		classify.RegisterRoutes(api)
		suggestion.RegisterRoutes(api)
		voice.RegisterRoutes(api)
	})

	return r
}
