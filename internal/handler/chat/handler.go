package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/krishi-mitra/gateway/internal/geo"
	"github.com/krishi-mitra/gateway/internal/session"
	"github.com/krishi-mitra/gateway/pkg/utils"
)

// Handler exposes session and message endpoints.
type Handler struct {
	appCtx   context.Context
	registry *session.Registry
	sender   session.Sender
}

// New creates the chat handler. appCtx bounds the lifetime of
// session-scoped background work such as the geolocation probe.
func New(appCtx context.Context, registry *session.Registry, sender session.Sender) *Handler {
	return &Handler{
		appCtx:   appCtx,
		registry: registry,
		sender:   sender,
	}
}

// RegisterRoutes registers chat-related routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Delete("/session/{sessionID}", h.handleCloseSession)
	r.Get("/session/{sessionID}/messages", h.handleListMessages)
	r.Post("/session/{sessionID}/messages", h.handleSendMessage)
}

type createSessionRequest struct {
	Location *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type createSessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	// An empty body is fine; the location is optional.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	locator := geo.NewClientLocator()
	if payload.Location != nil {
		locator.Report(payload.Location.Lat, payload.Location.Lon)
	}

	// The probe's background resolve is bound to the session lifetime,
	// not the app's, so closing the session releases it.
	sessionCtx, cancel := context.WithCancel(h.appCtx)
	probe := geo.NewProbe(locator)
	probe.Run(sessionCtx)

	sess := session.New(h.sender, probe)
	h.registry.Add(session.Entry{Session: sess, Location: locator, Close: cancel})

	utils.RespondJSON(w, http.StatusCreated, createSessionResponse{
		ID:        sess.ID(),
		CreatedAt: sess.CreatedAt(),
	})
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Remove(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if entry.Close != nil {
		entry.Close()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, entry.Session.Messages())
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	bot, ok := entry.Session.SendMessage(r.Context(), payload.Text)
	if !ok {
		utils.RespondError(w, http.StatusConflict, "a message is already being processed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, bot)
}
