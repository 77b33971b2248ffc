package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-central/internal/application"
)

type sessionService interface {
	CreateSession(ctx context.Context, principal application.Principal, input application.SessionInput) (application.SessionView, error)
	ListConferenceSessions(ctx context.Context, websafeConferenceKey string) ([]application.SessionView, error)
	ListConferenceSessionsByType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]application.SessionView, error)
	ListSessionsBySpeaker(ctx context.Context, principal application.Principal) ([]application.SessionView, error)
	AddSessionToWishlist(ctx context.Context, principal application.Principal, websafeSessionKey string) (application.SessionView, error)
	ListWishlistSessions(ctx context.Context, principal application.Principal, websafeConferenceKey string) ([]application.SessionView, error)
}

type SessionHandler struct {
	service   sessionService
	responder responder
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ConferenceKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceKey)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.service.CreateSession(r.Context(), principal, req.toInput(key))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: session})
}

// List serves every session of a conference, optionally narrowed to a single
// session type via the "type" query parameter.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ConferenceKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceKey)
		return
	}

	var sessions []application.SessionView
	var err error
	if typeOfSession := strings.TrimSpace(r.URL.Query().Get("type")); typeOfSession != "" {
		sessions, err = h.service.ListConferenceSessionsByType(r.Context(), key, typeOfSession)
	} else {
		sessions, err = h.service.ListConferenceSessions(r.Context(), key)
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) ListBySpeaker(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	sessions, err := h.service.ListSessionsBySpeaker(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := SessionKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionKey)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.service.AddSessionToWishlist(r.Context(), principal, key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: session})
}

func (h *SessionHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ConferenceKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceKey)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	sessions, err := h.service.ListWishlistSessions(r.Context(), principal, key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

type sessionRequest struct {
	Name          string   `json:"name"`
	Highlights    []string `json:"highlights"`
	Speaker       string   `json:"speaker"`
	Duration      int      `json:"duration"`
	TypeOfSession string   `json:"typeOfSession"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime"`
}

func (r sessionRequest) toInput(websafeConferenceKey string) application.SessionInput {
	return application.SessionInput{
		ConferenceKey: websafeConferenceKey,
		Name:          strings.TrimSpace(r.Name),
		Highlights:    append([]string(nil), r.Highlights...),
		SpeakerUserID: strings.TrimSpace(r.Speaker),
		Duration:      r.Duration,
		TypeOfSession: strings.TrimSpace(r.TypeOfSession),
		Date:          strings.TrimSpace(r.Date),
		StartTime:     strings.TrimSpace(r.StartTime),
	}
}

type sessionResponse struct {
	Session application.SessionView `json:"session"`
}

type listSessionsResponse struct {
	Sessions []application.SessionView `json:"sessions"`
}
