package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-central/internal/application"
)

type conferenceService interface {
	CreateConference(ctx context.Context, principal application.Principal, input application.ConferenceInput) (application.ConferenceView, error)
	UpdateConference(ctx context.Context, principal application.Principal, websafeKey string, input application.ConferenceInput) (application.ConferenceView, error)
	GetConference(ctx context.Context, websafeKey string) (application.ConferenceView, error)
	QueryConferences(ctx context.Context, filters []application.Filter) ([]application.ConferenceView, error)
	ListConferencesCreated(ctx context.Context, principal application.Principal) ([]application.ConferenceView, error)
	ListConferencesToAttend(ctx context.Context, principal application.Principal) ([]application.ConferenceView, error)
	RegisterForConference(ctx context.Context, principal application.Principal, websafeKey string) (bool, error)
	UnregisterFromConference(ctx context.Context, principal application.Principal, websafeKey string) (bool, error)
}

type announcementSource interface {
	Current() string
}

type ConferenceHandler struct {
	service       conferenceService
	announcements announcementSource
	responder     responder
}

func NewConferenceHandler(service conferenceService, announcements announcementSource, logger *slog.Logger) *ConferenceHandler {
	return &ConferenceHandler{
		service:       service,
		announcements: announcements,
		responder:     newResponder(logger),
	}
}

func (h *ConferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	conference, err := h.service.CreateConference(r.Context(), principal, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, conferenceResponse{Conference: conference})
}

func (h *ConferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ConferenceKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceKey)
		return
	}

	var req conferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	conference, err := h.service.UpdateConference(r.Context(), principal, key, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conferenceResponse{Conference: conference})
}

func (h *ConferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ConferenceKeyFromContext(r.Context())
	if !ok || strings.TrimSpace(key) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConferenceKey)
		return
	}

	conference, err := h.service.GetConference(r.Context(), key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conferenceResponse{Conference: conference})
}

func (h *ConferenceHandler) Query(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req queryConferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	conferences, err := h.service.QueryConferences(r.Context(), req.toFilters())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listConferencesResponse{Conferences: conferences})
}

func (h *ConferenceHandler) ListCreated(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	conferences, err := h.service.ListConferencesCreated(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listConferencesResponse{Conferences: conferences})
}

func (h *ConferenceHandler) ListAttending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	conferences, err := h.service.ListConferencesToAttend(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listConferencesResponse{Conferences: conferences})
}

func (h *ConferenceHandler) Register(w http.ResponseWriter, r *http.Request) {
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

	registered, err := h.service.RegisterForConference(r.Context(), principal, key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationResponse{Registered: registered})
}

func (h *ConferenceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
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

	removed, err := h.service.UnregisterFromConference(r.Context(), principal, key)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, unregistrationResponse{Removed: removed})
}

func (h *ConferenceHandler) Announcement(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.announcements == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, announcementResponse{
		Announcement: h.announcements.Current(),
	})
}

type conferenceRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	City         string   `json:"city"`
	Topics       []string `json:"topics"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	MaxAttendees int      `json:"maxAttendees"`
}

func (r conferenceRequest) toInput() application.ConferenceInput {
	return application.ConferenceInput{
		Name:         strings.TrimSpace(r.Name),
		Description:  r.Description,
		City:         strings.TrimSpace(r.City),
		Topics:       append([]string(nil), r.Topics...),
		StartDate:    strings.TrimSpace(r.StartDate),
		EndDate:      strings.TrimSpace(r.EndDate),
		MaxAttendees: r.MaxAttendees,
	}
}

type queryConferencesRequest struct {
	Filters []filterDTO `json:"filters"`
}

type filterDTO struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

func (r queryConferencesRequest) toFilters() []application.Filter {
	if len(r.Filters) == 0 {
		return nil
	}
	out := make([]application.Filter, 0, len(r.Filters))
	for _, filter := range r.Filters {
		out = append(out, application.Filter{
			Field:    strings.TrimSpace(filter.Field),
			Operator: strings.TrimSpace(filter.Operator),
			Value:    strings.TrimSpace(filter.Value),
		})
	}
	return out
}

type conferenceResponse struct {
	Conference application.ConferenceView `json:"conference"`
}

type listConferencesResponse struct {
	Conferences []application.ConferenceView `json:"conferences"`
}

type registrationResponse struct {
	Registered bool `json:"registered"`
}

type unregistrationResponse struct {
	Removed bool `json:"removed"`
}

type announcementResponse struct {
	Announcement string `json:"announcement"`
}
