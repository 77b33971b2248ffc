package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/conference-central/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context, principal application.Principal) (application.ProfileView, error)
	SaveProfile(ctx context.Context, principal application.Principal, input application.ProfileInput) (application.ProfileView, error)
}

type ProfileHandler struct {
	service   profileService
	responder responder
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, responder: newResponder(logger)}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{Profile: profile})
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	profile, err := h.service.SaveProfile(r.Context(), principal, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{Profile: profile})
}

type profileRequest struct {
	DisplayName  string `json:"displayName"`
	TeeShirtSize string `json:"teeShirtSize"`
}

func (r profileRequest) toInput() application.ProfileInput {
	return application.ProfileInput{
		DisplayName:  strings.TrimSpace(r.DisplayName),
		TeeShirtSize: strings.TrimSpace(r.TeeShirtSize),
	}
}

type profileResponse struct {
	Profile application.ProfileView `json:"profile"`
}
