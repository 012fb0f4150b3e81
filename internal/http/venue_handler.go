package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/campus-coordinator/internal/application"
)

type venueService interface {
	CreateVenue(ctx context.Context, params application.CreateVenueParams) (application.Venue, error)
	UpdateVenue(ctx context.Context, params application.UpdateVenueParams) (application.Venue, error)
	GetVenue(ctx context.Context, id string) (application.Venue, error)
	ListVenues(ctx context.Context, actor application.Actor) ([]application.Venue, error)
}

type conflictChecker interface {
	CheckVenueConflict(ctx context.Context, query application.VenueConflictQuery) ([]application.ConflictWarning, error)
}

// VenueHandler exposes the venue catalog over HTTP.
type VenueHandler struct {
	service   venueService
	conflicts conflictChecker
	responder responder
	logger    *slog.Logger
}

// NewVenueHandler constructs a venue handler.
func NewVenueHandler(service venueService, conflicts conflictChecker, logger *slog.Logger) *VenueHandler {
	base := defaultLogger(logger)
	return &VenueHandler{service: service, conflicts: conflicts, responder: newResponder(base), logger: base}
}

func (h *VenueHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "VenueHandler", operation, attrs...)
}

// Create handles POST /venues.
func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", actor.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode venue request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", actor.UserID)

	venue, err := h.service.CreateVenue(r.Context(), application.CreateVenueParams{
		Actor: actor,
		Input: req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "venue creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("venue_id", venue.ID).InfoContext(r.Context(), "venue created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, venueResponse{Venue: toVenueDTO(venue)})
}

// Update handles PUT /venues/{venueID}.
func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := chi.URLParam(r, "venueID")
	if strings.TrimSpace(venueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVenueID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "actor_id", actor.UserID, "venue_id", venueID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode venue update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", actor.UserID, "venue_id", venueID)

	venue, err := h.service.UpdateVenue(r.Context(), application.UpdateVenueParams{
		Actor:   actor,
		VenueID: venueID,
		Input:   req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "venue update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "venue updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, venueResponse{Venue: toVenueDTO(venue)})
}

// List handles GET /venues.
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "List", "actor_id", actor.UserID)

	venues, err := h.service.ListVenues(r.Context(), actor)
	if err != nil {
		logger.ErrorContext(r.Context(), "venue list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(venues)).InfoContext(r.Context(), "venues listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listVenuesResponse{Venues: toVenueDTOs(venues)})
}

// Get handles GET /venues/{venueID}.
func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := chi.URLParam(r, "venueID")
	if strings.TrimSpace(venueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVenueID)
		return
	}

	venue, err := h.service.GetVenue(r.Context(), venueID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, venueResponse{Venue: toVenueDTO(venue)})
}

// Conflicts handles GET /venues/{venueID}/conflict.
func (h *VenueHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.conflicts == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	venueID := chi.URLParam(r, "venueID")
	if strings.TrimSpace(venueID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVenueID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	start, err := parseTimestampParam(r.URL.Query().Get("start"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	end, err := parseTimestampParam(r.URL.Query().Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Conflicts", "actor_id", actor.UserID, "venue_id", venueID)

	warnings, err := h.conflicts.CheckVenueConflict(r.Context(), application.VenueConflictQuery{
		Actor:          actor,
		VenueID:        venueID,
		Start:          start,
		End:            end,
		ExcludeEventID: strings.TrimSpace(r.URL.Query().Get("exclude_event_id")),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "conflict check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("conflict_count", len(warnings)).InfoContext(r.Context(), "conflicts checked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictResponse{
		HasConflict: len(warnings) > 0,
		Warnings:    toWarningDTOs(warnings),
	})
}

func parseTimestampParam(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

type venueRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
	Location *string  `json:"location"`
}

func (r venueRequest) toInput() application.VenueInput {
	return application.VenueInput{
		Name:     strings.TrimSpace(r.Name),
		Type:     strings.TrimSpace(r.Type),
		Capacity: r.Capacity,
		Features: r.Features,
		Location: r.Location,
	}
}

type venueResponse struct {
	Venue venueDTO `json:"venue"`
}

type listVenuesResponse struct {
	Venues []venueDTO `json:"venues"`
}

type conflictResponse struct {
	HasConflict bool         `json:"has_conflict"`
	Warnings    []warningDTO `json:"warnings,omitempty"`
}

type venueDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Capacity  int      `json:"capacity"`
	Features  []string `json:"features,omitempty"`
	Location  *string  `json:"location,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toVenueDTO(venue application.Venue) venueDTO {
	return venueDTO{
		ID:        venue.ID,
		Name:      venue.Name,
		Type:      venue.Type,
		Capacity:  venue.Capacity,
		Features:  venue.Features,
		Location:  venue.Location,
		CreatedAt: formatTimestamp(venue.CreatedAt),
		UpdatedAt: formatTimestamp(venue.UpdatedAt),
	}
}

func toVenueDTOs(venues []application.Venue) []venueDTO {
	if len(venues) == 0 {
		return nil
	}
	out := make([]venueDTO, 0, len(venues))
	for _, venue := range venues {
		out = append(out, toVenueDTO(venue))
	}
	return out
}
