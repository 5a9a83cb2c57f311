package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/leaderboard"
	"volunteerhub/internal/participation/models"
	"volunteerhub/internal/participation/service"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/httputil"
	"volunteerhub/pkg/platform/middleware/auth"
	"volunteerhub/pkg/requestcontext"
)

// Service is the participation core as seen by the HTTP layer.
type Service interface {
	CreateEvent(ctx context.Context, actor id.Actor, in service.CreateEventInput) (*models.Event, error)
	Apply(ctx context.Context, actor id.Actor, eventID id.EventID) (*models.Participation, error)
	Approve(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (*models.Participation, error)
	Complete(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (*service.CompletionResult, error)
	CheckIn(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (*models.TimeLog, error)
	CheckOut(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (*service.CheckOutResult, error)
	ListVolunteerParticipations(ctx context.Context, actor id.Actor) ([]models.VolunteerParticipation, error)
	ListEventApplications(ctx context.Context, actor id.Actor, eventID id.EventID) ([]models.EventApplication, error)
	ListUserBadges(ctx context.Context, actor id.Actor) ([]badge.HeldBadge, error)
	TopVolunteers(ctx context.Context, actor id.Actor, n int) ([]leaderboard.Entry, error)
	ListEvents(ctx context.Context, actor id.Actor, q service.EventQuery) ([]models.EventSummary, error)
	GetEvent(ctx context.Context, actor id.Actor, eventID id.EventID) (*models.EventSummary, error)
	ListServiceRecord(ctx context.Context, actor id.Actor) ([]audit.Event, error)
}

// Handler serves the participation endpoints. Routes expect the caller's
// Actor in the request context, placed there by auth.RequireAuth.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the participation routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.logger, id.RoleOrganization))
		r.Post("/events", h.handleCreateEvent)
		r.Get("/events/{eventID}/applications", h.handleListApplications)
		r.Post("/participations/{participationID}/approve", h.handleApprove)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.logger, id.RoleVolunteer))
		r.Post("/events/{eventID}/apply", h.handleApply)
		r.Post("/participations/{participationID}/complete", h.handleComplete)
		r.Post("/participations/{participationID}/check-in", h.handleCheckIn)
		r.Post("/participations/{participationID}/check-out", h.handleCheckOut)
		r.Get("/me/participations", h.handleListParticipations)
	})
	r.Get("/events", h.handleListEvents)
	r.Get("/events/{eventID}", h.handleGetEvent)
	r.Get("/me/badges", h.handleListBadges)
	r.Get("/me/service-record", h.handleServiceRecord)
	r.Get("/leaderboard", h.handleLeaderboard)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	event, err := h.service.CreateEvent(ctx, requestcontext.Actor(ctx), req.toInput())
	if err != nil {
		h.fail(ctx, w, "create event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var q service.EventQuery
	query := r.URL.Query()
	if raw := query.Get("organization_id"); raw != "" {
		orgID, err := id.ParseOrganizationID(raw)
		if err != nil {
			h.fail(ctx, w, "list events", err)
			return
		}
		q.OrganizationID = orgID
	}
	if raw := query.Get("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(ctx, w, "list events", dErrors.New(dErrors.CodeBadRequest, "upcoming must be a boolean"))
			return
		}
		q.Upcoming = upcoming
	}
	events, err := h.service.ListEvents(ctx, requestcontext.Actor(ctx), q)
	if err != nil {
		h.fail(ctx, w, "list events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: events})
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(ctx, w, "get event", err)
		return
	}
	event, err := h.service.GetEvent(ctx, requestcontext.Actor(ctx), eventID)
	if err != nil {
		h.fail(ctx, w, "get event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(ctx, w, "apply", err)
		return
	}
	p, err := h.service.Apply(ctx, requestcontext.Actor(ctx), eventID)
	if err != nil {
		h.fail(ctx, w, "apply", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(ctx, w, "list applications", err)
		return
	}
	apps, err := h.service.ListEventApplications(ctx, requestcontext.Actor(ctx), eventID)
	if err != nil {
		h.fail(ctx, w, "list applications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventApplicationsResponse{Applications: apps})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participationID, ok := h.participationID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Approve(ctx, requestcontext.Actor(ctx), participationID)
	if err != nil {
		h.fail(ctx, w, "approve", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participationID, ok := h.participationID(w, r)
	if !ok {
		return
	}
	result, err := h.service.Complete(ctx, requestcontext.Actor(ctx), participationID)
	if err != nil {
		h.fail(ctx, w, "complete", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participationID, ok := h.participationID(w, r)
	if !ok {
		return
	}
	log, err := h.service.CheckIn(ctx, requestcontext.Actor(ctx), participationID)
	if err != nil {
		h.fail(ctx, w, "check in", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, log)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participationID, ok := h.participationID(w, r)
	if !ok {
		return
	}
	result, err := h.service.CheckOut(ctx, requestcontext.Actor(ctx), participationID)
	if err != nil {
		h.fail(ctx, w, "check out", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListParticipations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.service.ListVolunteerParticipations(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.fail(ctx, w, "list participations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VolunteerParticipationsResponse{Participations: rows})
}

func (h *Handler) handleListBadges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	held, err := h.service.ListUserBadges(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.fail(ctx, w, "list badges", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BadgesResponse{Badges: held})
}

func (h *Handler) handleServiceRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.service.ListServiceRecord(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.fail(ctx, w, "list service record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ServiceRecordResponse{Events: events})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(ctx, w, "leaderboard", dErrors.New(dErrors.CodeBadRequest, "limit must be an integer"))
			return
		}
		limit = n
	}
	entries, err := h.service.TopVolunteers(ctx, requestcontext.Actor(ctx), limit)
	if err != nil {
		h.fail(ctx, w, "leaderboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
}

func (h *Handler) participationID(w http.ResponseWriter, r *http.Request) (id.ParticipationID, bool) {
	participationID, err := id.ParseParticipationID(chi.URLParam(r, "participationID"))
	if err != nil {
		h.fail(r.Context(), w, "parse participation id", err)
		return id.ParticipationID{}, false
	}
	return participationID, true
}

// fail logs at a level matching the error class and writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestID,
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, op+" rejected",
			"request_id", requestID,
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
