package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/leaderboard"
	"volunteerhub/internal/participation/metrics"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/sentinel"
	"volunteerhub/pkg/requestcontext"
)

const tracerName = "volunteerhub/participation"

// Stores groups the persistence the service orchestrates. All of them must
// join transactions started by the StoreTx they are passed with.
type Stores struct {
	Participations ParticipationStore
	TimeLogs       TimeLogStore
	Events         EventStore
	Users          UserStore
	Badges         BadgeStore
}

// Service runs the participation state machine and the time-tracking engine.
// Every mutation is one RunInTx unit of work. Compliance events go to the
// outbox inside it; operations events, leaderboard updates and metrics
// happen only after it commits.
type Service struct {
	tx             StoreTx
	participations ParticipationStore
	timeLogs       TimeLogStore
	events         EventStore
	users          UserStore
	badges         BadgeStore
	awarder        *badge.Awarder

	logger         *slog.Logger
	outbox         Outbox
	auditPublisher AuditPublisher
	leaderboard    Leaderboard
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	clock          func() time.Time
	sessionCap     float64
	catalog        []badge.Badge
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithOutbox makes compliance events part of the transaction that credits
// hours. Without it they are published after commit like any other event.
func WithOutbox(outbox Outbox) Option {
	return func(s *Service) {
		s.outbox = outbox
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithLeaderboard(board Leaderboard) Option {
	return func(s *Service) {
		s.leaderboard = board
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithClock overrides the request clock. Without it the service reads
// requestcontext.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithSessionCap sets the ceiling on hours credited for one check-in session.
func WithSessionCap(hours float64) Option {
	return func(s *Service) {
		if hours > 0 {
			s.sessionCap = hours
		}
	}
}

// WithCatalog replaces the default badge catalog.
func WithCatalog(catalog []badge.Badge) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func New(tx StoreTx, stores Stores, opts ...Option) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("store tx is required")
	}
	if stores.Participations == nil || stores.TimeLogs == nil || stores.Events == nil ||
		stores.Users == nil || stores.Badges == nil {
		return nil, fmt.Errorf("all participation stores are required")
	}
	s := &Service{
		tx:             tx,
		participations: stores.Participations,
		timeLogs:       stores.TimeLogs,
		events:         stores.Events,
		users:          stores.Users,
		badges:         stores.Badges,
		sessionCap:     models.MaxSessionHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.leaderboard == nil {
		s.leaderboard = leaderboard.NewInMemory()
	}
	awarder, err := badge.NewAwarder(s.badges, s.catalog)
	if err != nil {
		return nil, err
	}
	s.awarder = awarder
	return s, nil
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return requestcontext.Now(ctx)
}

// observe opens a span for operation and returns a func that closes it and
// records metrics. Call it deferred with a pointer to the named error result.
func (s *Service) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "participation."+operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		err := *errp
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, start, err)
		}
	}
}

// translate maps a store error onto a coded error. Coded errors pass
// through so failures raised inside a transaction keep their code.
func translate(err error, notFound, op string) error {
	if err == nil {
		return nil
	}
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, op+": conflict")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeInternal, op+": store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
}

func requireVolunteer(actor id.Actor) error {
	if !actor.IsAuthenticated() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !actor.HasRole(id.RoleVolunteer) {
		return dErrors.New(dErrors.CodeForbidden, "only volunteers can perform this action")
	}
	return nil
}

func requireOrganization(actor id.Actor) error {
	if !actor.IsAuthenticated() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !actor.HasRole(id.RoleOrganization) || actor.OrganizationID.IsNil() {
		return dErrors.New(dErrors.CodeForbidden, "only organizations can perform this action")
	}
	return nil
}

// publish logs and emits audit events after commit. Emit failures are
// logged; the committed transition stands. Compliance events already in the
// outbox are only logged here.
func (s *Service) publish(ctx context.Context, events ...audit.Event) {
	requestID := requestcontext.RequestID(ctx)
	for _, event := range events {
		event.RequestID = requestID
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		s.logger.InfoContext(ctx, string(event.Action),
			"request_id", requestID,
			"user_id", event.UserID.String(),
			"participation_id", event.ParticipationID.String(),
		)
		if s.auditPublisher == nil {
			continue
		}
		if s.outbox != nil && event.Category() == audit.CategoryCompliance {
			continue
		}
		if err := s.auditPublisher.Emit(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event",
				"error", err,
				"action", string(event.Action),
				"request_id", requestID,
			)
		}
	}
}

// appendCompliance writes events to the outbox. It must run inside the
// transaction whose writes the events describe; an error aborts it.
func (s *Service) appendCompliance(ctx context.Context, events ...audit.Event) error {
	if s.outbox == nil {
		return nil
	}
	for _, event := range events {
		if err := s.outbox.Append(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record "+string(event.Action))
		}
	}
	return nil
}

// recordTotal refreshes the leaderboard after a committed hour change.
func (s *Service) recordTotal(ctx context.Context, userID id.UserID, total float64) {
	if err := s.leaderboard.Record(ctx, userID, total); err != nil {
		s.logger.WarnContext(ctx, "failed to update leaderboard",
			"error", err,
			"user_id", userID.String(),
		)
	}
}

// creditHours adds hours to the locked user row and runs the badge awarder
// with the new total. Must be called inside a transaction.
func (s *Service) creditHours(ctx context.Context, userID id.UserID, hours float64, eventID id.EventID, now time.Time) (float64, []badge.Badge, error) {
	user, err := s.users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		return 0, nil, translate(err, "user not found", "load user")
	}
	if hours > 0 {
		user.AddHours(hours)
		if err := s.users.UpdateTotalHours(ctx, user.ID, user.TotalVolunteerHours); err != nil {
			return 0, nil, translate(err, "user not found", "update user hours")
		}
	}
	awarded, err := s.awarder.Award(ctx, user.ID, user.TotalVolunteerHours, &eventID, now)
	if err != nil {
		return 0, nil, err
	}
	return user.TotalVolunteerHours, awarded, nil
}

// creditTrail is the compliance record of one credit: head followed by one
// badge_awarded per new badge.
func creditTrail(ctx context.Context, head audit.Event, awarded []badge.Badge) []audit.Event {
	requestID := requestcontext.RequestID(ctx)
	head.ID = uuid.New()
	head.RequestID = requestID
	trail := make([]audit.Event, 0, len(awarded)+1)
	trail = append(trail, head)
	for _, b := range awarded {
		trail = append(trail, audit.Event{
			ID:         uuid.New(),
			Timestamp:  head.Timestamp,
			Action:     audit.EventBadgeAwarded,
			UserID:     head.UserID,
			RequestID:  requestID,
			EventID:    head.EventID,
			BadgeID:    b.ID,
			TotalHours: head.TotalHours,
		})
	}
	return trail
}

func (s *Service) afterCredit(ctx context.Context, userID id.UserID, hours, total float64, awarded []badge.Badge, trail []audit.Event) {
	s.publish(ctx, trail...)
	s.recordTotal(ctx, userID, total)
	if s.metrics != nil {
		s.metrics.AddHoursCredited(hours)
		for _, b := range awarded {
			s.metrics.IncrementBadgeAwarded(b.ID)
		}
	}
}
