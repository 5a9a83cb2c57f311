// Package memory is the in-process store used in development and tests.
//
// A single DB backs every store. Mutating service operations run through
// DB.RunInTx, which admits one unit of work at a time and journals undo
// steps so a failing callback leaves no partial writes.
package memory

import (
	"context"
	"sync"
	"time"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

type userEventKey struct {
	user  id.UserID
	event id.EventID
}

type DB struct {
	sem     chan struct{}
	timeout time.Duration

	mu             sync.RWMutex
	participations map[id.ParticipationID]*models.Participation
	byUserEvent    map[userEventKey]id.ParticipationID
	timeLogs       map[id.TimeLogID]*models.TimeLog
	openByPart     map[id.ParticipationID]id.TimeLogID
	events         map[id.EventID]*models.Event
	users          map[id.UserID]*models.User
	badges         map[id.BadgeID]badge.Badge
	userBadges     map[id.UserID]map[id.BadgeID]*badge.UserBadge
	outbox         []outboxRow
}

type Option func(*DB)

// WithTxTimeout bounds transactions whose context carries no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.timeout = d
		}
	}
}

func NewDB(opts ...Option) *DB {
	db := &DB{
		sem:            make(chan struct{}, 1),
		timeout:        defaultTxTimeout,
		participations: make(map[id.ParticipationID]*models.Participation),
		byUserEvent:    make(map[userEventKey]id.ParticipationID),
		timeLogs:       make(map[id.TimeLogID]*models.TimeLog),
		openByPart:     make(map[id.ParticipationID]id.TimeLogID),
		events:         make(map[id.EventID]*models.Event),
		users:          make(map[id.UserID]*models.User),
		badges:         make(map[id.BadgeID]badge.Badge),
		userBadges:     make(map[id.UserID]map[id.BadgeID]*badge.UserBadge),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func (db *DB) Participations() *ParticipationStore { return &ParticipationStore{db: db} }
func (db *DB) TimeLogs() *TimeLogStore             { return &TimeLogStore{db: db} }
func (db *DB) Events() *EventStore                 { return &EventStore{db: db} }
func (db *DB) Users() *UserStore                   { return &UserStore{db: db} }
func (db *DB) Badges() *BadgeStore                 { return &BadgeStore{db: db} }
func (db *DB) Outbox() *OutboxStore                { return &OutboxStore{db: db} }

type journalKey struct{}

type journal struct {
	undo []func()
}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(journalKey{}).(*journal)
	return j
}

// record registers an undo step. Callers hold db.mu.
func record(ctx context.Context, undo func()) {
	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, undo)
	}
}

// RunInTx runs fn as one unit of work. A ctx that already carries a unit of
// work joins it.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.timeout)
		defer cancel()
	}

	select {
	case db.sem <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: lock wait timed out")
	}
	defer func() { <-db.sem }()

	j := &journal{}
	defer func() {
		if r := recover(); r != nil {
			db.rollback(j)
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		db.rollback(j)
		return err
	}
	if err := ctx.Err(); err != nil {
		db.rollback(j)
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: timed out")
	}
	return nil
}

func (db *DB) rollback(j *journal) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneParticipation(p *models.Participation) *models.Participation {
	c := *p
	c.ApprovedAt = cloneTime(p.ApprovedAt)
	c.CompletedAt = cloneTime(p.CompletedAt)
	return &c
}

func cloneTimeLog(t *models.TimeLog) *models.TimeLog {
	c := *t
	c.CheckOutTime = cloneTime(t.CheckOutTime)
	return &c
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func cloneUserBadge(ub *badge.UserBadge) *badge.UserBadge {
	c := *ub
	if ub.EventID != nil {
		e := *ub.EventID
		c.EventID = &e
	}
	return &c
}
