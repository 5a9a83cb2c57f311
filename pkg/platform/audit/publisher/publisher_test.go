package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "volunteerhub/pkg/domain"
	audit "volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/audit/store/memory"
)

type PublisherSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	user  id.UserID
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.user = id.UserID(uuid.New())
}

func (s *PublisherSuite) event(action audit.AuditEvent) audit.Event {
	return audit.Event{UserID: s.user, Action: action}
}

func (s *PublisherSuite) TestSynchronousEmitReachesStore() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventParticipationApplied)))

	got, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(audit.EventParticipationApplied, got[0].Action)
}

func (s *PublisherSuite) TestCloseDrainsBufferedEvents() {
	pub := NewPublisher(s.store, WithAsyncBuffer(32))
	for range 12 {
		s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventSessionCheckedOut)))
	}
	pub.Close()

	s.Equal(12, s.store.CountByAction(audit.EventSessionCheckedOut))
}

func (s *PublisherSuite) TestEmitAfterCloseGoesStraightToStore() {
	pub := NewPublisher(s.store, WithAsyncBuffer(2))
	pub.Close()
	pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventBadgeAwarded)))
	s.Equal(1, s.store.CountByAction(audit.EventBadgeAwarded))
}

func (s *PublisherSuite) TestFullBufferRejectsWithoutBlocking() {
	pub := NewPublisher(s.store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pub.Emit(s.ctx, s.event(audit.EventSessionCheckedIn)); err != nil {
				s.ErrorIs(err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func (s *PublisherSuite) TestTimestamp() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	stamped := s.event(audit.EventParticipationCompleted)
	stamped.Timestamp = fixed

	before := time.Now()
	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventParticipationApproved)))
	s.Require().NoError(pub.Emit(s.ctx, stamped))

	got, err := s.store.ListByUser(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.False(got[0].Timestamp.Before(before), "zero timestamp is filled with now")
	s.Equal(fixed, got[1].Timestamp, "caller timestamp is kept")
}

type failingSink struct{}

func (failingSink) Append(context.Context, audit.Event) error { return errors.New("sink down") }

func (s *PublisherSuite) TestSynchronousSinkErrorIsReturned() {
	pub := NewPublisher(failingSink{})
	s.EqualError(pub.Emit(s.ctx, s.event(audit.EventEventCreated)), "sink down")
}

func TestCategory(t *testing.T) {
	cases := map[audit.AuditEvent]audit.EventCategory{
		audit.EventBadgeAwarded:         audit.CategoryCompliance,
		audit.EventSessionCheckedOut:    audit.CategoryCompliance,
		audit.EventParticipationApplied: audit.CategoryOperations,
		audit.AuditEvent("unknown"):     audit.CategoryOperations,
	}
	for action, want := range cases {
		if got := action.Category(); got != want {
			t.Errorf("%s: got %s, want %s", action, got, want)
		}
	}
}
