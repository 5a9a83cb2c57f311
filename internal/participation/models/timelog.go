package models

import (
	"time"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

// TimeLog is one check-in session. CheckOutTime nil means the session is open.
// HoursWorked stays zero until the session closes and is stored with two decimals.
type TimeLog struct {
	ID              id.TimeLogID       `json:"id"`
	ParticipationID id.ParticipationID `json:"participation_id"`
	UserID          id.UserID          `json:"user_id"`
	EventID         id.EventID         `json:"event_id"`
	CheckInTime     time.Time          `json:"check_in_time"`
	CheckOutTime    *time.Time         `json:"check_out_time,omitempty"`
	HoursWorked     float64            `json:"hours_worked"`
}

// NewTimeLog opens a session for p at now.
func NewTimeLog(timeLogID id.TimeLogID, p *Participation, now time.Time) *TimeLog {
	return &TimeLog{
		ID:              timeLogID,
		ParticipationID: p.ID,
		UserID:          p.UserID,
		EventID:         p.EventID,
		CheckInTime:     now,
	}
}

func (t *TimeLog) IsOpen() bool {
	return t.CheckOutTime == nil
}

// Close ends the session at now and returns the unrounded hours to credit,
// clamped to [0, limit]. HoursWorked records the same value rounded to cents.
func (t *TimeLog) Close(now time.Time, limit float64) (float64, error) {
	if !t.IsOpen() {
		return 0, dErrors.New(dErrors.CodeNoOpenSession, "session already closed")
	}
	credited := SessionHours(t.CheckInTime, now, limit)
	t.CheckOutTime = &now
	t.HoursWorked = RoundHours(credited)
	return credited, nil
}
