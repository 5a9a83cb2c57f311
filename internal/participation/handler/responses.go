package handler

import (
	"volunteerhub/internal/badge"
	"volunteerhub/internal/leaderboard"
	"volunteerhub/internal/participation/models"
	"volunteerhub/pkg/platform/audit"
)

type EventsResponse struct {
	Events []models.EventSummary `json:"events"`
}

type VolunteerParticipationsResponse struct {
	Participations []models.VolunteerParticipation `json:"participations"`
}

type EventApplicationsResponse struct {
	Applications []models.EventApplication `json:"applications"`
}

type BadgesResponse struct {
	Badges []badge.HeldBadge `json:"badges"`
}

type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

// ServiceRecordResponse lists the caller's credited hours and badges as
// recorded at commit time.
type ServiceRecordResponse struct {
	Events []audit.Event `json:"events"`
}
