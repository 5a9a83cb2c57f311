package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "volunteerhub/pkg/domain"
	audit "volunteerhub/pkg/platform/audit"
)

func TestAppendWritesAuditLine(t *testing.T) {
	var buf bytes.Buffer
	store := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	userID := id.UserID(uuid.New())
	require.NoError(t, store.Append(context.Background(), audit.Event{
		Action:  audit.EventBadgeAwarded,
		UserID:  userID,
		BadgeID: "beginner",
	}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["log_type"])
	assert.Equal(t, "badge_awarded", line["msg"])
	assert.Equal(t, "compliance", line["category"])
	assert.Equal(t, userID.String(), line["user_id"])
	assert.Equal(t, "beginner", line["badge_id"])
	_, hasHours := line["hours"]
	assert.False(t, hasHours)
}
