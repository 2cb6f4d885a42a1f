package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adralidus/lgl-portal/internal/domain"
)

func TestAuditCSV_ColumnOrder(t *testing.T) {
	entries := []domain.AuditEntry{
		{
			CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Severity:        domain.AuditSeverityLevelHigh,
			ContextUser:     "admin@test",
			ContextUserRole: "admin",
			Action:          "terminate_all",
			EntityType:      "session",
			Details:         `{"terminated_count":3}`,
		},
	}

	data, err := AuditCSV(entries)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"timestamp", "actor", "role", "action", "target type", "details"}, records[0])
	assert.Equal(t, []string{
		"2025-03-01T12:00:00Z", "admin@test", "admin", "terminate_all", "session", `{"terminated_count":3}`,
	}, records[1])
}

func TestAuditCSV_EscapesEmbeddedSeparatorsAndQuotes(t *testing.T) {
	entries := []domain.AuditEntry{
		{
			CreatedAt:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			ContextUser:     `evil,"actor"`,
			ContextUserRole: "admin",
			Action:          "delete",
			EntityType:      "notification",
			Details:         `{"title":"a, \"quoted\" title"}`,
		},
	}

	data, err := AuditCSV(entries)
	require.NoError(t, err)

	// a round trip through a csv reader must restore the raw values
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `evil,"actor"`, records[1][1])
	assert.Equal(t, `{"title":"a, \"quoted\" title"}`, records[1][5])
}

func TestAuditCSV_EmptyTrailStillHasHeader(t *testing.T) {
	data, err := AuditCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNotificationsJSON_IncludesDerivedAttributes(t *testing.T) {
	n := domain.Notification{
		Identifier: "n1",
		Title:      "Critical database outage",
		Message:    "primary is down",
		Type:       domain.NotificationTypeError,
		Target:     domain.SystemTarget(),
	}

	data, err := NotificationsJSON([]domain.EnrichedNotification{n.Enriched(time.Now())})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "critical", decoded[0]["Priority"])
	assert.Equal(t, "Database", decoded[0]["Component"])
}
