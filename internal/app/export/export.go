package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

// auditCsvHeader is the fixed column layout of audit trail exports.
// Consumers rely on the order, do not reorder.
var auditCsvHeader = []string{"timestamp", "actor", "role", "action", "target type", "details"}

// AuditCSV renders the given audit entries as a CSV document. Field values
// containing separators or quotes are escaped by the encoder.
func AuditCSV(entries []domain.AuditEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(auditCsvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.CreatedAt.Format(time.RFC3339),
			e.ContextUser,
			e.ContextUserRole,
			e.Action,
			e.EntityType,
			e.Details,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv export failure: %w", err)
	}

	return buf.Bytes(), nil
}

// NotificationsJSON renders the given notifications, including their derived
// display attributes, as an indented JSON document.
func NotificationsJSON(notifications []domain.EnrichedNotification) ([]byte, error) {
	data, err := json.MarshalIndent(notifications, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json export failure: %w", err)
	}
	return data, nil
}
