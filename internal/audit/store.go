package audit

import (
	"database/sql"
	"errors"
	"time"
)

// WorkItemRecord is the persisted shape of a terminal WorkItem. The
// scheduler (package eventbus) converts its internal WorkItem into this
// record at archive time; audit never imports eventbus, keeping the
// dependency direction one-way.
type WorkItemRecord struct {
	WorkId       string
	StoryId      string
	SourceAgent  string
	TargetAgent  string
	Status       string
	ContractJSON string
	ErrorMessage string
	RetryCount   int
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// ArchiveWorkItem upserts a terminal work item's record.
func (s *Store) ArchiveWorkItem(r WorkItemRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO work_items
			(work_id, story_id, source_agent, target_agent, status, contract_json, error_message, retry_count, created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(work_id) DO UPDATE SET
			status=excluded.status,
			contract_json=excluded.contract_json,
			error_message=excluded.error_message,
			retry_count=excluded.retry_count,
			started_at=excluded.started_at,
			completed_at=excluded.completed_at
	`, r.WorkId, r.StoryId, r.SourceAgent, r.TargetAgent, r.Status, r.ContractJSON, r.ErrorMessage, r.RetryCount, r.CreatedAt, r.StartedAt, r.CompletedAt)
	return err
}

// GetWorkItem retrieves a persisted record by workId.
func (s *Store) GetWorkItem(workId string) (WorkItemRecord, bool, error) {
	row := s.db.QueryRow(`
		SELECT work_id, story_id, source_agent, target_agent, status, contract_json, error_message, retry_count, created_at, started_at, completed_at
		FROM work_items WHERE work_id = ?
	`, workId)
	var r WorkItemRecord
	if err := row.Scan(&r.WorkId, &r.StoryId, &r.SourceAgent, &r.TargetAgent, &r.Status, &r.ContractJSON, &r.ErrorMessage, &r.RetryCount, &r.CreatedAt, &r.StartedAt, &r.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WorkItemRecord{}, false, nil
		}
		return WorkItemRecord{}, false, err
	}
	return r, true, nil
}

// ListWorkItemsByStory returns every archived item for a given storyId,
// oldest first.
func (s *Store) ListWorkItemsByStory(storyId string) ([]WorkItemRecord, error) {
	rows, err := s.db.Query(`
		SELECT work_id, story_id, source_agent, target_agent, status, contract_json, error_message, retry_count, created_at, started_at, completed_at
		FROM work_items WHERE story_id = ? ORDER BY created_at ASC
	`, storyId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkItemRecord
	for rows.Next() {
		var r WorkItemRecord
		if err := rows.Scan(&r.WorkId, &r.StoryId, &r.SourceAgent, &r.TargetAgent, &r.Status, &r.ContractJSON, &r.ErrorMessage, &r.RetryCount, &r.CreatedAt, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EventRecord is one scheduler lifecycle event, grounded on agents/audit.go's
// AuditEntry shape.
type EventRecord struct {
	ID        string
	WorkId    string
	EventType string
	Detail    string
	CreatedAt time.Time
}

// LogEvent appends one scheduler lifecycle event.
func (s *Store) LogEvent(e EventRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_events (id, work_id, event_type, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.WorkId, e.EventType, e.Detail, e.CreatedAt)
	return err
}
