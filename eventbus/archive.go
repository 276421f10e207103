package eventbus

import (
	"encoding/json"

	"github.com/arctek/handoff/internal/audit"
)

// toAuditRecord converts an internal WorkItem into the persisted shape
// package audit stores. Marshal failures degrade to an empty contract_json
// rather than blocking archival of the rest of the record.
func toAuditRecord(item *WorkItem) audit.WorkItemRecord {
	raw, err := json.Marshal(item.Contract)
	if err != nil {
		raw = []byte("{}")
	}
	return audit.WorkItemRecord{
		WorkId:       item.WorkId,
		StoryId:      item.StoryId,
		SourceAgent:  string(item.SourceAgent),
		TargetAgent:  string(item.TargetAgent),
		Status:       string(item.Status),
		ContractJSON: string(raw),
		ErrorMessage: item.ErrorMessage,
		RetryCount:   item.RetryCount,
		CreatedAt:    item.CreatedAt,
		StartedAt:    item.StartedAt,
		CompletedAt:  item.CompletedAt,
	}
}
