// Package eventbus implements the coordination core's scheduler: an agent
// registry, a priority work queue, and the work-item state machine that
// mediates every contract handoff between agents.
package eventbus

import (
	"context"
	"time"

	"github.com/arctek/handoff/contract"
)

// Priority determines queue order; lower numeric value is serviced first.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

// Status is the work item's position in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// AgentStatus is an agent registry entry's availability.
type AgentStatus string

const (
	AgentStatusAvailable AgentStatus = "available"
	AgentStatusBusy      AgentStatus = "busy"
	AgentStatusOffline   AgentStatus = "offline"
)

// WorkItem is the scheduler's internal record of one scheduled handoff.
type WorkItem struct {
	WorkId       string
	StoryId      string
	SourceAgent  contract.AgentType
	TargetAgent  contract.AgentType
	Contract     contract.Contract
	Priority     Priority
	Status       Status
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	RetryCount   int
	MaxRetries   int

	ctx    context.Context
	cancel context.CancelFunc
}

// Snapshot is the read-only view returned by GetWorkStatus; it omits the
// cancellation func so callers cannot reach into scheduler internals.
type Snapshot struct {
	WorkId       string
	StoryId      string
	SourceAgent  contract.AgentType
	TargetAgent  contract.AgentType
	Contract     contract.Contract
	Priority     Priority
	Status       Status
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	RetryCount   int
}

func (w *WorkItem) snapshot() Snapshot {
	return Snapshot{
		WorkId:       w.WorkId,
		StoryId:      w.StoryId,
		SourceAgent:  w.SourceAgent,
		TargetAgent:  w.TargetAgent,
		Contract:     w.Contract,
		Priority:     w.Priority,
		Status:       w.Status,
		CreatedAt:    w.CreatedAt,
		StartedAt:    w.StartedAt,
		CompletedAt:  w.CompletedAt,
		ErrorMessage: w.ErrorMessage,
		RetryCount:   w.RetryCount,
	}
}

// AgentRegistryEntry is one registered agent instance.
type AgentRegistryEntry struct {
	AgentId        string
	AgentType      contract.AgentType
	Status         AgentStatus
	CurrentWorkId  string
	Capabilities   []string
	LastHeartbeat  *time.Time
}

// QueueStatus summarizes the scheduler's current load, per SPEC_FULL.md §4.4.
type QueueStatus struct {
	Pending           int
	Active            int
	Completed         int
	RegisteredAgents  int
	AvailableAgents   int
	BusyAgents        int
	OfflineAgents     int
	AgentTypes        map[contract.AgentType]int
}
