package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/internal/conflict"
)

// Dispatch assigns as many pending items to available agents as
// maxConcurrentWork allows. It never blocks on an agent invocation itself —
// each one runs in its own goroutine — matching the teacher's preference
// for a non-blocking scheduling loop bounded by a WaitGroup.
func (b *EventBus) Dispatch(ctx context.Context) {
	for {
		item, invoker, ok := b.claimNext()
		if !ok {
			return
		}
		b.wg.Add(1)
		go b.runAgent(item, invoker)
	}
}

// claimNext finds one pending item with an available agent of its target
// type, marks the agent busy, transitions the item to inProgress, and
// returns it along with the invoker to call. Returns ok=false when no such
// pairing currently exists or the concurrency cap is reached.
func (b *EventBus) claimNext() (*WorkItem, Invoker, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.active) >= b.config.MaxConcurrentWork {
		return nil, nil, false
	}

	var activeClaims []conflict.Claim
	activeStories := make(map[string]bool, len(b.active))
	for id, w := range b.active {
		activeClaims = append(activeClaims, conflict.ClaimFor(id, w.Contract))
		activeStories[w.StoryId] = true
	}

	// Scan target types with at least one pending item, preferring whichever
	// yields the best-ordered item once an available agent is found. An item
	// whose storyId already has an in-progress item is skipped this round —
	// at most one in-progress item per storyId at a time, per SPEC_FULL.md
	// §8.1 — as is one whose deliverable files overlap an in-progress item's,
	// which the storyId check alone does not cover (two different stories
	// can still collide on a shared path).
	var chosenItem *WorkItem
	var chosenAgentId string
	for _, w := range b.pending.all() {
		if activeStories[w.StoryId] {
			continue
		}
		agentId, ok := b.findAvailableAgent(w.TargetAgent)
		if !ok {
			continue
		}
		if conflict.Overlaps(conflict.ClaimFor(w.WorkId, w.Contract), activeClaims) {
			continue
		}
		if chosenItem == nil || betterOrder(w, chosenItem) {
			chosenItem = w
			chosenAgentId = agentId
		}
	}
	if chosenItem == nil {
		return nil, nil, false
	}

	item := b.pending.removeWork(chosenItem.WorkId)
	if item == nil {
		return nil, nil, false
	}

	entry := b.agents[chosenAgentId]
	entry.Status = AgentStatusBusy
	entry.CurrentWorkId = item.WorkId

	now := time.Now()
	item.Status = StatusInProgress
	item.StartedAt = &now
	b.active[item.WorkId] = item

	b.logger.Info("work dispatched", "workId", item.WorkId, "agentId", chosenAgentId, "target", item.TargetAgent)
	return item, b.invokers[chosenAgentId], true
}

func betterOrder(a, b *WorkItem) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (b *EventBus) findAvailableAgent(agentType contract.AgentType) (string, bool) {
	for id, entry := range b.agents {
		if entry.AgentType == agentType && entry.Status == AgentStatusAvailable {
			return id, true
		}
	}
	return "", false
}

// runAgent invokes the agent runtime outside the scheduler lock and folds
// the result back in via Complete/Fail.
func (b *EventBus) runAgent(item *WorkItem, invoker Invoker) {
	defer b.wg.Done()
	out, err := invoker.Invoke(item.ctx, item.Contract)
	if item.ctx.Err() != nil {
		// Cancelled while in flight; the cancellation path already freed the
		// agent and archived the item, so the result is discarded.
		return
	}
	if err != nil {
		b.Fail(item.WorkId, err)
		return
	}
	b.Complete(item.WorkId, out)
}

// Complete records a successful result, frees the agent, archives the item,
// and — if the output targets a non-terminal agent — recursively delegates
// it as the next hop in the chain.
func (b *EventBus) Complete(workId string, output contract.Contract) error {
	b.mu.Lock()
	item, ok := b.active[workId]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("eventbus: %w: %s", ErrUnknownWork, workId)
	}
	delete(b.active, workId)
	b.freeAgentForWorkLocked(workId)

	now := time.Now()
	item.Status = StatusCompleted
	item.CompletedAt = &now
	item.Contract = output
	b.completed[workId] = item
	b.mu.Unlock()

	b.archive(item)
	b.logger.Info("work completed", "workId", workId, "storyId", item.StoryId)
	b.Publish("work.completed", map[string]any{
		"workId":      workId,
		"storyId":     item.StoryId,
		"sourceAgent": string(output.SourceAgent),
		"targetAgent": string(output.TargetAgent),
	}, "")

	b.Dispatch(item.ctx)

	if output.TargetAgent != "" {
		if _, err := b.Delegate(context.Background(), output, PriorityMedium); err != nil {
			b.logger.Warn("auto-delegation of handoff failed", "workId", workId, "error", err)
		}
	}
	return nil
}

// Fail records a failed invocation; retryable failures with remaining
// retries are re-enqueued at their original priority, otherwise the item
// terminates as failed.
func (b *EventBus) Fail(workId string, cause error) error {
	b.mu.Lock()
	item, ok := b.active[workId]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("eventbus: %w: %s", ErrUnknownWork, workId)
	}
	delete(b.active, workId)
	b.freeAgentForWorkLocked(workId)

	item.ErrorMessage = cause.Error()
	item.RetryCount++
	if retryable(cause) && item.RetryCount < item.MaxRetries {
		item.Status = StatusPending
		b.pending.push(item)
		b.mu.Unlock()
		b.logger.Warn("work failed, retrying", "workId", workId, "retryCount", item.RetryCount, "error", cause)
		b.Dispatch(context.Background())
		return nil
	}

	now := time.Now()
	item.Status = StatusFailed
	item.CompletedAt = &now
	b.completed[workId] = item
	b.mu.Unlock()

	b.archive(item)
	b.logger.Error("work failed terminally", "workId", workId, "error", cause)
	b.Publish("work.failed", map[string]any{"workId": workId, "error": cause.Error()}, "")
	return nil
}

// CancelWork cancels a pending or in-progress item. Returns false if workId
// is unknown or already terminal.
func (b *EventBus) CancelWork(workId string, reason string) bool {
	b.mu.Lock()

	if item := b.pending.removeWork(workId); item != nil {
		now := time.Now()
		item.Status = StatusCancelled
		item.CompletedAt = &now
		item.ErrorMessage = reason
		b.completed[workId] = item
		b.mu.Unlock()
		b.archive(item)
		b.logger.Info("pending work cancelled", "workId", workId, "reason", reason)
		return true
	}

	item, ok := b.active[workId]
	if !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.active, workId)
	b.freeAgentForWorkLocked(workId)

	now := time.Now()
	item.Status = StatusCancelled
	item.CompletedAt = &now
	item.ErrorMessage = reason
	b.completed[workId] = item
	if item.cancel != nil {
		item.cancel()
	}
	b.mu.Unlock()

	b.archive(item)
	b.logger.Info("in-progress work cancelled", "workId", workId, "reason", reason)
	return true
}

// freeAgentForWorkLocked returns the agent holding workId to available. Must
// be called with b.mu held.
func (b *EventBus) freeAgentForWorkLocked(workId string) {
	for _, entry := range b.agents {
		if entry.CurrentWorkId == workId {
			entry.Status = AgentStatusAvailable
			entry.CurrentWorkId = ""
			return
		}
	}
}

// GetWorkStatus looks up a work item by id, checking pending, active, and
// completed in that order.
func (b *EventBus) GetWorkStatus(workId string) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range b.pending.all() {
		if w.WorkId == workId {
			return w.snapshot(), true
		}
	}
	if w, ok := b.active[workId]; ok {
		return w.snapshot(), true
	}
	if w, ok := b.completed[workId]; ok {
		return w.snapshot(), true
	}
	return Snapshot{}, false
}

// GetQueueStatus reports the scheduler's current load.
func (b *EventBus) GetQueueStatus() QueueStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	qs := QueueStatus{
		Pending:          b.pending.len(),
		Active:           len(b.active),
		Completed:        len(b.completed),
		RegisteredAgents: len(b.agents),
		AgentTypes:       make(map[contract.AgentType]int),
	}
	for _, entry := range b.agents {
		qs.AgentTypes[entry.AgentType]++
		switch entry.Status {
		case AgentStatusAvailable:
			qs.AvailableAgents++
		case AgentStatusBusy:
			qs.BusyAgents++
		case AgentStatusOffline:
			qs.OfflineAgents++
		}
	}
	return qs
}

// Publish is best-effort informational fan-out; failures here never affect
// work state.
func (b *EventBus) Publish(eventType string, data map[string]any, agentId string) {
	b.mu.Lock()
	subs := append([]func(string, map[string]any, string){}, b.subscribers...)
	b.mu.Unlock()

	b.logger.Debug("event published", "eventType", eventType, "agentId", agentId)
	for _, sub := range subs {
		func() {
			// a misbehaving subscriber must never break Publish; its panic is
			// swallowed and logged
			defer func() {
				if r := recover(); r != nil {
					b.logger.Warn("event subscriber panicked", "eventType", eventType, "panic", r)
				}
			}()
			sub(eventType, data, agentId)
		}()
	}
}

// Subscribe registers a best-effort event listener; used by the demo binary
// for live status output. Not part of the core contract, but harmless.
func (b *EventBus) Subscribe(fn func(eventType string, data map[string]any, agentId string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// archive persists a terminal item to the audit store, when one is
// configured. Archival failures are logged, never propagated — losing a
// history row must not fail the work itself.
func (b *EventBus) archive(item *WorkItem) {
	if b.config.Store == nil {
		return
	}
	if err := b.config.Store.ArchiveWorkItem(toAuditRecord(item)); err != nil {
		b.logger.Warn("failed to archive work item", "workId", item.WorkId, "error", err)
	}
}

// sweepLoop periodically fails any in-progress item that has exceeded
// WorkTimeoutMinutes, mirroring the teacher's ticker-driven runCycle.
func (b *EventBus) sweepLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopSweep:
			return
		case <-ticker.C:
			b.sweepTimeouts()
		}
	}
}

func (b *EventBus) sweepTimeouts() {
	deadline := time.Duration(b.config.WorkTimeoutMinutes) * time.Minute
	var expired []string
	b.mu.Lock()
	for id, item := range b.active {
		if item.StartedAt != nil && time.Since(*item.StartedAt) > deadline {
			expired = append(expired, id)
		}
	}
	b.mu.Unlock()

	for _, id := range expired {
		b.Fail(id, fmt.Errorf("eventbus: %w", ErrWorkTimeout))
	}
}
