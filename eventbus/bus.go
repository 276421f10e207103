package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/internal/audit"
	"github.com/arctek/handoff/validate"
)

// Invoker is the narrow interface the scheduler needs from an agent
// runtime: hand it a contract, get back the next one or an error. The
// concrete implementation (package runtime's Runtime) wraps the agent's
// ProcessContract with the pre/post validation and DNA/quality-gate steps;
// the scheduler itself never sees those internals.
type Invoker interface {
	Invoke(ctx context.Context, in contract.Contract) (contract.Contract, error)
}

// Config configures an EventBus, mirroring the teacher's Config/DefaultConfig
// idiom (orchestrator.go's Config/DefaultConfig).
type Config struct {
	MaxConcurrentWork  int
	WorkTimeoutMinutes int
	Logger             *slog.Logger
	Store              *audit.Store // optional SQLite-backed archive, see internal/audit
}

// DefaultConfig returns the defaults named in SPEC_FULL.md §6.5.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentWork:  10,
		WorkTimeoutMinutes: 60,
		Logger:             slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// EventBus is the coordination core's scheduler: the single owner of the
// agent registry, pending queue, active-work map, and completed archive.
// All mutable state is guarded by mu, matching the teacher's single-mutex
// Orchestrator/State locking style.
type EventBus struct {
	mu sync.Mutex

	config Config
	logger *slog.Logger

	agents  map[string]*AgentRegistryEntry
	invokers map[string]Invoker

	pending   *priorityQueue
	active    map[string]*WorkItem
	completed map[string]*WorkItem

	subscribers []func(eventType string, data map[string]any, agentId string)

	wg sync.WaitGroup

	stopSweep chan struct{}
}

// New creates an EventBus and starts its background timeout sweep.
func New(cfg Config) *EventBus {
	if cfg.MaxConcurrentWork <= 0 {
		cfg.MaxConcurrentWork = 10
	}
	if cfg.WorkTimeoutMinutes <= 0 {
		cfg.WorkTimeoutMinutes = 60
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	b := &EventBus{
		config:    cfg,
		logger:    cfg.Logger,
		agents:    make(map[string]*AgentRegistryEntry),
		invokers:  make(map[string]Invoker),
		pending:   newPriorityQueue(),
		active:    make(map[string]*WorkItem),
		completed: make(map[string]*WorkItem),
		stopSweep: make(chan struct{}),
	}
	b.wg.Add(1)
	go b.sweepLoop()
	return b
}

// Stop halts the background timeout sweep and waits for in-flight agent
// invocations to return.
func (b *EventBus) Stop() {
	close(b.stopSweep)
	b.wg.Wait()
}

// RegisterAgent adds an agent instance to the registry. Re-registering the
// same agentId for the same agentType is idempotent.
func (b *EventBus) RegisterAgent(agentId string, agentType contract.AgentType, invoker Invoker, capabilities ...string) error {
	if !isRegisterableAgentType(agentType) {
		return fmt.Errorf("eventbus: %w: unknown agentType %q", ErrEventBus, agentType)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.agents[agentId]; ok {
		if existing.AgentType == agentType {
			b.invokers[agentId] = invoker
			return nil
		}
		return fmt.Errorf("eventbus: %w: agentId %q already registered as %q", ErrEventBus, agentId, existing.AgentType)
	}
	b.agents[agentId] = &AgentRegistryEntry{
		AgentId:      agentId,
		AgentType:    agentType,
		Status:       AgentStatusAvailable,
		Capabilities: capabilities,
	}
	b.invokers[agentId] = invoker
	b.logger.Info("agent registered", "agentId", agentId, "agentType", agentType)
	return nil
}

// UnregisterAgent removes an agent, cancelling any work it currently holds.
func (b *EventBus) UnregisterAgent(agentId string) bool {
	b.mu.Lock()
	entry, ok := b.agents[agentId]
	if !ok {
		b.mu.Unlock()
		return false
	}
	workId := entry.CurrentWorkId
	delete(b.agents, agentId)
	delete(b.invokers, agentId)
	b.mu.Unlock()

	if workId != "" {
		b.CancelWork(workId, "Agent unregistered")
	}
	b.logger.Info("agent unregistered", "agentId", agentId)
	return true
}

// Delegate validates the contract, enqueues a new WorkItem, and returns its
// workId. priority defaults to PriorityMedium when zero.
func (b *EventBus) Delegate(ctx context.Context, c contract.Contract, priority Priority) (string, error) {
	if r := validate.All(c); !r.OK {
		return "", fmt.Errorf("eventbus: %w: %v", mapValidationError(c), r.Errors)
	}
	if priority == 0 {
		priority = PriorityMedium
	}

	workCtx, cancel := context.WithCancel(ctx)
	item := &WorkItem{
		WorkId:      uuid.New().String(),
		StoryId:     c.StoryId,
		SourceAgent: c.SourceAgent,
		TargetAgent: c.TargetAgent,
		Contract:    c,
		Priority:    priority,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		MaxRetries:  3,
		ctx:         workCtx,
		cancel:      cancel,
	}

	b.mu.Lock()
	b.pending.push(item)
	b.mu.Unlock()

	b.logger.Info("work delegated", "workId", item.WorkId, "storyId", item.StoryId, "target", item.TargetAgent, "priority", priority)
	b.Dispatch(ctx)
	return item.WorkId, nil
}

func mapValidationError(c contract.Contract) error {
	if r := validate.SequenceCheck(c); !r.OK {
		return ErrInvalidSequence
	}
	return ErrInvalidContractShape
}

func isRegisterableAgentType(a contract.AgentType) bool {
	switch a {
	case contract.AgentProjectManager, contract.AgentGameDesigner, contract.AgentDeveloper,
		contract.AgentTestEngineer, contract.AgentQATester, contract.AgentQualityReviewer:
		return true
	default:
		return false
	}
}
