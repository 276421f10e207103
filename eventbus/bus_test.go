package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arctek/handoff/contract"
)

func validDna() contract.DnaCompliance {
	return contract.DnaCompliance{
		DesignPrinciplesValidation: &contract.DesignPrinciples{
			PedagogicalValue: true, PolicyToPractice: true, TimeRespect: true,
			HolisticThinking: true, ProfessionalTone: true,
		},
		ArchitectureCompliance: &contract.ArchitectureCompliance{
			ApiFirst: true, StatelessBackend: true, SeparationOfConcerns: true, SimplicityFirst: true,
		},
	}
}

func mustContract(t *testing.T, source, target contract.AgentType, storyId string) contract.Contract {
	t.Helper()
	c, err := contract.Build(contract.Fields{
		StoryId:       storyId,
		SourceAgent:   source,
		TargetAgent:   target,
		DnaCompliance: validDna(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

// mockInvoker implements Invoker, recording calls the way the teacher's
// mockSpawner records spawned runs (orchestrator_prd_test.go).
type mockInvoker struct {
	mu       sync.Mutex
	calls    []contract.Contract
	nextFn   func(in contract.Contract) (contract.Contract, error)
}

func (m *mockInvoker) Invoke(ctx context.Context, in contract.Contract) (contract.Contract, error) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	fn := m.nextFn
	m.mu.Unlock()
	if fn != nil {
		return fn(in)
	}
	return contract.Contract{}, nil
}

func (m *mockInvoker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestBus() *EventBus {
	cfg := DefaultConfig()
	cfg.Logger = nil // DefaultConfig already sets one; New() also defaults if nil
	return New(cfg)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDelegateRejectsIllegalSequence(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()

	c := mustContract(t, contract.AgentGithub, contract.AgentTestEngineer, "STORY-T-1")
	if _, err := bus.Delegate(context.Background(), c, PriorityMedium); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence, got %v", err)
	}
	if bus.GetQueueStatus().Pending != 0 {
		t.Fatalf("queue should remain empty after rejection")
	}
}

func TestHappyPathSingleHopDispatchesAndChains(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()

	next := mustContract(t, contract.AgentGameDesigner, contract.AgentDeveloper, "STORY-T-2")
	inv := &mockInvoker{nextFn: func(in contract.Contract) (contract.Contract, error) { return next, nil }}
	if err := bus.RegisterAgent("gd-1", contract.AgentGameDesigner, inv); err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}

	c := mustContract(t, contract.AgentProjectManager, contract.AgentGameDesigner, "STORY-T-2")
	workId, err := bus.Delegate(context.Background(), c, PriorityHigh)
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	waitFor(t, func() bool {
		snap, ok := bus.GetWorkStatus(workId)
		return ok && snap.Status == StatusCompleted
	})

	waitFor(t, func() bool { return bus.GetQueueStatus().Pending == 1 })
	if got := inv.callCount(); got != 1 {
		t.Fatalf("expected 1 invocation, got %d", got)
	}
}

func TestPriorityOrderingDispatchesHighFirst(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()

	var mu sync.Mutex
	var order []contract.Contract
	gate := make(chan struct{})
	inv := &mockInvoker{nextFn: func(in contract.Contract) (contract.Contract, error) {
		<-gate
		mu.Lock()
		order = append(order, in)
		mu.Unlock()
		return contract.Contract{}, errors.New("stop chain: " + errSentinelMarker)
	}}

	low := mustContract(t, contract.AgentProjectManager, contract.AgentGameDesigner, "STORY-T-3")
	high := mustContract(t, contract.AgentProjectManager, contract.AgentGameDesigner, "STORY-T-4")
	medium := mustContract(t, contract.AgentProjectManager, contract.AgentGameDesigner, "STORY-T-5")

	// Register the agent only after all three are queued, so dispatch order
	// is driven purely by priority rather than registration timing.
	if _, err := bus.Delegate(context.Background(), low, PriorityLow); err != nil {
		t.Fatalf("Delegate low: %v", err)
	}
	if _, err := bus.Delegate(context.Background(), high, PriorityHigh); err != nil {
		t.Fatalf("Delegate high: %v", err)
	}
	if _, err := bus.Delegate(context.Background(), medium, PriorityMedium); err != nil {
		t.Fatalf("Delegate medium: %v", err)
	}

	if err := bus.RegisterAgent("gd-2", contract.AgentGameDesigner, inv); err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}
	bus.Dispatch(context.Background())
	close(gate)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) >= 1
	})
	mu.Lock()
	got := order[0].StoryId
	mu.Unlock()
	if got != high.StoryId {
		t.Fatalf("expected high priority (%s) dispatched first, got %s", high.StoryId, got)
	}
}

const errSentinelMarker = "test"

func TestCancelWorkFreesAgentAndRecordsReason(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()

	gate := make(chan struct{})
	inv := &mockInvoker{nextFn: func(in contract.Contract) (contract.Contract, error) {
		<-gate
		return contract.Contract{}, errors.New("unused")
	}}
	if err := bus.RegisterAgent("gd-3", contract.AgentGameDesigner, inv); err != nil {
		t.Fatalf("RegisterAgent: %v", err)
	}

	c := mustContract(t, contract.AgentProjectManager, contract.AgentGameDesigner, "STORY-T-6")
	workId, err := bus.Delegate(context.Background(), c, PriorityMedium)
	if err != nil {
		t.Fatalf("Delegate: %v", err)
	}

	waitFor(t, func() bool {
		snap, ok := bus.GetWorkStatus(workId)
		return ok && snap.Status == StatusInProgress
	})

	if ok := bus.CancelWork(workId, "aborted"); !ok {
		t.Fatalf("expected CancelWork to succeed")
	}
	snap, ok := bus.GetWorkStatus(workId)
	if !ok || snap.Status != StatusCancelled || snap.ErrorMessage != "aborted" {
		t.Fatalf("unexpected snapshot: %+v (ok=%v)", snap, ok)
	}

	qs := bus.GetQueueStatus()
	if qs.BusyAgents != 0 || qs.AvailableAgents != 1 {
		t.Fatalf("expected agent freed, got %+v", qs)
	}
	close(gate)
}

func TestCancelUnknownWorkReturnsFalse(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()
	if bus.CancelWork("does-not-exist", "n/a") {
		t.Fatalf("expected false for unknown workId")
	}
}

func TestRegisterAgentIdempotentOnDuplicate(t *testing.T) {
	bus := newTestBus()
	defer bus.Stop()
	inv := &mockInvoker{}
	if err := bus.RegisterAgent("gd-4", contract.AgentGameDesigner, inv); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := bus.RegisterAgent("gd-4", contract.AgentGameDesigner, inv); err != nil {
		t.Fatalf("duplicate register should be idempotent: %v", err)
	}
	if qs := bus.GetQueueStatus(); qs.RegisteredAgents != 1 {
		t.Fatalf("expected exactly 1 registered agent, got %d", qs.RegisteredAgents)
	}
}
