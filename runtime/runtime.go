// Package runtime implements the Agent Runtime Contract: the wrapper every
// agent is invoked through, enforcing the pre/post validation, DNA-policy
// injection, and quality-gate steps the scheduler itself stays ignorant of.
// It is grounded on the teacher's AuditingSpawner decorator (agents/audit.go),
// which wraps SpawnAgent with before/after logging in exactly this shape.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/dna"
	"github.com/arctek/handoff/eventbus"
	"github.com/arctek/handoff/validate"
)

// Agent is the interface every content-generating collaborator implements.
// The core never inspects how ProcessContract produces its artifact — only
// the contract it returns and the quality gates it can check.
type Agent interface {
	AgentType() contract.AgentType
	ProcessContract(ctx context.Context, in contract.Contract) (contract.Contract, error)
	CheckQualityGate(gateName string, deliverables map[string]any) bool
	// Artifact exposes the structured facts the DNA engine needs to score
	// the agent's most recent output. Agents that produced no artifact
	// worth scoring (should not normally happen) may return a zero value.
	Artifact() dna.Artifact
}

// Runtime wraps one Agent with the six-step pipeline from SPEC_FULL.md §4.5.
type Runtime struct {
	agent  Agent
	logger *slog.Logger
}

// New wraps agent in a Runtime. logger defaults to slog.Default() if nil.
func New(agent Agent, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{agent: agent, logger: logger}
}

// Invoke implements eventbus.Invoker, so a *Runtime can be registered
// directly with the scheduler.
func (r *Runtime) Invoke(ctx context.Context, in contract.Contract) (contract.Contract, error) {
	// Step 1: re-validate the input contract.
	if res := validate.All(in); !res.OK {
		return contract.Contract{}, fmt.Errorf("runtime: %w: %v", eventbus.ErrInvalidContractShape, res.Errors)
	}

	// Step 2: invoke the agent's own work.
	out, err := r.agent.ProcessContract(ctx, in)
	if err != nil {
		return contract.Contract{}, fmt.Errorf("runtime: agent %s: %w", r.agent.AgentType(), err)
	}

	// Step 3: run the DNA engine against what the agent produced and inject
	// the result into the output contract's per-agent sub-block.
	result := dna.Evaluate(r.agent.AgentType(), r.agent.Artifact())
	if !result.OverallCompliant {
		r.logger.Warn("dna compliance failed", "agent", r.agent.AgentType(), "violations", result.Violations)
		return contract.Contract{}, fmt.Errorf("runtime: %w: %v", eventbus.ErrDnaCompliance, result.Violations)
	}
	out = injectDnaResult(out, r.agent.AgentType(), result)

	// Step 4: iterate declared quality gates in order, short-circuiting on
	// the first failure.
	for _, gate := range out.QualityGates {
		if !r.agent.CheckQualityGate(gate, out.OutputSpecifications.DeliverableData) {
			r.logger.Warn("quality gate failed", "agent", r.agent.AgentType(), "gate", gate)
			return contract.Contract{}, fmt.Errorf("runtime: %w: %s", eventbus.ErrQualityGate, gate)
		}
	}

	// Step 5: validate the output contract.
	if res := validate.All(out); !res.OK {
		return contract.Contract{}, fmt.Errorf("runtime: %w: %v", eventbus.ErrInvalidContractShape, res.Errors)
	}

	// Step 6: return the validated output.
	return out, nil
}

func injectDnaResult(c contract.Contract, agent contract.AgentType, result dna.Result) contract.Contract {
	// Copy the map: Derive shares it with the input contract, which must not
	// be mutated in place.
	results := make(map[contract.AgentType]any, len(c.DnaCompliance.AgentResults)+1)
	for k, v := range c.DnaCompliance.AgentResults {
		results[k] = v
	}
	results[agent] = result
	c.DnaCompliance.AgentResults = results
	return c
}
