// Package agentstub provides deterministic fake agents, one per AgentType,
// implementing runtime.Agent. Content generation is explicitly out of
// scope for the coordination core (SPEC_FULL.md §1 Non-goals), so these
// stubs stand in for the real specialist agents in tests and in the
// cmd/coordinator demo — replacing the teacher's mockSpawner
// (orchestrator_prd_test.go) for this project's own test suites.
package agentstub

import (
	"context"
	"fmt"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/dna"
	"github.com/arctek/handoff/validate"
)

// Stub is a deterministic agent: it derives its output contract from the
// input using the legal next hop in the sequence table, and reports a
// canned artifact clean enough to pass every DNA principle it is scored on.
type Stub struct {
	agentType contract.AgentType
	artifact  dna.Artifact
	gates     map[string]bool
}

// New creates a Stub for agentType with a baseline "clean" artifact. Callers
// may mutate the returned Stub's exported setters to simulate violations for
// negative-path tests.
func New(agentType contract.AgentType) *Stub {
	return &Stub{
		agentType: agentType,
		artifact:  defaultArtifact(agentType),
	}
}

func (s *Stub) AgentType() contract.AgentType { return s.agentType }

func (s *Stub) Artifact() dna.Artifact { return s.artifact }

// WithArtifact overrides the artifact the DNA engine will score, for tests
// that need to exercise a specific violation.
func (s *Stub) WithArtifact(a dna.Artifact) *Stub {
	s.artifact = a
	return s
}

// WithGateResult pins the outcome CheckQualityGate returns for a named gate.
func (s *Stub) WithGateResult(gate string, pass bool) *Stub {
	if s.gates == nil {
		s.gates = make(map[string]bool)
	}
	s.gates[gate] = pass
	return s
}

func (s *Stub) CheckQualityGate(name string, deliverables map[string]any) bool {
	if v, ok := s.gates[name]; ok {
		return v
	}
	return true
}

// ProcessContract derives the next contract in the chain using the closed
// sequence table (package validate), carrying the storyId and traceable
// file paths forward.
func (s *Stub) ProcessContract(ctx context.Context, in contract.Contract) (contract.Contract, error) {
	targets, ok := validate.Sequence[s.agentType]
	if !ok || len(targets) == 0 {
		return contract.Contract{}, fmt.Errorf("agentstub: no legal next hop defined for %s", s.agentType)
	}
	deliverable := fmt.Sprintf("artifacts/%s/%s.md", in.StoryId, s.agentType)
	return contract.Derive(in, contract.Patch{
		TargetAgent: targets[0],
		OutputSpecifications: &contract.OutputSpecifications{
			DeliverableFiles: []string{deliverable},
			DeliverableData:  map[string]any{"producedBy": string(s.agentType)},
		},
	})
}

func defaultArtifact(agentType contract.AgentType) dna.Artifact {
	cleanText := []string{
		"Each objective is met in this plan. The steps are short and clear. A user can start, try each step, and see the result in a few minutes. The team can read it fast and check each part. Each part links back to the goal it serves. No step is left out, and no step does more than it needs to do.",
	}
	switch agentType {
	case contract.AgentGameDesigner:
		return dna.Artifact{
			Texts:                    cleanText,
			UIElementCountsPerScreen: []int{5},
			InteractionSteps:         3,
			NavigationDepth:          2,
			EstimatedMinutes:         6,
		}
	case contract.AgentDeveloper:
		return dna.Artifact{
			Texts:                 cleanText,
			ComponentComplexities: []int{4},
			EndpointComplexities:  []int{3},
			FunctionComplexities:  []int{2},
			MaxNestingDepth:       2,
			FileLineCounts:        []int{120},
			Endpoints:             []dna.Endpoint{{Path: "/api/v1/widgets", ResponseTimeMs: 80}},
			UIComponents:          []dna.UIComponent{{Name: "WidgetList", Complexity: 3}},
		}
	case contract.AgentTestEngineer:
		return dna.Artifact{
			Texts:     cleanText,
			TestSuite: dna.TestSuiteStats{UnitMinutes: 1, IntegrationMinutes: 1, E2EMinutes: 1},
		}
	default:
		return dna.Artifact{Texts: cleanText}
	}
}
