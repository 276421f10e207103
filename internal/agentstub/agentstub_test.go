package agentstub

import (
	"context"
	"testing"

	"github.com/arctek/handoff/contract"
)

func TestStubDerivesLegalNextHop(t *testing.T) {
	in, err := contract.Build(contract.Fields{
		StoryId:     "STORY-AG-1",
		SourceAgent: contract.AgentProjectManager,
		TargetAgent: contract.AgentGameDesigner,
		DnaCompliance: contract.DnaCompliance{
			DesignPrinciplesValidation: &contract.DesignPrinciples{
				PedagogicalValue: true, PolicyToPractice: true, TimeRespect: true,
				HolisticThinking: true, ProfessionalTone: true,
			},
			ArchitectureCompliance: &contract.ArchitectureCompliance{
				ApiFirst: true, StatelessBackend: true, SeparationOfConcerns: true, SimplicityFirst: true,
			},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stub := New(contract.AgentGameDesigner)
	out, err := stub.ProcessContract(context.Background(), in)
	if err != nil {
		t.Fatalf("ProcessContract: %v", err)
	}
	if out.TargetAgent != contract.AgentDeveloper {
		t.Fatalf("expected next hop developer, got %s", out.TargetAgent)
	}
	if out.StoryId != in.StoryId {
		t.Fatalf("storyId not carried forward")
	}
}

func TestStubGateOverride(t *testing.T) {
	stub := New(contract.AgentDeveloper).WithGateResult("security-review", false)
	if stub.CheckQualityGate("security-review", nil) {
		t.Fatalf("expected overridden gate to fail")
	}
	if !stub.CheckQualityGate("unrelated-gate", nil) {
		t.Fatalf("expected unconfigured gate to pass")
	}
}
