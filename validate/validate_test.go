package validate

import (
	"testing"

	"github.com/arctek/handoff/contract"
)

func validContract(t *testing.T) contract.Contract {
	t.Helper()
	c, err := contract.Build(contract.Fields{
		StoryId:     "STORY-T-1",
		SourceAgent: contract.AgentGithub,
		TargetAgent: contract.AgentProjectManager,
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
	return c
}

func TestStructuralAcceptsMinimalValidContract(t *testing.T) {
	if r := Structural(validContract(t)); !r.OK {
		t.Fatalf("expected OK, got errors: %v", r.Errors)
	}
}

func TestStructuralRejectsEmptyDnaBlock(t *testing.T) {
	c := validContract(t)
	c.DnaCompliance = contract.DnaCompliance{}
	if r := Structural(c); r.OK {
		t.Fatalf("expected empty DNA block to fail structural validation")
	}
}

func TestSequenceAcceptsGithubToProjectManager(t *testing.T) {
	if r := SequenceCheck(validContract(t)); !r.OK {
		t.Fatalf("expected OK, got errors: %v", r.Errors)
	}
}

func TestSequenceRejectsIllegalPair(t *testing.T) {
	c := validContract(t)
	c.TargetAgent = contract.AgentTestEngineer
	r := SequenceCheck(c)
	if r.OK {
		t.Fatalf("expected sequence rejection for github -> testEngineer")
	}
}

func TestAllMergesBothLayers(t *testing.T) {
	c := validContract(t)
	c.TargetAgent = contract.AgentTestEngineer
	c.DnaCompliance = contract.DnaCompliance{}
	r := All(c)
	if r.OK {
		t.Fatalf("expected failure")
	}
	if len(r.Errors) < 2 {
		t.Fatalf("expected errors from both layers, got %v", r.Errors)
	}
}
