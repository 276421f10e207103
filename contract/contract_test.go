package contract

import (
	"encoding/json"
	"errors"
	"testing"
)

func validDna() DnaCompliance {
	return DnaCompliance{
		DesignPrinciplesValidation: &DesignPrinciples{
			PedagogicalValue: true,
			PolicyToPractice: true,
			TimeRespect:      true,
			HolisticThinking: true,
			ProfessionalTone: true,
		},
		ArchitectureCompliance: &ArchitectureCompliance{
			ApiFirst:             true,
			StatelessBackend:     true,
			SeparationOfConcerns: true,
			SimplicityFirst:      true,
		},
	}
}

func TestBuildRequiresIdentifyingFields(t *testing.T) {
	cases := []struct {
		name string
		f    Fields
	}{
		{"missing storyId", Fields{SourceAgent: AgentGithub, TargetAgent: AgentProjectManager}},
		{"missing source", Fields{StoryId: "STORY-1", TargetAgent: AgentProjectManager}},
		{"missing target", Fields{StoryId: "STORY-1", SourceAgent: AgentGithub}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.f); !errors.Is(err, ErrInvalidContractShape) {
				t.Fatalf("expected ErrInvalidContractShape, got %v", err)
			}
		})
	}
}

func TestBuildEnforcesTraceability(t *testing.T) {
	f := Fields{
		StoryId:     "STORY-T-1",
		SourceAgent: AgentGithub,
		TargetAgent: AgentProjectManager,
		DnaCompliance: validDna(),
		OutputSpecifications: OutputSpecifications{
			DeliverableFiles: []string{"docs/OTHER-STORY/spec.md"},
		},
	}
	if _, err := Build(f); !errors.Is(err, ErrStoryIdTraceability) {
		t.Fatalf("expected ErrStoryIdTraceability, got %v", err)
	}
}

func TestDeriveCarriesStoryIdAndShiftsSource(t *testing.T) {
	first, err := Build(Fields{
		StoryId:       "STORY-T-2",
		SourceAgent:   AgentGithub,
		TargetAgent:   AgentProjectManager,
		DnaCompliance: validDna(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Derive(first, Patch{TargetAgent: AgentGameDesigner})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if second.StoryId != first.StoryId {
		t.Fatalf("storyId not carried forward: %q vs %q", second.StoryId, first.StoryId)
	}
	if second.SourceAgent != AgentProjectManager {
		t.Fatalf("sourceAgent should shift to prev targetAgent, got %q", second.SourceAgent)
	}
	if second.TargetAgent != AgentGameDesigner {
		t.Fatalf("targetAgent not applied from patch")
	}
}

func TestDeriveRequiresTargetAgent(t *testing.T) {
	first, _ := Build(Fields{StoryId: "STORY-T-3", SourceAgent: AgentGithub, TargetAgent: AgentProjectManager, DnaCompliance: validDna()})
	if _, err := Derive(first, Patch{}); !errors.Is(err, ErrInvalidContractShape) {
		t.Fatalf("expected ErrInvalidContractShape, got %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c, err := Build(Fields{
		StoryId:       "STORY-T-4",
		SourceAgent:   AgentGithub,
		TargetAgent:   AgentProjectManager,
		DnaCompliance: validDna(),
		QualityGates:  []string{"gate-a"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var round Contract
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !c.Equal(round) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", c, round)
	}
}

func TestMinimalContractIsVersionTolerant(t *testing.T) {
	// A contract with only the required fields (no optional blocks) must
	// still build successfully — additive evolution must not break a
	// minimal producer.
	c, err := Build(Fields{
		StoryId:       "STORY-T-5",
		SourceAgent:   AgentGithub,
		TargetAgent:   AgentProjectManager,
		DnaCompliance: validDna(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.ContractVersion != Version {
		t.Fatalf("expected version %q, got %q", Version, c.ContractVersion)
	}
}
