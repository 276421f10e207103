package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/arctek/handoff/contract"
	"github.com/arctek/handoff/dna"
	"github.com/arctek/handoff/eventbus"
)

// fakeAgent implements Agent for test purposes, following the teacher's
// hand-rolled-mock style (orchestrator_prd_test.go's mockSpawner) rather
// than a mocking framework.
type fakeAgent struct {
	agentType   contract.AgentType
	out         contract.Contract
	processErr  error
	artifact    dna.Artifact
	gateResults map[string]bool
}

func (f *fakeAgent) AgentType() contract.AgentType { return f.agentType }

func (f *fakeAgent) ProcessContract(ctx context.Context, in contract.Contract) (contract.Contract, error) {
	return f.out, f.processErr
}

func (f *fakeAgent) CheckQualityGate(name string, deliverables map[string]any) bool {
	if f.gateResults == nil {
		return true
	}
	v, ok := f.gateResults[name]
	if !ok {
		return true // unknown gates pass
	}
	return v
}

func (f *fakeAgent) Artifact() dna.Artifact { return f.artifact }

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

func baseContract(t *testing.T, source, target contract.AgentType) contract.Contract {
	t.Helper()
	c, err := contract.Build(contract.Fields{
		StoryId:       "STORY-T-1",
		SourceAgent:   source,
		TargetAgent:   target,
		DnaCompliance: validDna(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestInvokeHappyPathInjectsDnaResult(t *testing.T) {
	in := baseContract(t, contract.AgentProjectManager, contract.AgentGameDesigner)
	out := baseContract(t, contract.AgentGameDesigner, contract.AgentDeveloper)

	agent := &fakeAgent{
		agentType: contract.AgentGameDesigner,
		out:       out,
		artifact:  dna.Artifact{Texts: []string{"Each objective is met in this plan. The steps are short and clear. A user can start, try each step, and see the result in a few minutes. The team can read it fast and check each part. Each part links back to the goal it serves. No step is left out, and no step does more than it needs to do."}},
	}
	rt := New(agent, nil)

	result, err := rt.Invoke(context.Background(), in)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, ok := result.DnaCompliance.AgentResults[contract.AgentGameDesigner]; !ok {
		t.Fatalf("expected DNA result injected under gameDesigner key")
	}
}

func TestInvokeRejectsInvalidInput(t *testing.T) {
	in := baseContract(t, contract.AgentProjectManager, contract.AgentGameDesigner)
	in.TargetAgent = contract.AgentTestEngineer // now an illegal sequence

	agent := &fakeAgent{agentType: contract.AgentGameDesigner}
	rt := New(agent, nil)

	_, err := rt.Invoke(context.Background(), in)
	if !errors.Is(err, eventbus.ErrInvalidContractShape) {
		t.Fatalf("expected ErrInvalidContractShape-wrapped error, got %v", err)
	}
}

func TestInvokeFailsOnDnaNonCompliance(t *testing.T) {
	in := baseContract(t, contract.AgentProjectManager, contract.AgentDeveloper)
	out := baseContract(t, contract.AgentDeveloper, contract.AgentTestEngineer)

	agent := &fakeAgent{
		agentType: contract.AgentDeveloper,
		out:       out,
		artifact:  dna.Artifact{ComponentComplexities: []int{50}}, // blows TimeRespect and SimplicityFirst
	}
	rt := New(agent, nil)

	_, err := rt.Invoke(context.Background(), in)
	if !errors.Is(err, eventbus.ErrDnaCompliance) {
		t.Fatalf("expected ErrDnaCompliance, got %v", err)
	}
}

func TestInvokeShortCircuitsOnFirstFailingGate(t *testing.T) {
	in := baseContract(t, contract.AgentProjectManager, contract.AgentGameDesigner)
	out := baseContract(t, contract.AgentGameDesigner, contract.AgentDeveloper)
	out.QualityGates = []string{"gate-a", "gate-b"}

	agent := &fakeAgent{
		agentType:   contract.AgentGameDesigner,
		out:         out,
		artifact:    dna.Artifact{Texts: []string{"Each objective is met in this plan. The steps are short and clear. A user can start, try each step, and see the result in a few minutes. The team can read it fast and check each part. Each part links back to the goal it serves. No step is left out, and no step does more than it needs to do."}},
		gateResults: map[string]bool{"gate-a": false},
	}
	rt := New(agent, nil)

	_, err := rt.Invoke(context.Background(), in)
	if !errors.Is(err, eventbus.ErrQualityGate) {
		t.Fatalf("expected ErrQualityGate, got %v", err)
	}
}

func TestInvokePropagatesProcessContractError(t *testing.T) {
	in := baseContract(t, contract.AgentProjectManager, contract.AgentGameDesigner)
	agent := &fakeAgent{agentType: contract.AgentGameDesigner, processErr: errors.New("boom")}
	rt := New(agent, nil)

	_, err := rt.Invoke(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error to propagate from ProcessContract")
	}
}
