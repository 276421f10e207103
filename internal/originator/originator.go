// Package originator provides adapters that synthesize the first contract
// of a chain (SPEC_FULL.md §4.6); the caller hands that contract to the
// scheduler with EventBus.Delegate. It is
// grounded on the teacher's implicit Notion-ticket ingestion flow
// (orchestrator_prd.go's processApprovedToRefining) and background.go's
// self-triggered PM check-in, retargeted to produce contract.Contract
// values instead of kanban.Ticket. Neither adapter reaches a real issue
// tracker — that client is out of scope per the Non-goals.
package originator

import (
	"fmt"

	"github.com/arctek/handoff/contract"
)

// Issue is the minimal shape an inbound webhook/issue payload is expected to
// carry.
type Issue struct {
	Number      int
	Title       string
	Body        string
	Labels      []string
	Priority    string
}

// GithubOriginator synthesizes STORY-GH-<n> contracts from issue payloads.
type GithubOriginator struct{}

// Build constructs the initial contract for issue, targeting projectManager.
func (GithubOriginator) Build(issue Issue) (contract.Contract, error) {
	storyId := fmt.Sprintf("STORY-GH-%d", issue.Number)
	return contract.Build(contract.Fields{
		StoryId:     storyId,
		SourceAgent: contract.AgentGithub,
		TargetAgent: contract.AgentProjectManager,
		DnaCompliance: baselineDna(),
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{
				"featureDescription": issue.Title + "\n\n" + issue.Body,
				"acceptanceCriteria": issue.Labels,
				"userPersona":        "end user",
				"priorityLevel":      issue.Priority,
			},
		},
	})
}

// SystemTrigger is the minimal shape for an internally-scheduled re-check.
type SystemTrigger struct {
	Sequence int
	Reason   string
}

// SystemOriginator synthesizes STORY-SYS-<n> contracts for internal work,
// such as a scheduled re-review, analogous to the teacher's background
// agent self-triggering a PM check-in.
type SystemOriginator struct{}

// Build constructs the initial contract for a system-triggered story.
func (SystemOriginator) Build(trigger SystemTrigger) (contract.Contract, error) {
	storyId := fmt.Sprintf("STORY-SYS-%d", trigger.Sequence)
	return contract.Build(contract.Fields{
		StoryId:     storyId,
		SourceAgent: contract.AgentSystem,
		TargetAgent: contract.AgentProjectManager,
		DnaCompliance: baselineDna(),
		InputRequirements: contract.InputRequirements{
			RequiredData: map[string]any{
				"featureDescription": trigger.Reason,
				"acceptanceCriteria": []string{},
				"userPersona":        "internal",
				"priorityLevel":      "medium",
			},
		},
	})
}

// baselineDna is the permissive starting block an originator asserts before
// any agent has had a chance to produce or score an artifact; downstream
// agents overwrite these as their own work is evaluated.
func baselineDna() contract.DnaCompliance {
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
