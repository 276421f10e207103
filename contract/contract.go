// Package contract defines the handoff message that flows between agents in
// the coordination pipeline. A Contract is a value object: once built it is
// never mutated in place, only derived into a new Contract for the next hop.
package contract

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// AgentType enumerates the participants in the pipeline, including the two
// originator aliases that may only ever appear as a sourceAgent.
type AgentType string

const (
	AgentGithub           AgentType = "github" // originator alias, source-only
	AgentSystem           AgentType = "system"  // originator alias, source-only
	AgentProjectManager   AgentType = "projectManager"
	AgentGameDesigner     AgentType = "gameDesigner"
	AgentDeveloper        AgentType = "developer"
	AgentTestEngineer     AgentType = "testEngineer"
	AgentQATester         AgentType = "qaTester"
	AgentQualityReviewer  AgentType = "qualityReviewer"
)

// Version is the current contract schema version.
const Version = "1.0"

// DesignPrinciples holds the five design-axis booleans every contract must carry.
type DesignPrinciples struct {
	PedagogicalValue bool `json:"pedagogicalValue"`
	PolicyToPractice bool `json:"policyToPractice"`
	TimeRespect      bool `json:"timeRespect"`
	HolisticThinking bool `json:"holisticThinking"`
	ProfessionalTone bool `json:"professionalTone"`
}

// ArchitectureCompliance holds the four architecture-axis booleans.
type ArchitectureCompliance struct {
	ApiFirst            bool `json:"apiFirst"`
	StatelessBackend    bool `json:"statelessBackend"`
	SeparationOfConcerns bool `json:"separationOfConcerns"`
	SimplicityFirst     bool `json:"simplicityFirst"`
}

// DnaCompliance is the policy block carried by every contract. AgentResults is
// the additive per-agent sub-block (`<agent>DnaValidation` in the spec's wire
// shape), keyed by the agent that produced the scoring.
//
// DesignPrinciplesValidation and ArchitectureCompliance are pointers, not
// value structs: a contract that asserts every principle false is a distinct,
// structurally-valid state from a contract that never populated the block at
// all (presence vs. content are different failure modes — see §3.2). A nil
// pointer means "not asserted"; a non-nil pointer to an all-false struct
// means "asserted, and none of it holds."
type DnaCompliance struct {
	DesignPrinciplesValidation *DesignPrinciples       `json:"designPrinciplesValidation,omitempty"`
	ArchitectureCompliance     *ArchitectureCompliance `json:"architectureCompliance,omitempty"`
	AgentResults               map[AgentType]any       `json:"agentDnaValidation,omitempty"`
}

// InputRequirements describes what an agent needs before it can act.
type InputRequirements struct {
	RequiredFiles       []string       `json:"requiredFiles,omitempty"`
	RequiredData        map[string]any `json:"requiredData,omitempty"`
	RequiredValidations []string       `json:"requiredValidations,omitempty"`
}

// OutputSpecifications describes what an agent promises to deliver.
type OutputSpecifications struct {
	DeliverableFiles   []string       `json:"deliverableFiles,omitempty"`
	DeliverableData    map[string]any `json:"deliverableData,omitempty"`
	ValidationCriteria map[string]any `json:"validationCriteria,omitempty"`
}

// Contract is the atomic unit of coordination between agents.
type Contract struct {
	ContractVersion      string                 `json:"contractVersion"`
	StoryId              string                 `json:"storyId"`
	SourceAgent          AgentType              `json:"sourceAgent"`
	TargetAgent          AgentType              `json:"targetAgent"`
	DnaCompliance        DnaCompliance          `json:"dnaCompliance"`
	InputRequirements    InputRequirements      `json:"inputRequirements"`
	OutputSpecifications OutputSpecifications   `json:"outputSpecifications"`
	QualityGates         []string               `json:"qualityGates,omitempty"`
	HandoffCriteria      []string               `json:"handoffCriteria,omitempty"`
	CreatedAt            time.Time              `json:"createdAt"`
}

// Fields carries the arguments to Build; it mirrors Contract minus the
// version and timestamp, which Build fills in itself.
type Fields struct {
	StoryId              string
	SourceAgent          AgentType
	TargetAgent          AgentType
	DnaCompliance        DnaCompliance
	InputRequirements    InputRequirements
	OutputSpecifications OutputSpecifications
	QualityGates         []string
	HandoffCriteria      []string
}

// Build constructs a Contract from Fields, performing only the shape checks
// that are this package's responsibility: non-empty identifying fields
// (ErrInvalidContractShape) and the storyId traceability of every required
// or deliverable file path (ErrStoryIdTraceability).
// Sequence and DNA-policy validation belong to package validate and package
// dna respectively — Build never rejects on those grounds.
func Build(f Fields) (Contract, error) {
	if f.StoryId == "" {
		return Contract{}, fmt.Errorf("contract: %w: storyId is required", ErrInvalidContractShape)
	}
	if f.SourceAgent == "" {
		return Contract{}, fmt.Errorf("contract: %w: sourceAgent is required", ErrInvalidContractShape)
	}
	if f.TargetAgent == "" {
		return Contract{}, fmt.Errorf("contract: %w: targetAgent is required", ErrInvalidContractShape)
	}
	for _, p := range allPaths(f.InputRequirements.RequiredFiles, f.OutputSpecifications.DeliverableFiles) {
		if !strings.Contains(p, f.StoryId) {
			return Contract{}, fmt.Errorf("contract: %w: path %q does not contain storyId %q", ErrStoryIdTraceability, p, f.StoryId)
		}
	}
	return Contract{
		ContractVersion:      Version,
		StoryId:              f.StoryId,
		SourceAgent:          f.SourceAgent,
		TargetAgent:          f.TargetAgent,
		DnaCompliance:        f.DnaCompliance,
		InputRequirements:    f.InputRequirements,
		OutputSpecifications: f.OutputSpecifications,
		QualityGates:         f.QualityGates,
		HandoffCriteria:      f.HandoffCriteria,
		CreatedAt:            now(),
	}, nil
}

// Patch carries the fields that change when deriving the next contract in a
// chain; zero-valued fields leave the prior contract's value untouched,
// except TargetAgent which is always required.
type Patch struct {
	TargetAgent          AgentType
	DnaCompliance        *DnaCompliance
	InputRequirements    *InputRequirements
	OutputSpecifications *OutputSpecifications
	QualityGates         []string
	HandoffCriteria      []string
}

// Derive produces the next contract in a chain: storyId is carried forward,
// sourceAgent becomes prev's targetAgent, and the caller supplies the new
// targetAgent plus whatever else changed.
func Derive(prev Contract, p Patch) (Contract, error) {
	if p.TargetAgent == "" {
		return Contract{}, fmt.Errorf("contract: %w: targetAgent is required to derive", ErrInvalidContractShape)
	}
	next := Fields{
		StoryId:              prev.StoryId,
		SourceAgent:          prev.TargetAgent,
		TargetAgent:          p.TargetAgent,
		DnaCompliance:        prev.DnaCompliance,
		InputRequirements:    prev.InputRequirements,
		OutputSpecifications: prev.OutputSpecifications,
		QualityGates:         prev.QualityGates,
		HandoffCriteria:      prev.HandoffCriteria,
	}
	if p.DnaCompliance != nil {
		next.DnaCompliance = *p.DnaCompliance
	}
	if p.InputRequirements != nil {
		next.InputRequirements = *p.InputRequirements
	}
	if p.OutputSpecifications != nil {
		next.OutputSpecifications = *p.OutputSpecifications
	}
	if p.QualityGates != nil {
		next.QualityGates = p.QualityGates
	}
	if p.HandoffCriteria != nil {
		next.HandoffCriteria = p.HandoffCriteria
	}
	return Build(next)
}

// Equal reports whether two contracts are structurally identical, ignoring
// CreatedAt (which is a generation timestamp, not part of the payload's
// identity) for the purposes of round-trip tests.
func (c Contract) Equal(other Contract) bool {
	a, b := c, other
	a.CreatedAt, b.CreatedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(a, b)
}

func allPaths(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// now is a var so tests can pin a clock deterministically.
var now = time.Now
