// Package dna implements the nine-principle compliance engine applied to
// every artifact an agent produces. Each principle yields a boolean
// compliance flag and a [1,5] score; per-agent rule sets decide which
// principles are load-bearing for that agent's OverallCompliant verdict.
package dna

import (
	"fmt"
	"time"

	"github.com/arctek/handoff/contract"
)

// Principle names one of the nine policy axes.
type Principle string

const (
	PedagogicalValue Principle = "pedagogicalValue"
	PolicyToPractice Principle = "policyToPractice"
	TimeRespect      Principle = "timeRespect"
	HolisticThinking Principle = "holisticThinking"
	ProfessionalTone Principle = "professionalTone"

	ApiFirst             Principle = "apiFirst"
	StatelessBackend     Principle = "statelessBackend"
	SeparationOfConcerns Principle = "separationOfConcerns"
	SimplicityFirst      Principle = "simplicityFirst"
)

var designPrinciples = []Principle{PedagogicalValue, PolicyToPractice, TimeRespect, HolisticThinking, ProfessionalTone}
var architecturePrinciples = []Principle{ApiFirst, StatelessBackend, SeparationOfConcerns, SimplicityFirst}

// Tunable composition weights (SPEC_FULL.md §9: structure is fixed, weights
// are a product-level tunable left as package vars rather than constants).
var (
	WeightDesign       = 0.6
	WeightArchitecture = 0.3
	WeightExtension    = 0.1
)

// PrincipleResult is one axis's verdict.
type PrincipleResult struct {
	Compliant       bool
	Score           float64
	Violations      []string
	Recommendations []string
}

// Endpoint describes one backend route surfaced by a produced artifact.
type Endpoint struct {
	Path               string
	ResponseTimeMs     float64
	Source             string
	StatelessJustified bool
}

// UIComponent describes one produced UI building block.
type UIComponent struct {
	Name       string
	Source     string
	Complexity int
}

// TestSuiteStats summarizes a test-engineer artifact's runtime profile.
type TestSuiteStats struct {
	UnitMinutes        float64
	IntegrationMinutes float64
	E2EMinutes         float64
	Parallel           bool
}

// Artifact is the agent-produced output the engine scores. Agents populate
// only the fields relevant to the principles that apply to them; zero
// values are treated as "nothing produced" rather than an error.
type Artifact struct {
	Texts []string // every human-readable string worth scanning

	UIElementCountsPerScreen []int
	InteractionSteps         int
	NavigationDepth          int
	EstimatedMinutes         float64

	ComponentComplexities []int // per UI component, developer artifacts
	EndpointComplexities  []int // per backend endpoint
	FunctionComplexities  []int // per function, finest grain
	MaxNestingDepth       int
	FileLineCounts        []int

	TestSuite TestSuiteStats

	LearningObjectives   []string
	ReferencedObjectives []string

	Endpoints    []Endpoint
	UIComponents []UIComponent
}

// Result is the composed nine-principle verdict for one artifact.
type Result struct {
	Principles            map[Principle]PrincipleResult
	OverallCompliant       bool
	OverallScore           float64
	Violations             []string
	Recommendations        []string
	Timestamp              time.Time
	QualityReviewerMetrics map[string]float64 `json:"qualityReviewerMetrics,omitempty"`
}

// requiredByAgent lists the principles that must be compliant for
// OverallCompliant to be true for that agent. Every principle is still
// scored for every agent; only the required subset gates compliance.
var requiredByAgent = map[contract.AgentType][]Principle{
	contract.AgentProjectManager:  {PedagogicalValue, PolicyToPractice, HolisticThinking, ProfessionalTone},
	contract.AgentGameDesigner:    {PedagogicalValue, TimeRespect, HolisticThinking, ProfessionalTone},
	contract.AgentDeveloper:       {TimeRespect, ApiFirst, StatelessBackend, SeparationOfConcerns, SimplicityFirst},
	contract.AgentTestEngineer:    {TimeRespect, SimplicityFirst},
	contract.AgentQATester:        {TimeRespect, ProfessionalTone},
	contract.AgentQualityReviewer: {PolicyToPractice, HolisticThinking, ProfessionalTone, SimplicityFirst},
}

// Evaluate runs all nine principle rules against the artifact and composes
// the agent-specific result, including the QualityReviewerMetrics digest
// when agent is the quality reviewer.
func Evaluate(agent contract.AgentType, a Artifact) Result {
	principles := map[Principle]PrincipleResult{
		PedagogicalValue:     evalPedagogicalValue(a),
		PolicyToPractice:     evalPolicyToPractice(a),
		TimeRespect:          evalTimeRespect(agent, a),
		HolisticThinking:     evalHolisticThinking(a),
		ProfessionalTone:     evalProfessionalTone(a),
		ApiFirst:             evalApiFirst(a),
		StatelessBackend:     evalStatelessBackend(a),
		SeparationOfConcerns: evalSeparationOfConcerns(a),
		SimplicityFirst:      evalSimplicityFirst(a),
	}

	result := Result{Principles: principles, Timestamp: now()}

	compliant := true
	for _, p := range requiredByAgent[agent] {
		pr := principles[p]
		if !pr.Compliant {
			compliant = false
		}
		result.Violations = append(result.Violations, prefixed(string(p), pr.Violations)...)
		result.Recommendations = append(result.Recommendations, prefixed(string(p), pr.Recommendations)...)
	}
	result.OverallCompliant = compliant

	var metrics map[string]float64
	if agent == contract.AgentQualityReviewer {
		metrics = qualityReviewerMetrics(a, principles)
		result.QualityReviewerMetrics = metrics
	}
	result.OverallScore = composeScore(principles, extensionScore(agent, metrics))

	return result
}

// composeScore is the three-stream weighted composition from SPEC_FULL.md
// §4.3.3: design 60%, architecture 30%, agent-extension 10%.
func composeScore(principles map[Principle]PrincipleResult, extension float64) float64 {
	design := meanScore(principles, designPrinciples)
	arch := meanScore(principles, architecturePrinciples)
	score := WeightDesign*design + WeightArchitecture*arch + WeightExtension*extension
	return clamp(score)
}

// extensionScore is the agent-extension stream. Only the quality reviewer
// carries a dedicated extension digest (QualityReviewerMetrics); its three
// already-bounded [1,5] metrics are averaged. Every other agent has nothing
// to extend with, so its stream defaults to a neutral midpoint score rather
// than folding into another stream's weight.
func extensionScore(agent contract.AgentType, metrics map[string]float64) float64 {
	if agent != contract.AgentQualityReviewer || len(metrics) == 0 {
		return 3.0
	}
	sum := metrics["testEffectivenessScore"] + metrics["documentationQualityScore"] + metrics["overallArchitectureScore"]
	return sum / 3
}

func meanScore(principles map[Principle]PrincipleResult, subset []Principle) float64 {
	var sum float64
	for _, p := range subset {
		sum += principles[p].Score
	}
	return sum / float64(len(subset))
}

func prefixed(principle string, msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fmt.Sprintf("%s: %s", principle, m))
	}
	return out
}

func clamp(score float64) float64 {
	if score < 1.0 {
		return 1.0
	}
	if score > 5.0 {
		return 5.0
	}
	return score
}

// now is a var so tests can pin a clock deterministically.
var now = time.Now
