package dna

import (
	"fmt"
	"strings"

	"github.com/arctek/handoff/contract"
)

func evalPedagogicalValue(a Artifact) PrincipleResult {
	if len(a.LearningObjectives) == 0 {
		// No learning objectives declared: nothing to measure against, so
		// the principle has nothing to fail on but also nothing to credit.
		return PrincipleResult{Compliant: true, Score: 4.0}
	}
	referenced := 0
	seen := map[string]bool{}
	for _, r := range a.ReferencedObjectives {
		seen[r] = true
	}
	for _, o := range a.LearningObjectives {
		if seen[o] {
			referenced++
		}
	}
	coverage := float64(referenced) / float64(len(a.LearningObjectives))
	score := clamp(1.0 + coverage*4.0)
	var violations, recs []string
	if coverage < 0.8 {
		violations = append(violations, fmt.Sprintf("only %d/%d declared learning objectives referenced", referenced, len(a.LearningObjectives)))
		recs = append(recs, "reference every declared learning objective explicitly in the artifact")
	}
	return PrincipleResult{Compliant: score >= 4.0, Score: score, Violations: violations, Recommendations: recs}
}

func evalPolicyToPractice(a Artifact) PrincipleResult {
	return narrativeScore(a, "policyToPractice", 4.0)
}

func evalHolisticThinking(a Artifact) PrincipleResult {
	return narrativeScore(a, "holisticThinking", 4.0)
}

// narrativeScore is the shared shape for the two principles whose rule is
// "evaluated on produced narrative text, score >= 4.0 required." Absent a
// content-level NLP model, the engine credits artifacts carrying non-trivial
// narrative text and flags thin ones; this is the deterministic floor the
// engine is specified to enforce, not a substitute for actual review.
func narrativeScore(a Artifact, label string, threshold float64) PrincipleResult {
	if len(a.Texts) == 0 {
		return PrincipleResult{
			Compliant:       false,
			Score:           1.0,
			Violations:      []string{"no narrative text produced to evaluate"},
			Recommendations: []string{"include a rationale narrative in the artifact"},
		}
	}
	totalLen := 0
	for _, t := range a.Texts {
		totalLen += len(t)
	}
	avg := float64(totalLen) / float64(len(a.Texts))
	score := clamp(1.0 + avg/80.0)
	if score > 5.0 {
		score = 5.0
	}
	var violations, recs []string
	if score < threshold {
		violations = append(violations, "narrative text too thin to demonstrate "+label)
		recs = append(recs, "expand the narrative with concrete reasoning")
	}
	return PrincipleResult{Compliant: score >= threshold, Score: score, Violations: violations, Recommendations: recs}
}

// timeRespectLimits are the agent-specific bounds from SPEC_FULL.md §4.3.2.
type timeRespectLimits struct {
	maxUIElementsPerScreen int
	maxInteractionSteps    int
	maxNavigationDepth     int
	maxEstimatedMinutes    float64

	maxComponentComplexity int
	maxEndpointComplexity  int
	maxFunctionComplexity  int
	maxNestingDepth        int
	maxFileLines           int

	maxTotalTestMinutes float64
}

var timeRespectByAgent = map[contract.AgentType]timeRespectLimits{
	contract.AgentGameDesigner: {
		maxUIElementsPerScreen: 8,
		maxInteractionSteps:    5,
		maxNavigationDepth:     3,
		maxEstimatedMinutes:    10,
	},
	contract.AgentDeveloper: {
		maxComponentComplexity: 10,
		maxEndpointComplexity:  8,
		maxFunctionComplexity:  5,
		maxNestingDepth:        3,
		maxFileLines:           200,
	},
	contract.AgentTestEngineer: {
		maxTotalTestMinutes: 10,
	},
}

func evalTimeRespect(agent contract.AgentType, a Artifact) PrincipleResult {
	limits, has := timeRespectByAgent[agent]
	if !has {
		// No agent-specific bound defined: the principle is satisfied
		// vacuously rather than penalizing an agent the rule doesn't cover.
		return PrincipleResult{Compliant: true, Score: 5.0}
	}

	var violations []string

	for _, n := range a.UIElementCountsPerScreen {
		if limits.maxUIElementsPerScreen > 0 && n > limits.maxUIElementsPerScreen {
			violations = append(violations, fmt.Sprintf("screen has %d UI elements, limit %d", n, limits.maxUIElementsPerScreen))
		}
	}
	if limits.maxInteractionSteps > 0 && a.InteractionSteps > limits.maxInteractionSteps {
		violations = append(violations, fmt.Sprintf("%d interaction steps exceeds limit %d", a.InteractionSteps, limits.maxInteractionSteps))
	}
	if limits.maxNavigationDepth > 0 && a.NavigationDepth > limits.maxNavigationDepth {
		violations = append(violations, fmt.Sprintf("navigation depth %d exceeds limit %d", a.NavigationDepth, limits.maxNavigationDepth))
	}
	if limits.maxEstimatedMinutes > 0 && a.EstimatedMinutes > limits.maxEstimatedMinutes {
		violations = append(violations, fmt.Sprintf("estimated completion %.1f min exceeds limit %.1f", a.EstimatedMinutes, limits.maxEstimatedMinutes))
	}

	for _, c := range a.ComponentComplexities {
		if limits.maxComponentComplexity > 0 && c > limits.maxComponentComplexity {
			violations = append(violations, fmt.Sprintf("component complexity %d exceeds limit %d", c, limits.maxComponentComplexity))
		}
	}
	for _, c := range a.EndpointComplexities {
		if limits.maxEndpointComplexity > 0 && c > limits.maxEndpointComplexity {
			violations = append(violations, fmt.Sprintf("endpoint complexity %d exceeds limit %d", c, limits.maxEndpointComplexity))
		}
	}
	for _, c := range a.FunctionComplexities {
		if limits.maxFunctionComplexity > 0 && c > limits.maxFunctionComplexity {
			violations = append(violations, fmt.Sprintf("function complexity %d exceeds limit %d", c, limits.maxFunctionComplexity))
		}
	}
	if limits.maxNestingDepth > 0 && a.MaxNestingDepth > limits.maxNestingDepth {
		violations = append(violations, fmt.Sprintf("nesting depth %d exceeds limit %d", a.MaxNestingDepth, limits.maxNestingDepth))
	}
	for _, n := range a.FileLineCounts {
		if limits.maxFileLines > 0 && n > limits.maxFileLines {
			violations = append(violations, fmt.Sprintf("file has %d lines, limit %d", n, limits.maxFileLines))
		}
	}

	total := a.TestSuite.UnitMinutes + a.TestSuite.IntegrationMinutes + a.TestSuite.E2EMinutes
	if limits.maxTotalTestMinutes > 0 {
		if total > limits.maxTotalTestMinutes {
			violations = append(violations, fmt.Sprintf("test suite takes %.1f min, limit %.1f", total, limits.maxTotalTestMinutes))
		}
		if total > 3 && !a.TestSuite.Parallel {
			violations = append(violations, "test suite exceeds 3 minutes and should run in parallel")
		}
	}

	if len(violations) == 0 {
		return PrincipleResult{Compliant: true, Score: 5.0}
	}
	score := clamp(5.0 - float64(len(violations)))
	return PrincipleResult{
		Compliant:       false,
		Score:           score,
		Violations:      violations,
		Recommendations: []string{"reduce scope or split the artifact to fit within the time-respect bounds"},
	}
}

func evalApiFirst(a Artifact) PrincipleResult {
	if len(a.UIComponents) > 0 && len(a.Endpoints) == 0 {
		return PrincipleResult{
			Compliant:       false,
			Score:           1.0,
			Violations:      []string{"UI components exist with no backing REST endpoint"},
			Recommendations: []string{"define the API before implementing the UI that consumes it"},
		}
	}
	var violations []string
	for _, e := range a.Endpoints {
		if !strings.HasPrefix(e.Path, "/api/") {
			violations = append(violations, fmt.Sprintf("endpoint %q does not begin with /api/", e.Path))
		}
		if e.ResponseTimeMs > 200 {
			violations = append(violations, fmt.Sprintf("endpoint %q estimated at %.0fms, limit 200ms", e.Path, e.ResponseTimeMs))
		}
	}
	if len(violations) == 0 {
		return PrincipleResult{Compliant: true, Score: 5.0}
	}
	return PrincipleResult{Compliant: false, Score: clamp(5.0 - float64(len(violations))), Violations: violations}
}

var statefulIndicators = []string{"session", "cache", "global", "singleton"}

func evalStatelessBackend(a Artifact) PrincipleResult {
	var violations []string
	for _, e := range a.Endpoints {
		if e.StatelessJustified {
			continue
		}
		for _, indicator := range statefulIndicators {
			if containsFold(e.Source, indicator) {
				violations = append(violations, fmt.Sprintf("endpoint %q references %q without a stateless justification marker", e.Path, indicator))
			}
		}
	}
	if len(violations) == 0 {
		return PrincipleResult{Compliant: true, Score: 5.0}
	}
	return PrincipleResult{Compliant: false, Score: clamp(5.0 - float64(len(violations))), Violations: violations}
}

var businessLogicMarkers = []string{"validate", "process", "calculate", "transform"}

func evalSeparationOfConcerns(a Artifact) PrincipleResult {
	var violations []string
	for _, c := range a.UIComponents {
		count := 0
		for _, m := range businessLogicMarkers {
			count += countOccurrences(c.Source, m)
		}
		if count > 2 {
			violations = append(violations, fmt.Sprintf("component %q contains %d business-logic markers, limit 2", c.Name, count))
		}
	}
	if len(violations) == 0 {
		return PrincipleResult{Compliant: true, Score: 5.0}
	}
	return PrincipleResult{Compliant: false, Score: clamp(5.0 - float64(len(violations))), Violations: violations}
}

func evalSimplicityFirst(a Artifact) PrincipleResult {
	var all []int
	all = append(all, a.ComponentComplexities...)
	all = append(all, a.EndpointComplexities...)
	all = append(all, a.FunctionComplexities...)
	for _, c := range a.UIComponents {
		if c.Complexity > 0 {
			all = append(all, c.Complexity)
		}
	}
	if len(all) == 0 {
		return PrincipleResult{Compliant: true, Score: 5.0}
	}
	sum := 0
	for _, c := range all {
		sum += c
	}
	mean := float64(sum) / float64(len(all))
	if mean <= 8.0 {
		return PrincipleResult{Compliant: true, Score: clamp(5.0 - (mean-1)/2)}
	}
	return PrincipleResult{
		Compliant:       false,
		Score:           clamp(5.0 - (mean - 8.0)),
		Violations:      []string{fmt.Sprintf("mean complexity %.1f exceeds limit 8.0", mean)},
		Recommendations: []string{"split the most complex units into smaller ones"},
	}
}
