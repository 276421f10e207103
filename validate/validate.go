// Package validate implements the two-layer contract validation described
// for the coordination core: structural shape checks, then legal-sequence
// checks. Neither layer ever panics; both return an accumulated Result so
// callers can distinguish "invalid" from "errored."
package validate

import (
	"fmt"
	"strings"

	"github.com/arctek/handoff/contract"
)

// Result carries every problem found, rather than failing on the first one,
// following the accumulate-then-report shape of kanban.ValidateTicketFiles.
type Result struct {
	OK     bool
	Errors []string
}

func fail(errs ...string) Result {
	return Result{OK: false, Errors: errs}
}

func ok() Result {
	return Result{OK: true}
}

// Sequence is the closed transition table: sourceAgent -> set of legal
// targetAgents. Originator aliases may only ever target projectManager.
var Sequence = map[contract.AgentType][]contract.AgentType{
	contract.AgentGithub:          {contract.AgentProjectManager},
	contract.AgentSystem:          {contract.AgentProjectManager},
	contract.AgentProjectManager:  {contract.AgentGameDesigner},
	contract.AgentGameDesigner:    {contract.AgentDeveloper},
	contract.AgentDeveloper:       {contract.AgentTestEngineer},
	contract.AgentTestEngineer:    {contract.AgentQATester},
	contract.AgentQATester:        {contract.AgentQualityReviewer},
	contract.AgentQualityReviewer: {contract.AgentProjectManager},
}

// Structural validates field presence and shape: all nine DNA booleans must
// exist (each sub-block is a pointer whose struct carries all of its
// booleans, so the check here is that neither sub-block is nil), enums are
// known values, and every path in the input/output file lists contains the
// contract's storyId.
func Structural(c contract.Contract) Result {
	var errs []string

	if c.StoryId == "" {
		errs = append(errs, "storyId is required")
	}
	if c.SourceAgent == "" {
		errs = append(errs, "sourceAgent is required")
	}
	if c.TargetAgent == "" {
		errs = append(errs, "targetAgent is required")
	}
	if !knownAgent(c.SourceAgent, true) {
		errs = append(errs, fmt.Sprintf("unknown sourceAgent %q", c.SourceAgent))
	}
	if !knownAgent(c.TargetAgent, false) {
		errs = append(errs, fmt.Sprintf("unknown or source-only targetAgent %q", c.TargetAgent))
	}
	if c.DnaCompliance.DesignPrinciplesValidation == nil && c.DnaCompliance.ArchitectureCompliance == nil {
		// Neither sub-block was ever populated: nothing was asserted at all.
		// An asserted-but-all-false block is a distinct, structurally valid
		// state that fails later at the DNA engine, not here.
		errs = append(errs, "dnaCompliance block is empty")
	} else if c.DnaCompliance.DesignPrinciplesValidation == nil {
		errs = append(errs, "dnaCompliance.designPrinciplesValidation is missing")
	} else if c.DnaCompliance.ArchitectureCompliance == nil {
		errs = append(errs, "dnaCompliance.architectureCompliance is missing")
	}

	for _, p := range append(append([]string{}, c.InputRequirements.RequiredFiles...), c.OutputSpecifications.DeliverableFiles...) {
		if c.StoryId != "" && !strings.Contains(p, c.StoryId) {
			errs = append(errs, fmt.Sprintf("path %q does not contain storyId %q", p, c.StoryId))
		}
	}

	if len(errs) > 0 {
		return fail(errs...)
	}
	return ok()
}

// SequenceCheck validates that (sourceAgent, targetAgent) is a legal transition.
func SequenceCheck(c contract.Contract) Result {
	targets, known := Sequence[c.SourceAgent]
	if !known {
		return fail(fmt.Sprintf("no legal targets defined for sourceAgent %q", c.SourceAgent))
	}
	for _, t := range targets {
		if t == c.TargetAgent {
			return ok()
		}
	}
	return fail(fmt.Sprintf("%q -> %q is not a legal transition", c.SourceAgent, c.TargetAgent))
}

// All runs both layers and merges their results. Structural failures are
// reported even when the sequence is also invalid, since both are useful to
// a caller deciding how to react.
func All(c contract.Contract) Result {
	s := Structural(c)
	q := SequenceCheck(c)
	if s.OK && q.OK {
		return ok()
	}
	return fail(append(append([]string{}, s.Errors...), q.Errors...)...)
}

func knownAgent(a contract.AgentType, allowOriginator bool) bool {
	switch a {
	case contract.AgentProjectManager, contract.AgentGameDesigner, contract.AgentDeveloper,
		contract.AgentTestEngineer, contract.AgentQATester, contract.AgentQualityReviewer:
		return true
	case contract.AgentGithub, contract.AgentSystem:
		return allowOriginator
	default:
		return false
	}
}
