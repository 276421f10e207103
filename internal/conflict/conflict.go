// Package conflict detects overlapping deliverable paths between concurrently
// in-flight work items, adapted from the teacher's kanban file-glob overlap
// check (kanban/conflict.go) and retargeted from kanban.Ticket.Files to
// contract.Contract's RequiredFiles/DeliverableFiles.
package conflict

import (
	"path/filepath"
	"strings"

	"github.com/arctek/handoff/contract"
)

// Claim is the slice of a Contract that matters for overlap detection: the
// files it reads and the files it promises to write.
type Claim struct {
	WorkId string
	Files  []string
}

// ClaimFor extracts a Claim from a contract's combined required/deliverable
// file lists.
func ClaimFor(workId string, c contract.Contract) Claim {
	files := append([]string{}, c.InputRequirements.RequiredFiles...)
	files = append(files, c.OutputSpecifications.DeliverableFiles...)
	return Claim{WorkId: workId, Files: files}
}

// Overlaps reports whether candidate's files could collide with any active
// claim's files. Used by the scheduler to avoid dispatching two in-flight
// work items that would write the same artifact path concurrently.
func Overlaps(candidate Claim, active []Claim) bool {
	for _, other := range active {
		if other.WorkId == candidate.WorkId {
			continue
		}
		if filesOverlap(candidate.Files, other.Files) {
			return true
		}
	}
	return false
}

func filesOverlap(a, b []string) bool {
	for _, patternA := range a {
		for _, patternB := range b {
			if patternsOverlap(patternA, patternB) {
				return true
			}
		}
	}
	return false
}

// patternsOverlap checks if two glob-ish paths could refer to the same file.
// Conservative: may report an overlap that wouldn't actually occur.
func patternsOverlap(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	if isParentPath(a, b) || isParentPath(b, a) {
		return true
	}

	aParts := strings.Split(a, string(filepath.Separator))
	bParts := strings.Split(b, string(filepath.Separator))
	minLen := len(aParts)
	if len(bParts) < minLen {
		minLen = len(bParts)
	}
	common := 0
	for i := 0; i < minLen; i++ {
		if aParts[i] == bParts[i] || aParts[i] == "*" || bParts[i] == "*" || aParts[i] == "**" || bParts[i] == "**" {
			common++
		} else {
			break
		}
	}
	if common == minLen {
		return true
	}

	if strings.Contains(a, "**") || strings.Contains(b, "**") {
		aDir, bDir := firstConcreteDir(a), firstConcreteDir(b)
		if aDir != "" && bDir != "" && (aDir == bDir || strings.HasPrefix(aDir, bDir) || strings.HasPrefix(bDir, aDir)) {
			return true
		}
	}
	return false
}

func isParentPath(parent, child string) bool {
	parent = strings.TrimSuffix(parent, "/*")
	parent = strings.TrimSuffix(parent, "/**")
	child = strings.TrimSuffix(child, "/*")
	child = strings.TrimSuffix(child, "/**")
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

func firstConcreteDir(pattern string) string {
	for _, part := range strings.Split(pattern, string(filepath.Separator)) {
		if part != "*" && part != "**" && !strings.Contains(part, "*") {
			return part
		}
	}
	return ""
}
