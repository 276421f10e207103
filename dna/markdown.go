package dna

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// qualityReviewerMetrics composes the digest the quality reviewer's handoff
// carries, per SPEC_FULL.md §4.3.3. Documentation quality is measured by
// parsing every narrative text field as Markdown with goldmark and walking
// the resulting AST — entirely in memory, never written to disk, matching
// the Non-goal that excludes persisted documentation rendering.
func qualityReviewerMetrics(a Artifact, principles map[Principle]PrincipleResult) map[string]float64 {
	metrics := map[string]float64{
		"averageComponentComplexity": meanInt(a.ComponentComplexities),
		"averageApiComplexity":       meanInt(a.EndpointComplexities),
		"testEffectivenessScore":     principles[TimeRespect].Score,
		"documentationQualityScore":  documentationQualityScore(a.Texts),
		"overallArchitectureScore":   meanScore(principles, architecturePrinciples),
	}
	return metrics
}

func documentationQualityScore(texts []string) float64 {
	if len(texts) == 0 {
		return 1.0
	}
	var headings, links, words int
	src := []byte(joinTexts(texts))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			headings++
		case ast.KindLink, ast.KindAutoLink:
			links++
		case ast.KindText:
			words += len(splitWords(string(n.(*ast.Text).Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})
	score := 1.0
	if words > 40 {
		score += 1.5
	}
	if headings > 0 {
		score += 1.5
	}
	if links > 0 {
		score += 1.0
	}
	return clamp(score)
}

func joinTexts(texts []string) string {
	out := ""
	for i, t := range texts {
		if i > 0 {
			out += "\n\n"
		}
		out += t
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
