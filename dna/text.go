package dna

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs the case-insensitive matching ProfessionalTone and the
// stateless-backend marker scan need, using the same golang.org/x/text
// casing machinery the teacher wires into its prompt template FuncMap
// (there for human-facing title-casing; here for artifact-text scanning).
var foldCaser = cases.Fold()

func containsFold(haystack, needle string) bool {
	return strings.Contains(foldCaser.String(haystack), foldCaser.String(needle))
}

func countOccurrences(haystack, needle string) int {
	return strings.Count(foldCaser.String(haystack), foldCaser.String(needle))
}

var domainTerminology = []string{
	"objective", "requirement", "acceptance criteria", "specification",
}

var informalTerms = []string{
	"gonna", "wanna", "kinda", "lol", "yeah", "ok cool",
}

func evalProfessionalTone(a Artifact) PrincipleResult {
	if len(a.Texts) == 0 {
		return PrincipleResult{Compliant: true, Score: 4.0}
	}

	joined := strings.Join(a.Texts, " ")
	var violations []string

	hasDomainTerm := false
	for _, term := range domainTerminology {
		if containsFold(joined, term) {
			hasDomainTerm = true
			break
		}
	}
	if !hasDomainTerm {
		violations = append(violations, "no domain terminology present")
	}

	casualHits := 0
	for _, term := range informalTerms {
		if containsFold(joined, term) {
			casualHits++
			// Matching is fold-based; the message reports the term with the
			// casing it has in the artifact text.
			matched := term
			for i := 0; i+len(term) <= len(joined); i++ {
				if strings.EqualFold(joined[i:i+len(term)], term) {
					matched = joined[i : i+len(term)]
					break
				}
			}
			violations = append(violations, fmt.Sprintf("informal term %q present", matched))
		}
	}

	grade := readingGrade(joined)
	if grade > 8 {
		violations = append(violations, fmt.Sprintf("estimated reading grade %.1f exceeds cap 8.0", grade))
	}

	score := 5.0
	if !hasDomainTerm {
		score -= 1.5
	}
	score -= float64(casualHits) * 1.0
	if grade > 8 {
		score -= (grade - 8) * 0.3
	}
	score = clamp(score)

	return PrincipleResult{
		Compliant:       len(violations) == 0,
		Score:           score,
		Violations:      violations,
		Recommendations: recommendIf(len(violations) > 0, "use domain terminology, avoid casual phrasing, keep sentences plain"),
	}
}

// readingGrade is a simplified Flesch-Kincaid-grade-style estimate: average
// sentence length and average syllable-per-word count, combined the same
// way the standard formula does, without a dictionary dependency.
func readingGrade(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += estimateSyllables(w)
	}
	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	syllablesPerWord := float64(syllables) / float64(len(words))
	return 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
}

func estimateSyllables(word string) int {
	word = strings.ToLower(word)
	vowels := "aeiouy"
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if count == 0 {
		count = 1
	}
	return count
}

func recommendIf(cond bool, msg string) []string {
	if !cond {
		return nil
	}
	return []string{msg}
}
