// Package formatter shapes generated answers according to the kind of question asked.
package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
)

const (
	statsSourceChars    = 150
	evidenceSourceChars = 200
	evidenceSources     = 2
)

var (
	simplePatterns = compile(
		`columns?( names| list)?`,
		`how many (rows|columns)`,
		`data types?`,
		`shape( of|$)`,
		`(is|are) there (duplicates|missing)`,
		`what (is|are) the (first|last) \d+ rows`,
	)
	statsPatterns = compile(
		`(mean|median|average|max|min) of`,
		`unique values in`,
		`most frequent`,
	)

	whatIsPattern = regexp.MustCompile(`\bwhat'?s\b`)
	fillerPattern = regexp.MustCompile(`\b(please|can you|show me)\b`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Normalize lower-cases a question, trims question marks and spaces and
// strips politeness filler
func Normalize(question string) string {
	q := strings.Trim(strings.ToLower(question), "? ")
	q = whatIsPattern.ReplaceAllString(q, "what is")
	return fillerPattern.ReplaceAllString(q, "")
}

// IsSimple reports a factual question about the dataset's structure
func IsSimple(question string) bool {
	return matchAny(simplePatterns, Normalize(question))
}

// IsStats reports a question about a basic statistic
func IsStats(question string) bool {
	return matchAny(statsPatterns, Normalize(question))
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Kind is how a question's answer gets presented
type Kind string

const (
	KindSimple   Kind = "simple"
	KindStats    Kind = "stats"
	KindAnalysis Kind = "analysis"
)

// Classify picks the presentation for question; structural wording wins
// over statistical wording
func Classify(question string) Kind {
	q := Normalize(question)
	switch {
	case matchAny(simplePatterns, q):
		return KindSimple
	case matchAny(statsPatterns, q):
		return KindStats
	default:
		return KindAnalysis
	}
}

// Format renders an answer. Structural questions get the bare answer,
// statistical ones a short source excerpt, anything else the answer with
// up to two pieces of supporting evidence.
func Format(answer *rag.Answer, question string) string {
	if answer == nil {
		return "Error: Invalid answer format"
	}

	// normalized twice: filler removal can leave spaces that only a second
	// trim clears
	switch Classify(Normalize(question)) {
	case KindSimple:
		if answer.Answer == "" {
			return "No answer found"
		}
		return answer.Answer

	case KindStats:
		response := answer.Answer
		if len(answer.SourceDocuments) > 0 {
			response += fmt.Sprintf("\n\n(Source: %s...)", truncate(answer.SourceDocuments[0], statsSourceChars))
		}
		return response

	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Analysis: %s\n\n", answer.Answer)
		if len(answer.SourceDocuments) > 0 {
			b.WriteString("Supporting Evidence:\n")
			for i, doc := range answer.SourceDocuments {
				if i == evidenceSources {
					break
				}
				fmt.Fprintf(&b, "%d. %s...\n", i+1, truncate(doc, evidenceSourceChars))
			}
		}
		return b.String()
	}
}

// truncate keeps the first n characters of s
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
