package grading

import (
	"regexp"
	"strings"
)

// Outcome is the result of matching one submitted answer against one question.
type Outcome struct {
	IsCorrect             bool
	PointsEarned          float64
	RequiresManualGrading bool
}

// Matcher implements the per-type correctness rules. It is a pure value:
// matching the same (question, answer) pair always yields the same Outcome.
type Matcher struct {
	// HeuristicKeys enables the best-effort fallback for short-answer
	// questions authored without any acceptable answers: an expected token is
	// lifted from the prompt itself ("answer X", "type X", ...). Off by
	// default; an unkeyed question then simply grades as incorrect.
	HeuristicKeys bool
}

func (m Matcher) Match(q Question, ans Answer) Outcome {
	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		return matchChoice(q, ans)
	case QuestionShortAnswer:
		return m.matchShortAnswer(q, ans)
	default:
		// essay, file_upload: zero points until a grader records them.
		return Outcome{RequiresManualGrading: true}
	}
}

func matchChoice(q Question, ans Answer) Outcome {
	if ans.AnswerID == "" {
		return Outcome{}
	}
	for _, o := range q.Options {
		if o.IsCorrect && o.ID == ans.AnswerID {
			return Outcome{IsCorrect: true, PointsEarned: q.Points}
		}
	}
	return Outcome{}
}

func (m Matcher) matchShortAnswer(q Question, ans Answer) Outcome {
	submitted := strings.TrimSpace(ans.TextAnswer)
	if submitted == "" {
		return Outcome{}
	}

	keys := q.AcceptableAnswers
	if len(keys) == 0 {
		if !m.HeuristicKeys {
			return Outcome{}
		}
		expected := extractPromptKey(q.Text)
		if expected == "" {
			return Outcome{}
		}
		// Heuristic comparisons are case-insensitive regardless of the
		// question-level flag; the "key" was never authored deliberately.
		f := false
		keys = []AcceptableAnswer{{Text: expected, IsCaseSensitive: &f}}
	}

	matchType := q.MatchType
	if matchType == "" {
		matchType = MatchExact
	}

	for _, key := range keys {
		keyText := strings.TrimSpace(key.Text)
		if keyText == "" {
			continue
		}
		caseSensitive := q.CaseSensitive
		if key.IsCaseSensitive != nil {
			caseSensitive = *key.IsCaseSensitive
		}

		var hit bool
		switch matchType {
		case MatchContains:
			hit = contains(fold(submitted, caseSensitive), fold(keyText, caseSensitive))
		case MatchRegex:
			hit = regexMatch(keyText, submitted, caseSensitive)
		default: // exact
			a, b := fold(submitted, caseSensitive), fold(keyText, caseSensitive)
			hit = a == b
			if !hit && key.IsExactMatch != nil && !*key.IsExactMatch {
				// relaxed key: containment in either direction counts
				hit = contains(a, b) || contains(b, a)
			}
		}
		if hit {
			return Outcome{IsCorrect: true, PointsEarned: q.Points}
		}
	}
	return Outcome{}
}

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}

// regexMatch treats the acceptable-answer text as a pattern. A pattern that
// fails to compile never fails grading; it just doesn't match.
func regexMatch(pattern, submitted string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(submitted)
}

// Lexical cues for prompts that embed their own expected answer, e.g.
// `Type "yes" to continue` or `Enter the answer 42`.
var promptKeyRe = regexp.MustCompile(`(?i)\b(?:answer|type|enter|write)\b[:\s]+(?:is\s+|the\s+(?:word|answer|number)\s+)?["'\x60]?([\w.-]+)["'\x60]?`)

func extractPromptKey(prompt string) string {
	m := promptKeyRe.FindStringSubmatch(prompt)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
