package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
	QuestionFileUpload     QuestionType = "file_upload"
)

// MatchType selects the comparison rule for short-answer questions.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
)

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// AcceptableAnswer is one string that counts as correct for a short-answer
// question. IsExactMatch and IsCaseSensitive override the question-level
// defaults when set.
type AcceptableAnswer struct {
	Text            string `json:"text"`
	IsExactMatch    *bool  `json:"is_exact_match,omitempty"`
	IsCaseSensitive *bool  `json:"is_case_sensitive,omitempty"`
}

type Question struct {
	ID     string       `json:"id"`
	Number int          `json:"question_number"`
	Text   string       `json:"text"`
	Type   QuestionType `json:"type"`
	Points float64      `json:"points"`

	// multiple_choice / true_false
	Options []Option `json:"options,omitempty"`

	// short_answer
	MatchType         MatchType          `json:"match_type,omitempty"`
	CaseSensitive     bool               `json:"case_sensitive,omitempty"`
	AcceptableAnswers []AcceptableAnswer `json:"acceptable_answers,omitempty"`
}

// Answer is the decoded per-question submission payload. Exactly one of the
// fields is meaningful for a given question type.
type Answer struct {
	AnswerID   string `json:"answer_id,omitempty"`
	TextAnswer string `json:"text_answer,omitempty"`
	FileKey    string `json:"file_key,omitempty"`
}

// Answered reports whether the payload carries anything gradeable.
func (a Answer) Answered() bool {
	return a.AnswerID != "" || strings.TrimSpace(a.TextAnswer) != "" || a.FileKey != ""
}

// DecodeAnswer parses a stored answer blob. Callers treat a decode error as
// "no answer for this question" rather than failing the whole grade.
func DecodeAnswer(raw json.RawMessage) (Answer, error) {
	var a Answer
	if len(raw) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return Answer{}, err
	}
	return a, nil
}

func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question %d: id required", q.Number)
	}
	if q.Points <= 0 {
		return fmt.Errorf("question %s: points must be positive", q.ID)
	}
	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: choice question needs options", q.ID)
		}
		seen := map[string]bool{}
		for _, o := range q.Options {
			if strings.TrimSpace(o.ID) == "" {
				return fmt.Errorf("question %s: option id required", q.ID)
			}
			if seen[o.ID] {
				return fmt.Errorf("question %s: duplicate option id %q", q.ID, o.ID)
			}
			seen[o.ID] = true
		}
	case QuestionShortAnswer:
		switch q.MatchType {
		case "", MatchExact, MatchContains, MatchRegex:
		default:
			return fmt.Errorf("question %s: unknown match type %q", q.ID, q.MatchType)
		}
	case QuestionEssay, QuestionFileUpload:
		// no key to validate
	default:
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// ValidateSet validates every question and rejects duplicate IDs. Question
// sets are replaced wholesale on edit, so this runs on the full new set.
func ValidateSet(qs []Question) error {
	if len(qs) == 0 {
		return fmt.Errorf("question set is empty")
	}
	seen := map[string]bool{}
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// AutoGradable reports whether the type can be scored without a human.
func (t QuestionType) AutoGradable() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer:
		return true
	default:
		return false
	}
}

// CorrectAnswerText renders the answer key for display in detailed results.
func (q Question) CorrectAnswerText() string {
	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		for _, o := range q.Options {
			if o.IsCorrect {
				return o.Text
			}
		}
		return ""
	case QuestionShortAnswer:
		parts := make([]string, 0, len(q.AcceptableAnswers))
		for _, a := range q.AcceptableAnswers {
			if s := strings.TrimSpace(a.Text); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return "Requires manual grading"
	}
}

// StripKeys removes answer keys so a question set can be served to students.
func StripKeys(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		c := q
		c.AcceptableAnswers = nil
		if len(q.Options) > 0 {
			opts := make([]Option, len(q.Options))
			for j, o := range q.Options {
				opts[j] = Option{ID: o.ID, Text: o.Text}
			}
			c.Options = opts
		}
		out[i] = c
	}
	return out
}
