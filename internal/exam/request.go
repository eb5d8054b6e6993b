package exam

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// EducationLevel is the school stage an exam targets.
type EducationLevel string

const (
	Primary EducationLevel = "primary"
	Middle  EducationLevel = "middle"
	High    EducationLevel = "high"
)

// Difficulty is the requested exam difficulty.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Request bounds.
const (
	MinQuestionCount  = 5
	MaxQuestionCount  = 50
	MaxTopicRuneCount = 200
)

// GenerationRequest holds the parameters of one exam generation run.
// Treat it as a value: the pipeline never mutates a submitted request.
type GenerationRequest struct {
	EducationLevel EducationLevel `json:"education_level"`
	Subject        string         `json:"subject"`
	KnowledgeTopic string         `json:"knowledge_topic"`
	Difficulty     Difficulty     `json:"difficulty_level"`
	QuestionCount  int            `json:"question_count"`
	QuestionTypes  []QuestionType `json:"question_types"`
}

// DefaultRequest returns the values used for fields a client omits.
func DefaultRequest() GenerationRequest {
	return GenerationRequest{
		EducationLevel: Middle,
		Subject:        "math",
		Difficulty:     Medium,
		QuestionCount:  10,
		QuestionTypes:  []QuestionType{MultipleChoice, ShortAnswer},
	}
}

// UnmarshalJSON fills absent fields from DefaultRequest. Fields present in
// the payload, including an explicit empty question_types list, win.
func (r *GenerationRequest) UnmarshalJSON(data []byte) error {
	type plain GenerationRequest
	v := plain(DefaultRequest())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = GenerationRequest(v)
	return nil
}

// ValidationError reports a malformed generation request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Normalize validates r and returns a cleaned copy: enum values lowercased,
// topic trimmed, duplicate question types collapsed in first-seen order.
// The returned error is always a *ValidationError.
func (r GenerationRequest) Normalize() (GenerationRequest, error) {
	out := GenerationRequest{
		EducationLevel: EducationLevel(strings.ToLower(strings.TrimSpace(string(r.EducationLevel)))),
		Subject:        strings.ToLower(strings.TrimSpace(r.Subject)),
		KnowledgeTopic: strings.TrimSpace(r.KnowledgeTopic),
		Difficulty:     Difficulty(strings.ToLower(strings.TrimSpace(string(r.Difficulty)))),
		QuestionCount:  r.QuestionCount,
	}

	switch out.EducationLevel {
	case Primary, Middle, High:
	default:
		return GenerationRequest{}, invalid("education_level", "must be one of primary, middle, high (got %q)", r.EducationLevel)
	}

	if out.Subject == "" {
		return GenerationRequest{}, invalid("subject", "must not be empty")
	}

	if out.KnowledgeTopic == "" {
		return GenerationRequest{}, invalid("knowledge_topic", "must not be empty")
	}
	if n := utf8.RuneCountInString(out.KnowledgeTopic); n > MaxTopicRuneCount {
		return GenerationRequest{}, invalid("knowledge_topic", "must be at most %d characters (got %d)", MaxTopicRuneCount, n)
	}

	switch out.Difficulty {
	case Easy, Medium, Hard:
	default:
		return GenerationRequest{}, invalid("difficulty_level", "must be one of easy, medium, hard (got %q)", r.Difficulty)
	}

	if out.QuestionCount < MinQuestionCount || out.QuestionCount > MaxQuestionCount {
		return GenerationRequest{}, invalid("question_count", "must be between %d and %d (got %d)", MinQuestionCount, MaxQuestionCount, r.QuestionCount)
	}

	types := lo.Map(r.QuestionTypes, func(t QuestionType, _ int) QuestionType {
		return QuestionType(strings.ToLower(strings.TrimSpace(string(t))))
	})
	if len(types) == 0 {
		return GenerationRequest{}, invalid("question_types", "at least one question type is required")
	}
	if unknown := lo.Reject(types, func(t QuestionType, _ int) bool { return t.Valid() }); len(unknown) > 0 {
		return GenerationRequest{}, invalid("question_types", "unknown question type %q", unknown[0])
	}
	out.QuestionTypes = lo.Uniq(types)

	return out, nil
}

// Allows reports whether t is one of the requested question types.
func (r GenerationRequest) Allows(t QuestionType) bool {
	return lo.Contains(r.QuestionTypes, t)
}
