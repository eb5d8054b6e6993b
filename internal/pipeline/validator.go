package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/examgen/internal/exam"
)

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages and logging,
	// e.g. "structural", "choices".
	Name() string

	// Validate returns nil if q passes. The request gives context such as
	// the allowed question types.
	Validate(q *exam.Question, req exam.GenerationRequest) *QuestionError
}

// QuestionError describes why a generated question was rejected.
type QuestionError struct {
	Validator  string
	QuestionID int
	Message    string
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %d rejected by %q: %s", e.QuestionID, e.Validator, e.Message)
}

// StructuralValidator checks required text and the question type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *exam.Question, req exam.GenerationRequest) *QuestionError {
	if strings.TrimSpace(q.Text) == "" {
		return &QuestionError{Validator: v.Name(), QuestionID: q.ID, Message: "question_text is empty"}
	}
	if !req.Allows(q.Type) {
		return &QuestionError{
			Validator:  v.Name(),
			QuestionID: q.ID,
			Message:    fmt.Sprintf("question_type %q was not requested", q.Type),
		}
	}
	return nil
}

// ChoicesValidator checks multiple choice options.
type ChoicesValidator struct{}

func (v *ChoicesValidator) Name() string { return "choices" }

func (v *ChoicesValidator) Validate(q *exam.Question, _ exam.GenerationRequest) *QuestionError {
	if q.Type != exam.MultipleChoice {
		return nil
	}
	if len(q.Options) < 2 {
		return &QuestionError{
			Validator:  v.Name(),
			QuestionID: q.ID,
			Message:    fmt.Sprintf("multiple choice needs at least 2 options, got %d", len(q.Options)),
		}
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return &QuestionError{
				Validator:  v.Name(),
				QuestionID: q.ID,
				Message:    fmt.Sprintf("option %d is empty", i+1),
			}
		}
	}
	return nil
}

// optionLabel matches "A. ", "b) ", "(C) " and "D: " style prefixes.
var optionLabel = regexp.MustCompile(`^\s*(?:\(([A-Za-z])\)|([A-Za-z])[.):])\s*`)

// stripOptionLabels removes letter labels when every option carries the
// label matching its position. Options that are not consistently labelled
// are returned unchanged.
func stripOptionLabels(options []string) []string {
	if len(options) == 0 {
		return options
	}
	out := make([]string, len(options))
	for i, o := range options {
		m := optionLabel.FindStringSubmatch(o)
		if m == nil {
			return options
		}
		letter := strings.ToUpper(m[1] + m[2])
		if letter != string(rune('A'+i)) {
			return options
		}
		out[i] = strings.TrimSpace(o[len(m[0]):])
	}
	return out
}
