package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/render"
)

// Step names a stage of a generation run.
type Step string

const (
	StepInitializing      Step = "initializing"
	StepResearchTopics    Step = "research_topics"
	StepResearchKnowledge Step = "research_knowledge"
	StepGenerateQuestions Step = "generate_questions"
	StepCompileMetadata   Step = "compile_metadata"
	StepGenerateNotes     Step = "generate_notes"
	StepGeneratePDF       Step = "generate_pdf"
	StepCompleted         Step = "completed"
	StepError             Step = "error"
)

// Progress reported once each step finishes.
const (
	progressInitializing  = 0
	progressTopics        = 15
	progressKnowledgeDone = 35
	progressQuestions     = 55
	progressMetadata      = 65
	progressNotes         = 80
	progressPDF           = 90
	progressCompleted     = 100
)

// Error codes carried by error events besides the llm.Kind labels.
const (
	CodeRender   = "render"
	CodeCanceled = llm.KindCanceled
)

// ProgressEvent reports the state of a run. Progress never decreases
// within a run and the last event is either completed or error.
type ProgressEvent struct {
	RunID    string                 `json:"run_id,omitempty"`
	Step     Step                   `json:"step"`
	Message  string                 `json:"message"`
	Progress int                    `json:"progress"`
	Data     map[string]any         `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Result   *exam.GenerationResult `json:"result,omitempty"`
}

// Terminal reports whether e ends its run.
func (e ProgressEvent) Terminal() bool {
	return e.Step == StepCompleted || e.Step == StepError
}

// StepFailure records which step of a run failed.
type StepFailure struct {
	Step Step
	Err  error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepFailure) Unwrap() error { return e.Err }

// ErrorCode classifies err for clients: "canceled", "render" or an
// llm.Kind label.
func ErrorCode(err error) string {
	var re *render.RenderError
	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.As(err, &re):
		return CodeRender
	default:
		return llm.Kind(err)
	}
}

// errorEvent converts a run failure into its terminal event. progress is
// the last value reported so the sequence stays non-decreasing.
func errorEvent(err error, progress int) ProgressEvent {
	cause := err
	step := Step("")
	var se *StepFailure
	if errors.As(err, &se) {
		cause = se.Err
		step = se.Step
	}

	msg := "Exam generation failed"
	if step != "" {
		msg = fmt.Sprintf("Exam generation failed at %s", step)
	}
	return ProgressEvent{
		Step:     StepError,
		Message:  msg,
		Progress: progress,
		Error:    cause.Error(),
		Code:     ErrorCode(err),
		Data:     map[string]any{"failed_step": string(step)},
	}
}
