package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/logger"
	"github.com/abhisek/examgen/internal/render"
)

const tracerName = "github.com/abhisek/examgen/internal/pipeline"

// Renderer turns a finished run into PDF files.
type Renderer interface {
	Render(ctx context.Context, doc render.Document) (render.Paths, error)
}

// Orchestrator runs the generation steps in order and reports progress.
// It keeps no per-run state, so one Orchestrator serves concurrent runs.
type Orchestrator struct {
	steps    *Steps
	renderer Renderer
	log      *logger.Logger
	tracer   trace.Tracer
	newID    func() string
}

// NewOrchestrator wires the steps to provider and renderer. log may be nil.
func NewOrchestrator(provider llm.Provider, renderer Renderer, cfg Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		steps:    NewSteps(provider, cfg),
		renderer: renderer,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		newID:    uuid.NewString,
	}
}

// Run validates req and starts a run in its own goroutine. A
// *exam.ValidationError is returned synchronously and nothing is started.
// The channel carries the run's events and is closed after the terminal
// one. If ctx is canceled while nobody reads, the run exits without a
// terminal event.
func (o *Orchestrator) Run(ctx context.Context, req exam.GenerationRequest) (<-chan ProgressEvent, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	st := newState(o.newID(), req)
	ch := make(chan ProgressEvent)

	go func() {
		defer close(ch)

		last := progressInitializing
		send := func(ev ProgressEvent) {
			ev.RunID = st.RunID
			last = ev.Progress
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}

		if err := o.execute(ctx, st, send); err != nil {
			ev := errorEvent(err, last)
			ev.RunID = st.RunID
			if ctx.Err() != nil {
				// Deliver only to a consumer already waiting.
				select {
				case ch <- ev:
				default:
				}
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

// Generate runs req to completion on the calling goroutine. onEvent, when
// non-nil, receives every event of the run including the terminal one.
// Failures are also returned as *StepFailure.
func (o *Orchestrator) Generate(ctx context.Context, req exam.GenerationRequest, onEvent func(ProgressEvent)) (*exam.GenerationResult, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	st := newState(o.newID(), req)
	last := progressInitializing
	emit := func(ev ProgressEvent) {
		last = ev.Progress
		if onEvent != nil {
			ev.RunID = st.RunID
			onEvent(ev)
		}
	}
	if err := o.execute(ctx, st, emit); err != nil {
		emit(errorEvent(err, last))
		return nil, err
	}
	return st.Result(), nil
}

// execute runs every step against st. The last event emitted on success
// is completed.
func (o *Orchestrator) execute(ctx context.Context, st *State, emit func(ProgressEvent)) error {
	ctx = llm.WithRunID(ctx, st.RunID)
	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("examgen.run_id", st.RunID),
		attribute.String("examgen.subject", st.Request.Subject),
		attribute.String("examgen.difficulty", string(st.Request.Difficulty)),
		attribute.Int("examgen.question_count", st.Request.QuestionCount),
	))
	defer span.End()

	start := time.Now()
	o.log.Info("exam generation started",
		"run_id", st.RunID,
		"subject", st.Request.Subject,
		"topic", st.Request.KnowledgeTopic,
		"difficulty", st.Request.Difficulty,
		"question_count", st.Request.QuestionCount,
	)

	emit(ProgressEvent{
		Step:     StepInitializing,
		Message:  "Starting exam generation",
		Progress: progressInitializing,
	})

	err := o.runSteps(ctx, st, emit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.log.Warn("exam generation failed",
			"run_id", st.RunID,
			"code", ErrorCode(err),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}

	o.log.Info("exam generation completed",
		"run_id", st.RunID,
		"exam_file", st.Files.ExamFile,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	emit(ProgressEvent{
		Step:     StepCompleted,
		Message:  "Exam generation complete",
		Progress: progressCompleted,
		Result:   st.Result(),
	})
	return nil
}

func (o *Orchestrator) runSteps(ctx context.Context, st *State, emit func(ProgressEvent)) error {
	req := st.Request

	err := o.step(ctx, st, StepResearchTopics, func(ctx context.Context) (err error) {
		st.Topics, err = o.steps.ResearchTopics(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	emit(ProgressEvent{
		Step:     StepResearchTopics,
		Message:  fmt.Sprintf("Identified %d research topics", len(st.Topics)),
		Progress: progressTopics,
		Data:     map[string]any{"topics": st.Topics},
	})

	err = o.step(ctx, st, StepResearchKnowledge, func(ctx context.Context) (err error) {
		st.Knowledge, err = o.steps.GatherKnowledge(ctx, req, st.Topics, func(done, total int, topic string) {
			emit(ProgressEvent{
				Step:     StepResearchKnowledge,
				Message:  fmt.Sprintf("Researched topic %d of %d: %s", done, total, topic),
				Progress: knowledgeProgress(done, total),
				Data:     map[string]any{"topic": topic, "index": done, "total": total},
			})
		})
		return err
	})
	if err != nil {
		return err
	}

	err = o.step(ctx, st, StepGenerateQuestions, func(ctx context.Context) (err error) {
		st.Questions, err = o.steps.GenerateQuestions(ctx, req, st.Knowledge)
		return err
	})
	if err != nil {
		return err
	}
	emit(ProgressEvent{
		Step:     StepGenerateQuestions,
		Message:  fmt.Sprintf("Generated %d questions", len(st.Questions)),
		Progress: progressQuestions,
		Data:     map[string]any{"question_count": len(st.Questions)},
	})

	err = o.step(ctx, st, StepCompileMetadata, func(ctx context.Context) (err error) {
		st.Metadata, err = o.steps.CompileMetadata(ctx, req, st.Questions)
		return err
	})
	if err != nil {
		return err
	}
	emit(ProgressEvent{
		Step:     StepCompileMetadata,
		Message:  "Compiled exam title and instructions",
		Progress: progressMetadata,
		Data:     map[string]any{"title": st.Metadata.Title, "total_points": st.Metadata.TotalPoints},
	})

	err = o.step(ctx, st, StepGenerateNotes, func(ctx context.Context) (err error) {
		st.Notes, err = o.steps.GenerateNotes(ctx, req, st.Knowledge)
		return err
	})
	if err != nil {
		return err
	}
	emit(ProgressEvent{
		Step:     StepGenerateNotes,
		Message:  "Generated study notes",
		Progress: progressNotes,
		Data:     map[string]any{"knowledge_points": len(st.Notes.KnowledgePoints)},
	})

	err = o.step(ctx, st, StepGeneratePDF, func(ctx context.Context) (err error) {
		st.Files, err = o.renderer.Render(ctx, st.document())
		return err
	})
	if err != nil {
		return err
	}
	emit(ProgressEvent{
		Step:     StepGeneratePDF,
		Message:  "Rendered exam, answer key and study notes",
		Progress: progressPDF,
		Data: map[string]any{
			"exam_file":       st.Files.ExamFile,
			"answer_key_file": st.Files.AnswerKeyFile,
			"notes_file":      st.Files.NotesFile,
		},
	})
	return nil
}

// step runs fn in its own span. A canceled ctx stops the run before fn.
func (o *Orchestrator) step(ctx context.Context, st *State, step Step, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StepFailure{Step: step, Err: err}
	}

	ctx, span := o.tracer.Start(ctx, "pipeline."+string(step))
	defer span.End()

	start := time.Now()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StepFailure{Step: step, Err: err}
	}

	o.log.Debug("step completed",
		"run_id", st.RunID,
		"step", step,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// knowledgeProgress spreads the research step over (15, 35].
func knowledgeProgress(done, total int) int {
	if total <= 0 {
		return progressKnowledgeDone
	}
	return progressTopics + (progressKnowledgeDone-progressTopics)*done/total
}
