package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
)

// Topic count bounds for the research step.
const (
	MinTopics = 3
	MaxTopics = 8
)

// NumTopics is how many sub-topics are researched for questionCount
// questions: a third of the count, clamped to [MinTopics, MaxTopics].
func NumTopics(questionCount int) int {
	return min(max(MinTopics, questionCount/3), MaxTopics)
}

// Steps runs the individual content generation steps against an LLM.
// It holds no per-run state and is safe for concurrent use.
type Steps struct {
	provider llm.Provider
	config   Config
}

// NewSteps creates Steps with the given provider and config.
func NewSteps(provider llm.Provider, cfg Config) *Steps {
	return &Steps{provider: provider, config: cfg}
}

type topicsOutput struct {
	Topics []string `json:"topics"`
}

type knowledgeOutput struct {
	Content string `json:"content"`
}

type questionsOutput struct {
	Questions []exam.Question `json:"questions"`
}

type metadataOutput struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	TimeLimit    string `json:"time_limit"`
}

// complete sends one single-turn request tagged with the step's purpose
// and decodes the answer into T.
func complete[T any](ctx context.Context, s *Steps, step Step, schema *llm.Schema, sc StepConfig, userMsg string) (T, error) {
	ctx = llm.WithPurpose(ctx, string(step))

	req := llm.Request{
		System:      buildSystemPrompt(s.config),
		Messages:    llm.UserMessage(userMsg),
		Schema:      schema,
		MaxTokens:   sc.MaxTokens,
		Temperature: sc.Temperature,
	}

	out, err := llm.Complete[T](ctx, s.provider, req)
	if err != nil {
		return out, fmt.Errorf("LLM generation failed: %w", err)
	}
	return out, nil
}

// ResearchTopics asks for NumTopics sub-topics of the request topic.
// Blank entries are dropped and extras beyond the requested number are
// ignored. No usable topic is a schema failure.
func (s *Steps) ResearchTopics(ctx context.Context, req exam.GenerationRequest) ([]string, error) {
	n := NumTopics(req.QuestionCount)
	msg := buildTopicsMessage(req, n, s.config.now())

	out, err := complete[topicsOutput](ctx, s, StepResearchTopics, TopicsSchema, s.config.Topics, msg)
	if err != nil {
		return nil, err
	}

	topics := lo.FilterMap(out.Topics, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
	if len(topics) == 0 {
		return nil, &llm.ErrSchema{Err: errors.New("no research topics returned")}
	}
	if len(topics) > n {
		topics = topics[:n]
	}
	return topics, nil
}

// GatherKnowledge researches each topic with its own LLM call, one after
// another, preserving topic order. onTopic, when non-nil, is called after
// each topic completes with its 1-based index.
func (s *Steps) GatherKnowledge(ctx context.Context, req exam.GenerationRequest, topics []string, onTopic func(done, total int, topic string)) ([]exam.TopicKnowledge, error) {
	knowledge := make([]exam.TopicKnowledge, 0, len(topics))

	for i, topic := range topics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg := buildKnowledgeMessage(req, topic, s.config.now())
		out, err := complete[knowledgeOutput](ctx, s, StepResearchKnowledge, KnowledgeSchema, s.config.Knowledge, msg)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", topic, err)
		}

		content := strings.TrimSpace(out.Content)
		if content == "" {
			return nil, &llm.ErrSchema{Err: fmt.Errorf("empty research content for topic %q", topic)}
		}
		knowledge = append(knowledge, exam.TopicKnowledge{Topic: topic, Content: content})

		if onTopic != nil {
			onTopic(i+1, len(topics), topic)
		}
	}
	return knowledge, nil
}

// GenerateQuestions produces exactly req.QuestionCount questions from the
// researched material. Extra questions are dropped. Too few questions, or
// any question rejected by a validator, fails the step with *llm.ErrSchema.
func (s *Steps) GenerateQuestions(ctx context.Context, req exam.GenerationRequest, knowledge []exam.TopicKnowledge) ([]exam.Question, error) {
	msg := buildQuestionsMessage(req, knowledge, s.config.now())
	schema := QuestionsSchema(req.QuestionTypes)

	out, err := complete[questionsOutput](ctx, s, StepGenerateQuestions, schema, s.config.Questions, msg)
	if err != nil {
		return nil, err
	}

	schemaErr := func(err error) error {
		raw, _ := json.Marshal(out)
		return &llm.ErrSchema{Content: raw, Err: err}
	}

	switch {
	case len(out.Questions) == 0:
		return nil, schemaErr(errors.New("no questions returned"))
	case len(out.Questions) < req.QuestionCount:
		return nil, schemaErr(fmt.Errorf("expected %d questions, got %d", req.QuestionCount, len(out.Questions)))
	}

	questions := make([]exam.Question, req.QuestionCount)
	for i, raw := range out.Questions[:req.QuestionCount] {
		q := normalizeQuestion(raw, i+1)
		for _, v := range s.config.Validators {
			if verr := v.Validate(&q, req); verr != nil {
				return nil, schemaErr(verr)
			}
		}
		questions[i] = q
	}
	return questions, nil
}

// normalizeQuestion renumbers q and cleans up model formatting.
func normalizeQuestion(q exam.Question, id int) exam.Question {
	q.ID = id
	q.Type = exam.QuestionType(strings.TrimSpace(strings.ToLower(string(q.Type))))
	q.Text = strings.TrimSpace(q.Text)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.Points = max(q.Points, 1)

	if q.Type == exam.MultipleChoice {
		opts := lo.Map(q.Options, func(o string, _ int) string { return strings.TrimSpace(o) })
		q.Options = stripOptionLabels(opts)
	} else {
		q.Options = nil
	}
	return q
}

// CompileMetadata asks for a title, instructions and time limit. Total
// points are always the local sum of question points.
func (s *Steps) CompileMetadata(ctx context.Context, req exam.GenerationRequest, questions []exam.Question) (exam.Metadata, error) {
	msg := buildMetadataMessage(req, questions, s.config.now())

	out, err := complete[metadataOutput](ctx, s, StepCompileMetadata, MetadataSchema, s.config.Metadata, msg)
	if err != nil {
		return exam.Metadata{}, err
	}

	md := exam.Metadata{
		Title:        strings.TrimSpace(out.Title),
		Instructions: strings.TrimSpace(out.Instructions),
		TimeLimit:    strings.TrimSpace(out.TimeLimit),
		TotalPoints:  exam.TotalPoints(questions),
	}
	if md.Title == "" {
		md.Title = req.KnowledgeTopic + " Exam"
	}
	return md, nil
}

// GenerateNotes writes study notes from the researched material.
func (s *Steps) GenerateNotes(ctx context.Context, req exam.GenerationRequest, knowledge []exam.TopicKnowledge) (*exam.StudyNotes, error) {
	msg := buildNotesMessage(req, knowledge, s.config.now())

	notes, err := complete[exam.StudyNotes](ctx, s, StepGenerateNotes, NotesSchema, s.config.Notes, msg)
	if err != nil {
		return nil, err
	}
	return &notes, nil
}
