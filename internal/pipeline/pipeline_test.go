package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/render"
)

func testRequest() exam.GenerationRequest {
	return exam.GenerationRequest{
		EducationLevel: exam.Middle,
		Subject:        "math",
		KnowledgeTopic: "Fractions",
		Difficulty:     exam.Medium,
		QuestionCount:  10,
		QuestionTypes:  []exam.QuestionType{exam.MultipleChoice, exam.ShortAnswer},
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// topicFrom extracts the request topic from a user message.
func topicFrom(req llm.Request) string {
	for _, line := range strings.Split(req.Messages[0].Content, "\n") {
		if t, ok := strings.CutPrefix(line, "Topic: "); ok {
			return t
		}
	}
	return ""
}

// questionsJSON builds n schema-conforming questions cycling through types.
func questionsJSON(n int, types []exam.QuestionType) json.RawMessage {
	qs := make([]map[string]any, n)
	for i := range qs {
		t := types[i%len(types)]
		q := map[string]any{
			"question_id":    100 + i,
			"question_type":  string(t),
			"question_text":  fmt.Sprintf("Question %d?", i+1),
			"options":        []string{},
			"correct_answer": "answer",
			"points":         2,
			"explanation":    "because",
		}
		if t == exam.MultipleChoice {
			q["options"] = []string{"A. one half", "B. one third", "C. two thirds", "D. three quarters"}
			q["correct_answer"] = "A"
		}
		qs[i] = q
	}
	return mustJSON(map[string]any{"questions": qs})
}

func sampleNotes() exam.StudyNotes {
	return exam.StudyNotes{
		TopicOverview:      "Fractions describe parts of a whole.",
		LearningObjectives: []string{"Compare fractions"},
		KnowledgePoints: []exam.KnowledgePoint{{
			Title:          "Equivalent fractions",
			Definition:     "Fractions with equal value",
			Content:        "Multiply numerator and denominator by the same number.",
			Importance:     "core",
			Examples:       []string{"1/2 = 2/4"},
			KeyPoints:      []string{"Same value"},
			CommonMistakes: []string{"Adding denominators"},
		}},
		StudyTips:           []exam.StudyTip{},
		ExtendedKnowledge:   []exam.ExtendedKnowledge{},
		Summary:             "Fractions are numbers.",
		KnowledgeStructure:  "Fractions build on division.",
		PracticeSuggestions: []exam.PracticeStep{},
		FAQs:                []exam.FAQ{{Question: "Is 0/5 a fraction?", Answer: "Yes"}},
		SelfAssessment:      []string{"Can I simplify 4/8?"},
	}
}

// scripted answers every step with well-formed content. Overrides replace
// the answer for a schema name prefix.
type scripted struct {
	questionCount int
	overrides     map[string]func(llm.Request) llm.MockResponse
}

func (s scripted) respond(req llm.Request) llm.MockResponse {
	for prefix, fn := range s.overrides {
		if strings.HasPrefix(req.Schema.Name, prefix) {
			return fn(req)
		}
	}

	switch {
	case req.Schema.Name == TopicsSchema.Name:
		return llm.MockResponse{Content: mustJSON(map[string]any{
			"topics": []string{"Equivalent fractions", "  ", "Comparing fractions", "Adding fractions"},
		})}
	case req.Schema.Name == KnowledgeSchema.Name:
		return llm.MockResponse{Content: mustJSON(map[string]any{"content": "Material for " + topicFrom(req)})}
	case IsQuestionsSchema(req.Schema):
		return llm.MockResponse{Content: questionsJSON(s.questionCount, testRequest().QuestionTypes)}
	case req.Schema.Name == MetadataSchema.Name:
		return llm.MockResponse{Content: mustJSON(map[string]any{
			"title":        topicFrom(req) + " Test",
			"instructions": "Answer every question.",
			"time_limit":   "45 minutes",
		})}
	case req.Schema.Name == NotesSchema.Name:
		return llm.MockResponse{Content: mustJSON(sampleNotes())}
	}
	return llm.MockResponse{Err: fmt.Errorf("unexpected schema %q", req.Schema.Name)}
}

func newScriptedProvider(s scripted) *llm.MockProvider {
	p := llm.NewMockProvider()
	p.Respond = s.respond
	return p
}

// fakeRenderer records documents and returns names derived from them.
type fakeRenderer struct {
	mu   sync.Mutex
	docs []render.Document
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, doc render.Document) (render.Paths, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return render.Paths{}, f.err
	}
	base := strings.ReplaceAll(doc.Request.KnowledgeTopic, " ", "_") + "_" + doc.ID[:8]
	return render.Paths{
		ExamFile:      base + "_exam.pdf",
		AnswerKeyFile: base + "_answer_key.pdf",
		NotesFile:     base + "_notes.pdf",
		ExamPath:      "/out/" + base + "_exam.pdf",
		AnswerKeyPath: "/out/" + base + "_answer_key.pdf",
		NotesPath:     "/out/" + base + "_notes.pdf",
	}, nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// purposeRecorder records the purpose label of every call.
type purposeRecorder struct {
	llm.Provider
	mu       sync.Mutex
	purposes []string
	runIDs   []string
}

func (p *purposeRecorder) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.purposes = append(p.purposes, llm.PurposeFrom(ctx))
	p.runIDs = append(p.runIDs, llm.RunIDFrom(ctx))
	p.mu.Unlock()
	return p.Provider.Generate(ctx, req)
}

// blockingProvider waits for cancellation on every call.
type blockingProvider struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingProvider) ModelID() string { return "blocking" }

func drain(ch <-chan ProgressEvent) []ProgressEvent {
	var events []ProgressEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

var errBoom = errors.New("boom")
