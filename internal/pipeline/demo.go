package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
)

var (
	demoTopicLine = regexp.MustCompile(`(?m)^Topic: (.+)$`)
	demoCount     = regexp.MustCompile(`Write exactly (\d+) questions`)
	demoResearch  = regexp.MustCompile(`(?m)^Research topic: (.+)$`)
)

// DemoResponder answers every generation step with placeholder content so
// the service runs end to end with the mock provider and no API key.
func DemoResponder(req llm.Request) llm.MockResponse {
	msg := ""
	if len(req.Messages) > 0 {
		msg = req.Messages[len(req.Messages)-1].Content
	}
	topic := firstMatch(demoTopicLine, msg, "the topic")

	var v any
	switch {
	case req.Schema == nil:
		return llm.MockResponse{Err: &llm.ErrSchema{Err: fmt.Errorf("demo responder needs a schema")}}
	case req.Schema.Name == TopicsSchema.Name:
		v = map[string]any{"topics": []string{
			topic + ": core concepts",
			topic + ": worked examples",
			topic + ": common mistakes",
		}}
	case req.Schema.Name == KnowledgeSchema.Name:
		v = map[string]any{"content": "Key facts, definitions and examples about " + firstMatch(demoResearch, msg, topic) + "."}
	case IsQuestionsSchema(req.Schema):
		n, _ := strconv.Atoi(firstMatch(demoCount, msg, "5"))
		v = map[string]any{"questions": demoQuestions(topic, n, demoTypes(req.Schema))}
	case req.Schema.Name == MetadataSchema.Name:
		v = map[string]any{
			"title":        topic + " Practice Exam",
			"instructions": "Answer every question. Show your working where space is provided.",
			"time_limit":   "45 minutes",
		}
	case req.Schema.Name == NotesSchema.Name:
		v = exam.StudyNotes{
			TopicOverview:       "An overview of " + topic + ".",
			LearningObjectives:  []string{"Explain the core ideas of " + topic},
			KnowledgePoints:     []exam.KnowledgePoint{},
			StudyTips:           []exam.StudyTip{},
			ExtendedKnowledge:   []exam.ExtendedKnowledge{},
			Summary:             "Review the core concepts and practise the examples.",
			KnowledgeStructure:  "Concepts first, then applications.",
			PracticeSuggestions: []exam.PracticeStep{},
			FAQs:                []exam.FAQ{},
			SelfAssessment:      []string{"Can I explain " + topic + " to a classmate?"},
		}
	default:
		return llm.MockResponse{Err: &llm.ErrSchema{Err: fmt.Errorf("demo responder: unknown schema %q", req.Schema.Name)}}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return llm.MockResponse{Err: err}
	}
	return llm.MockResponse{Content: raw}
}

// demoTypes recovers the allowed question types from the schema name.
func demoTypes(s *llm.Schema) []exam.QuestionType {
	var types []exam.QuestionType
	for _, t := range strings.Split(strings.TrimPrefix(s.Name, questionsSchemaPrefix+"-"), "-") {
		if qt := exam.QuestionType(t); qt.Valid() {
			types = append(types, qt)
		}
	}
	if len(types) == 0 {
		types = []exam.QuestionType{exam.ShortAnswer}
	}
	return types
}

func demoQuestions(topic string, n int, types []exam.QuestionType) []map[string]any {
	qs := make([]map[string]any, n)
	for i := range qs {
		t := types[i%len(types)]
		q := map[string]any{
			"question_id":    i + 1,
			"question_type":  string(t),
			"question_text":  fmt.Sprintf("Demo %s question %d about %s.", t.Label(), i+1, topic),
			"options":        []string{},
			"correct_answer": "A model answer.",
			"points":         1 + i%3,
			"explanation":    "Placeholder explanation.",
		}
		switch t {
		case exam.MultipleChoice:
			q["options"] = []string{"First option", "Second option", "Third option", "Fourth option"}
			q["correct_answer"] = "A"
		case exam.TrueFalse:
			q["correct_answer"] = "True"
		}
		qs[i] = q
	}
	return qs
}

func firstMatch(re *regexp.Regexp, s, fallback string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}
