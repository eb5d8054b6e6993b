package pipeline

import (
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/llm"
)

// TopicsSchema is the response shape of the topic research step.
var TopicsSchema = &llm.Schema{
	Name:        "research-topics",
	Description: "Sub-topics to research before writing an exam",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"description": "Specific research topics, most important first",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

// KnowledgeSchema is the response shape of a single topic's research.
var KnowledgeSchema = &llm.Schema{
	Name:        "topic-knowledge",
	Description: "Researched teaching material for one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Concepts, facts, examples and common misconceptions for the topic",
			},
		},
		"required":             []any{"content"},
		"additionalProperties": false,
	},
}

// MetadataSchema is the response shape of the metadata step. Total points
// are computed locally and never asked for.
var MetadataSchema = &llm.Schema{
	Name:        "exam-metadata",
	Description: "Exam title, instructions and suggested time limit",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Exam title",
			},
			"instructions": map[string]any{
				"type":        "string",
				"description": "Instructions printed on the exam paper",
			},
			"time_limit": map[string]any{
				"type":        "string",
				"description": "Suggested time limit, e.g. \"60 minutes\"",
			},
		},
		"required":             []any{"title", "instructions", "time_limit"},
		"additionalProperties": false,
	},
}

// NotesSchema is reflected from exam.StudyNotes.
var NotesSchema = llm.SchemaFor[exam.StudyNotes]("study-notes", "Structured study notes for the exam topic")

// questionsSchemaPrefix starts the name of every per-request question schema.
const questionsSchemaPrefix = "exam-questions"

// QuestionsSchema builds the question batch schema for a set of allowed
// types. The name encodes the types so compiled validators are cached per
// distinct set.
func QuestionsSchema(types []exam.QuestionType) *llm.Schema {
	enum := lo.Map(types, func(t exam.QuestionType, _ int) any { return string(t) })
	names := lo.Map(types, func(t exam.QuestionType, _ int) string { return string(t) })

	return &llm.Schema{
		Name:        questionsSchemaPrefix + "-" + strings.Join(names, "-"),
		Description: "A batch of exam questions with answers",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question_id": map[string]any{
								"type": "integer",
							},
							"question_type": map[string]any{
								"type": "string",
								"enum": enum,
							},
							"question_text": map[string]any{
								"type":        "string",
								"description": "The question as printed on the paper",
							},
							"options": map[string]any{
								"type":        "array",
								"description": "Answer options for multiple choice questions, empty otherwise",
								"items":       map[string]any{"type": "string"},
							},
							"correct_answer": map[string]any{
								"type": "string",
							},
							"points": map[string]any{
								"type":        "integer",
								"description": "Point value from 1 to 5 based on complexity",
							},
							"explanation": map[string]any{
								"type":        "string",
								"description": "Brief explanation of the correct answer",
							},
						},
						"required": []any{
							"question_id", "question_type", "question_text", "options",
							"correct_answer", "points", "explanation",
						},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"questions"},
			"additionalProperties": false,
		},
	}
}

// IsQuestionsSchema reports whether s was built by QuestionsSchema.
func IsQuestionsSchema(s *llm.Schema) bool {
	return s != nil && strings.HasPrefix(s.Name, questionsSchemaPrefix)
}
