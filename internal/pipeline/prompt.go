package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/examgen/internal/exam"
)

const systemPrompt = `You are an experienced teacher and assessment designer preparing exam material for school students.

Rules:
- Match the cognitive level, vocabulary and curriculum of the given education level.
- Stay within the given subject and topic. Be factually accurate.
- Use plain text. No Markdown, no LaTeX. Write math with ordinary symbols such as +, -, *, /, ^ and sqrt().
- Examples should come from everyday life the students can relate to.
- Answer only with JSON matching the requested schema.`

const knowledgeSeparator = "\n\n---\n\n"

// languageRule is appended to the system prompt of every step.
func languageRule(lang string) string {
	return fmt.Sprintf("- Write every piece of text in %s.", lang)
}

func buildSystemPrompt(cfg Config) string {
	return systemPrompt + "\n" + languageRule(cfg.Language)
}

// writeContext writes the request header shared by all steps.
func writeContext(b *strings.Builder, req exam.GenerationRequest, now time.Time) {
	fmt.Fprintf(b, "Current date: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(b, "Education level: %s (%s)\n", req.EducationLevel, req.EducationLevel.Describe())
	fmt.Fprintf(b, "Subject: %s (%s)\n", req.Subject, exam.SubjectName(req.Subject))
	fmt.Fprintf(b, "Topic: %s\n", req.KnowledgeTopic)
	fmt.Fprintf(b, "Difficulty: %s\n", req.Difficulty)
}

func typeList(types []exam.QuestionType) string {
	return strings.Join(lo.Map(types, func(t exam.QuestionType, _ int) string {
		return fmt.Sprintf("%s (%s)", t, t.Label())
	}), ", ")
}

func buildTopicsMessage(req exam.GenerationRequest, n int, now time.Time) string {
	var b strings.Builder

	writeContext(&b, req, now)
	fmt.Fprintf(&b, "Question count: %d\n", req.QuestionCount)

	fmt.Fprintf(&b, "\nList %d specific research topics that together cover %q well enough to write varied, high quality exam questions.\n", n, req.KnowledgeTopic)
	b.WriteString("Consider core concepts, real-world applications, common difficulties and mistakes, and links to related knowledge.\n")
	b.WriteString("Each topic should support several question types.")

	return b.String()
}

func buildKnowledgeMessage(req exam.GenerationRequest, topic string, now time.Time) string {
	var b strings.Builder

	writeContext(&b, req, now)
	fmt.Fprintf(&b, "Research topic: %s\n", topic)

	b.WriteString("\nWrite detailed, accurate teaching material on the research topic. Include:\n")
	b.WriteString("1. Key concepts and definitions\n")
	b.WriteString("2. Important facts and data\n")
	b.WriteString("3. Practical applications and examples\n")
	b.WriteString("4. Common misconceptions and difficulties\n")
	b.WriteString("5. Connections to other knowledge points\n")
	fmt.Fprintf(&b, "\nThe material will be used to write %s exam questions about %q.", req.Difficulty, req.KnowledgeTopic)

	return b.String()
}

func buildQuestionsMessage(req exam.GenerationRequest, knowledge []exam.TopicKnowledge, now time.Time) string {
	var b strings.Builder

	writeContext(&b, req, now)
	fmt.Fprintf(&b, "Question types: %s\n", typeList(req.QuestionTypes))
	fmt.Fprintf(&b, "Question count: %d\n", req.QuestionCount)

	b.WriteString("\nResearch material:\n")
	b.WriteString(joinKnowledge(knowledge))

	fmt.Fprintf(&b, "\n\nWrite exactly %d questions based on the research material.\n", req.QuestionCount)
	b.WriteString("Guidelines:\n")
	b.WriteString("- Use only the listed question types and mix them.\n")
	b.WriteString("- Test different levels of knowledge: recall, understanding, application and analysis.\n")
	b.WriteString("- multiple_choice: exactly 4 options without letter prefixes and one correct answer. Distractors should reflect common mistakes.\n")
	b.WriteString("- true_false: a statement that is clearly true or false. The answer is \"True\" or \"False\".\n")
	b.WriteString("- fill_blank: mark each blank with ____.\n")
	b.WriteString("- Other types: options must be an empty list. The correct answer is a model answer.\n")
	b.WriteString("- Assign 1 to 5 points per question based on complexity.\n")
	b.WriteString("- Number questions from 1.")

	return b.String()
}

func buildMetadataMessage(req exam.GenerationRequest, questions []exam.Question, now time.Time) string {
	var b strings.Builder

	writeContext(&b, req, now)
	fmt.Fprintf(&b, "Question count: %d\n", len(questions))
	fmt.Fprintf(&b, "Question types: %s\n", typeList(req.QuestionTypes))
	fmt.Fprintf(&b, "Total points: %d\n", exam.TotalPoints(questions))

	b.WriteString("\nWrite a fitting exam title, clear instructions and a suggested time limit.\n")
	b.WriteString("The instructions should explain how to answer each question type, how points are awarded, time management and what materials are allowed.")

	return b.String()
}

func buildNotesMessage(req exam.GenerationRequest, knowledge []exam.TopicKnowledge, now time.Time) string {
	var b strings.Builder

	writeContext(&b, req, now)

	b.WriteString("\nResearch material:\n")
	b.WriteString(joinKnowledge(knowledge))

	b.WriteString("\n\nWrite study notes that help a student prepare for this exam.\n")
	b.WriteString("Cover an overview, learning objectives, the core knowledge points with examples and common mistakes, ")
	b.WriteString("study tips, extended knowledge, a summary, how the knowledge fits together, a practice plan from basic to advanced, ")
	b.WriteString("frequently asked questions and self-assessment items.")

	return b.String()
}

// joinKnowledge concatenates researched material in topic order.
func joinKnowledge(knowledge []exam.TopicKnowledge) string {
	if len(knowledge) == 0 {
		return "None"
	}
	parts := lo.Map(knowledge, func(k exam.TopicKnowledge, _ int) string {
		return fmt.Sprintf("## %s\n%s", k.Topic, k.Content)
	})
	return strings.Join(parts, knowledgeSeparator)
}
