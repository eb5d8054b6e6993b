package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/examgen/internal/exam"
)

// writeExam lays out the exam paper. With answers set it becomes the
// answer key: correct options are marked, model answers replace blank
// lines, and an answers section with explanations follows.
func writeExam(p *page, doc Document, answers bool) {
	md := doc.Metadata
	title := md.Title
	if title == "" {
		title = doc.Request.KnowledgeTopic + " Exam"
	}
	if answers {
		title += " - Answer Key"
	}
	p.title(title)

	info := []string{
		"Date: " + p.date,
		fmt.Sprintf("Questions: %d", len(doc.Questions)),
		fmt.Sprintf("Total points: %d", exam.TotalPoints(doc.Questions)),
	}
	if md.TimeLimit != "" {
		info = append(info, "Time: "+md.TimeLimit)
	}
	p.centered(strings.Join(info, " | "))
	p.centered(fmt.Sprintf("%s | %s | Difficulty: %s",
		exam.SubjectName(doc.Request.Subject),
		doc.Request.EducationLevel.Describe(),
		doc.Request.Difficulty,
	))

	if !answers && md.Instructions != "" {
		p.subheading("Instructions")
		p.para(md.Instructions)
		p.gap(2)
	}
	p.rule()

	for _, q := range doc.Questions {
		writeQuestion(p, q, answers)
	}

	if answers {
		p.newPage()
		p.heading("Answers and Explanations")
		for _, q := range doc.Questions {
			answer := q.CorrectAnswer
			if answer == "" {
				answer = "See marking guidelines."
			}
			p.labelled(fmt.Sprintf("%d", q.ID), answer)
			if q.Explanation != "" {
				p.pdf.SetX(marginMM + 6)
				p.italic("Explanation: " + q.Explanation)
			}
			p.gap(1.5)
		}
	}
}

func writeQuestion(p *page, q exam.Question, answers bool) {
	p.subheading(questionHeading(q))
	p.para(q.Text)

	switch q.Type {
	case exam.MultipleChoice:
		correct := correctOption(q)
		for i, o := range q.Options {
			line := fmt.Sprintf("%c. %s", 'A'+i, o)
			if answers && i == correct {
				p.indented(line+"  [correct]", true)
				continue
			}
			p.indented(line, false)
		}
	case exam.TrueFalse:
		line := "[ ] True      [ ] False"
		if answers {
			if isTrue(q.CorrectAnswer) {
				line = "[x] True      [ ] False"
			} else {
				line = "[ ] True      [x] False"
			}
		}
		p.indented(line, false)
	default:
		if answers {
			p.labelled("Answer", q.CorrectAnswer)
		} else {
			p.indented("Answer:", false)
			p.answerLines(q.Type.AnswerLines())
		}
	}
	p.gap(2)
}

// questionHeading is "Question N (P pts)". The render round-trip tests
// count these.
func questionHeading(q exam.Question) string {
	unit := "pts"
	if q.Points == 1 {
		unit = "pt"
	}
	return fmt.Sprintf("Question %d (%d %s) - %s", q.ID, q.Points, unit, q.Type.Label())
}

// answerLetter matches answers given as an option letter: "B", "b)", "(B)", "B. 1/3".
var answerLetter = regexp.MustCompile(`^\(?([A-Za-z])(?:[.):]|\s*$)`)

// correctOption finds the option q.CorrectAnswer refers to, either by
// letter ("B", "B.", "(B)") or by text. It returns -1 when none matches.
func correctOption(q exam.Question) int {
	ans := strings.TrimSpace(q.CorrectAnswer)
	if ans == "" {
		return -1
	}
	for i, o := range q.Options {
		if strings.EqualFold(ans, strings.TrimSpace(o)) {
			return i
		}
	}
	if m := answerLetter.FindStringSubmatch(ans); m != nil {
		if i := int(strings.ToUpper(m[1])[0] - 'A'); i < len(q.Options) {
			return i
		}
	}
	return -1
}

func isTrue(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return strings.HasPrefix(a, "true") || a == "t" || a == "yes" || a == "correct"
}
