package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/examgen/internal/exam"
)

var importanceLabels = map[string]string{
	"core":      "Core",
	"important": "Important",
	"basic":     "Basic",
}

func writeNotes(p *page, doc Document) {
	p.title(doc.Request.KnowledgeTopic + " - Study Notes")
	p.centered(fmt.Sprintf("%s | %s | Date: %s",
		exam.SubjectName(doc.Request.Subject),
		doc.Request.EducationLevel.Describe(),
		p.date,
	))

	n := doc.Notes
	if n == nil {
		p.para("No study notes were generated for this exam.")
		return
	}

	if n.TopicOverview != "" {
		p.heading("Overview")
		p.para(n.TopicOverview)
	}

	if len(n.LearningObjectives) > 0 {
		p.heading("Learning Objectives")
		p.numbered(n.LearningObjectives)
	}

	if len(n.KnowledgePoints) > 0 {
		p.heading("Key Knowledge Points")
		for i, kp := range n.KnowledgePoints {
			head := fmt.Sprintf("%d. %s", i+1, kp.Title)
			if l, ok := importanceLabels[strings.ToLower(kp.Importance)]; ok {
				head += " [" + l + "]"
			}
			p.subheading(head)
			p.labelled("Definition", kp.Definition)
			p.para(kp.Content)
			if len(kp.KeyPoints) > 0 {
				p.indented("Key points", true)
				p.bullets(kp.KeyPoints)
			}
			if len(kp.Examples) > 0 {
				p.indented("Examples", true)
				p.bullets(kp.Examples)
			}
			if len(kp.CommonMistakes) > 0 {
				p.indented("Common mistakes", true)
				p.bullets(kp.CommonMistakes)
			}
			p.gap(1)
		}
	}

	if len(n.StudyTips) > 0 {
		p.heading("Study Tips")
		for _, tip := range n.StudyTips {
			head := tip.Title
			if tip.Category != "" {
				head = tip.Category + ": " + tip.Title
			}
			p.subheading(head)
			p.para(tip.Content)
			p.numbered(tip.Steps)
		}
	}

	if len(n.ExtendedKnowledge) > 0 {
		p.heading("Extended Knowledge")
		for _, ek := range n.ExtendedKnowledge {
			p.subheading(ek.Title)
			p.para(ek.Content)
			p.labelled("Connection", ek.Connection)
		}
	}

	if n.Summary != "" {
		p.heading("Summary")
		p.para(n.Summary)
	}

	if n.KnowledgeStructure != "" {
		p.heading("Knowledge Structure")
		p.para(n.KnowledgeStructure)
	}

	if len(n.PracticeSuggestions) > 0 {
		p.heading("Practice Plan")
		for _, ps := range n.PracticeSuggestions {
			head := ps.Title
			if ps.Level != "" {
				head = ps.Level + ": " + ps.Title
			}
			p.subheading(head)
			p.para(ps.Description)
			p.bullets(ps.Methods)
		}
	}

	if len(n.FAQs) > 0 {
		p.heading("Frequently Asked Questions")
		for _, f := range n.FAQs {
			p.labelled("Q", f.Question)
			p.labelled("A", f.Answer)
			p.gap(1)
		}
	}

	if len(n.SelfAssessment) > 0 {
		p.heading("Self-Assessment")
		p.bullets(n.SelfAssessment)
	}
}
