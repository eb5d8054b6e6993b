package pipeline

import (
	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/render"
)

// State accumulates the output of one run. It is owned by the goroutine
// executing that run and never shared.
type State struct {
	RunID     string
	Request   exam.GenerationRequest
	Topics    []string
	Knowledge []exam.TopicKnowledge
	Questions []exam.Question
	Metadata  exam.Metadata
	Notes     *exam.StudyNotes
	Files     render.Paths
}

func newState(runID string, req exam.GenerationRequest) *State {
	return &State{RunID: runID, Request: req}
}

// document is the renderer input for the current state.
func (s *State) document() render.Document {
	return render.Document{
		ID:        s.RunID,
		Request:   s.Request,
		Metadata:  s.Metadata,
		Questions: s.Questions,
		Notes:     s.Notes,
	}
}

// Result assembles the completed run's payload.
func (s *State) Result() *exam.GenerationResult {
	return &exam.GenerationResult{
		Title:         s.Metadata.Title,
		Instructions:  s.Metadata.Instructions,
		TotalPoints:   s.Metadata.TotalPoints,
		TimeLimit:     s.Metadata.TimeLimit,
		Questions:     s.Questions,
		StudyNotes:    s.Notes,
		ExamFile:      s.Files.ExamFile,
		AnswerKeyFile: s.Files.AnswerKeyFile,
		NotesFile:     s.Files.NotesFile,
		ExamPath:      s.Files.ExamPath,
		AnswerKeyPath: s.Files.AnswerKeyPath,
		NotesPath:     s.Files.NotesPath,
	}
}
