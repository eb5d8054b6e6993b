package exam

import "github.com/samber/lo"

// Question is a single generated exam question.
type Question struct {
	ID            int          `json:"question_id"`
	Type          QuestionType `json:"question_type"`
	Text          string       `json:"question_text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
	Explanation   string       `json:"explanation,omitempty"`
}

// TotalPoints sums the point values of qs.
func TotalPoints(qs []Question) int {
	return lo.SumBy(qs, func(q Question) int { return q.Points })
}

// TopicKnowledge is the researched content for one sub-topic.
type TopicKnowledge struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// Metadata is the exam-level front matter.
type Metadata struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	TotalPoints  int    `json:"total_points"`
	TimeLimit    string `json:"time_limit,omitempty"`
}

// StudyNotes is the structured study guide produced alongside an exam.
// Every field is required in the model's answer; empty lists are allowed.
type StudyNotes struct {
	TopicOverview       string              `json:"topic_overview" jsonschema:"description=A detailed overview of the topic"`
	LearningObjectives  []string            `json:"learning_objectives" jsonschema:"description=What a student should be able to do afterwards"`
	KnowledgePoints     []KnowledgePoint    `json:"knowledge_points" jsonschema:"description=Core knowledge points"`
	StudyTips           []StudyTip          `json:"study_tips" jsonschema:"description=Study techniques"`
	ExtendedKnowledge   []ExtendedKnowledge `json:"extended_knowledge" jsonschema:"description=Material that goes beyond the syllabus"`
	Summary             string              `json:"summary" jsonschema:"description=A systematic summary"`
	KnowledgeStructure  string              `json:"knowledge_structure" jsonschema:"description=How the knowledge points relate to each other"`
	PracticeSuggestions []PracticeStep      `json:"practice_recommendations" jsonschema:"description=Practice plan from basic to advanced"`
	FAQs                []FAQ               `json:"faqs" jsonschema:"description=Frequently asked questions"`
	SelfAssessment      []string            `json:"self_assessment" jsonschema:"description=Ways for a student to check their understanding"`
}

type KnowledgePoint struct {
	Title          string   `json:"title"`
	Definition     string   `json:"definition" jsonschema:"description=Core definition"`
	Content        string   `json:"content" jsonschema:"description=Detailed explanation"`
	Importance     string   `json:"importance" jsonschema:"enum=basic,enum=important,enum=core"`
	Examples       []string `json:"examples"`
	KeyPoints      []string `json:"key_points"`
	CommonMistakes []string `json:"common_mistakes"`
}

type StudyTip struct {
	Category string   `json:"category" jsonschema:"description=One of memorization or understanding or application or problem solving"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Steps    []string `json:"steps"`
}

type ExtendedKnowledge struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Connection string `json:"connection" jsonschema:"description=How this relates to the main topic"`
}

type PracticeStep struct {
	Level       string   `json:"level" jsonschema:"description=One of basic or improving or comprehensive or creative"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Methods     []string `json:"methods"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerationResult is the payload of a completed run.
type GenerationResult struct {
	Title         string      `json:"exam_title"`
	Instructions  string      `json:"exam_instructions"`
	TotalPoints   int         `json:"total_points"`
	TimeLimit     string      `json:"time_limit,omitempty"`
	Questions     []Question  `json:"questions"`
	StudyNotes    *StudyNotes `json:"study_notes,omitempty"`
	ExamFile      string      `json:"exam_file"`
	AnswerKeyFile string      `json:"answer_key_file"`
	NotesFile     string      `json:"notes_file"`
	ExamPath      string      `json:"pdf_path"`
	AnswerKeyPath string      `json:"answer_key_path"`
	NotesPath     string      `json:"notes_path"`
}
