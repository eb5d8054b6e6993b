package exam

// QuestionType is the kind of an exam question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
	Calculation    QuestionType = "calculation"
	Analysis       QuestionType = "analysis"
	Application    QuestionType = "application"
)

// AllQuestionTypes lists every supported question type in display order.
var AllQuestionTypes = []QuestionType{
	MultipleChoice, ShortAnswer, Essay, TrueFalse,
	FillBlank, Calculation, Analysis, Application,
}

var questionTypeLabels = map[QuestionType]string{
	MultipleChoice: "Multiple choice",
	ShortAnswer:    "Short answer",
	Essay:          "Essay",
	TrueFalse:      "True/False",
	FillBlank:      "Fill in the blank",
	Calculation:    "Calculation",
	Analysis:       "Analysis",
	Application:    "Application",
}

// Valid reports whether t is a supported question type.
func (t QuestionType) Valid() bool {
	_, ok := questionTypeLabels[t]
	return ok
}

// Label is the human readable name of t.
func (t QuestionType) Label() string {
	if l, ok := questionTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// AnswerLines is how many blank lines an exam paper leaves for t.
func (t QuestionType) AnswerLines() int {
	switch t {
	case MultipleChoice, TrueFalse:
		return 0
	case FillBlank:
		return 1
	case ShortAnswer:
		return 3
	case Calculation, Application:
		return 5
	case Analysis:
		return 6
	case Essay:
		return 8
	default:
		return 3
	}
}

var educationLevelDescriptions = map[EducationLevel]string{
	Primary: "primary school (grades 1-6)",
	Middle:  "middle school (grades 7-9)",
	High:    "high school (grades 10-12)",
}

// Describe returns a prompt-friendly description of the level.
func (l EducationLevel) Describe() string {
	if d, ok := educationLevelDescriptions[l]; ok {
		return d
	}
	return string(l)
}

var subjectNames = map[string]string{
	"chinese":    "Chinese language",
	"math":       "Mathematics",
	"english":    "English",
	"physics":    "Physics",
	"chemistry":  "Chemistry",
	"biology":    "Biology",
	"history":    "History",
	"geography":  "Geography",
	"politics":   "Politics and civics",
	"science":    "Science",
	"moral":      "Morality and law",
	"art":        "Art",
	"music":      "Music",
	"pe":         "Physical education",
	"technology": "Information technology",
}

// SubjectName describes a subject id. Unknown ids are returned unchanged.
func SubjectName(id string) string {
	if n, ok := subjectNames[id]; ok {
		return n
	}
	return id
}
