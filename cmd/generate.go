package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/pipeline"
	"github.com/abhisek/examgen/internal/ui/components"
	"github.com/abhisek/examgen/internal/ui/theme"
)

const progressWidth = 60

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one exam and print its progress",
	Example: `  examgen generate --topic "Fractions" --count 8 --types multiple_choice,true_false
  EXAMGEN_LLM_PROVIDER=mock examgen generate --topic "Volcanoes" --subject geography`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Log.Level == "" || cfg.Log.Level == "info" {
			// Progress goes to stdout; keep the log quiet unless asked.
			cfg.Log.Level = "warn"
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := buildRuntime(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Println(theme.Title.Render("examgen") + "  " + theme.Hint.Render(req.KnowledgeTopic))
		res, err := rt.orchestrator.Generate(ctx, req, printEvent)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func requestFromFlags(cmd *cobra.Command) (exam.GenerationRequest, error) {
	req := exam.DefaultRequest()
	f := cmd.Flags()

	req.KnowledgeTopic, _ = f.GetString("topic")
	if v, _ := f.GetString("level"); v != "" {
		req.EducationLevel = exam.EducationLevel(v)
	}
	if v, _ := f.GetString("subject"); v != "" {
		req.Subject = v
	}
	if v, _ := f.GetString("difficulty"); v != "" {
		req.Difficulty = exam.Difficulty(v)
	}
	if f.Changed("count") {
		req.QuestionCount, _ = f.GetInt("count")
	}
	if f.Changed("types") {
		types, _ := f.GetStringSlice("types")
		req.QuestionTypes = make([]exam.QuestionType, 0, len(types))
		for _, t := range types {
			req.QuestionTypes = append(req.QuestionTypes, exam.QuestionType(t))
		}
	}

	norm, err := req.Normalize()
	if err != nil {
		return exam.GenerationRequest{}, err
	}
	return norm, nil
}

func printEvent(ev pipeline.ProgressEvent) {
	switch ev.Step {
	case pipeline.StepError:
		fmt.Println(theme.Failed.Render("✗ "+ev.Message) + "  " + theme.Hint.Render(ev.Error))
	case pipeline.StepCompleted:
		fmt.Println(components.NewProgressBar(string(ev.Step), 1, true, progressWidth).View())
	default:
		bar := components.NewProgressBar(string(ev.Step), float64(ev.Progress)/100, true, progressWidth)
		fmt.Println(bar.View() + "  " + theme.Hint.Render(ev.Message))
	}
}

func printResult(res *exam.GenerationResult) {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(theme.Label.Render(label) + theme.Body.Render(value) + "\n")
	}
	row("Title", res.Title)
	row("Questions", fmt.Sprintf("%d (%d points)", len(res.Questions), res.TotalPoints))
	if res.TimeLimit != "" {
		row("Time limit", res.TimeLimit)
	}
	row("Exam", res.ExamPath)
	row("Answer key", res.AnswerKeyPath)
	row("Study notes", res.NotesPath)

	fmt.Println()
	fmt.Println(theme.Done.Render("✓ Exam generated"))
	fmt.Println(theme.Card.Render(strings.TrimSuffix(b.String(), "\n")))
}

func init() {
	f := generateCmd.Flags()
	f.StringP("topic", "t", "", "Knowledge topic to examine (required)")
	f.String("level", "", "Education level: primary, middle or high")
	f.StringP("subject", "s", "", "Subject id, e.g. math, physics, history")
	f.StringP("difficulty", "d", "", "Difficulty: easy, medium or hard")
	f.IntP("count", "n", 10, "Number of questions")
	f.StringSlice("types", nil, "Question types, e.g. multiple_choice,short_answer")
	_ = generateCmd.MarkFlagRequired("topic")
}
