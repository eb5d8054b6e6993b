package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/exam"
)

func newGenerateFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "generate"}
	f := c.Flags()
	f.StringP("topic", "t", "", "")
	f.String("level", "", "")
	f.StringP("subject", "s", "", "")
	f.StringP("difficulty", "d", "", "")
	f.IntP("count", "n", 10, "")
	f.StringSlice("types", nil, "")
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestRequestFromFlagsDefaults(t *testing.T) {
	req, err := requestFromFlags(newGenerateFlags(t, "--topic", "Fractions"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.KnowledgeTopic != "Fractions" || req.QuestionCount != 10 || req.Subject != "math" {
		t.Errorf("unexpected request: %+v", req)
	}
	if len(req.QuestionTypes) != 2 {
		t.Errorf("expected default question types, got %v", req.QuestionTypes)
	}
}

func TestRequestFromFlagsOverrides(t *testing.T) {
	req, err := requestFromFlags(newGenerateFlags(t,
		"--topic", " Volcanoes ", "--level", "HIGH", "-s", "geography", "-d", "hard",
		"-n", "6", "--types", "essay,true_false,essay"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.KnowledgeTopic != "Volcanoes" {
		t.Errorf("topic = %q", req.KnowledgeTopic)
	}
	if req.EducationLevel != exam.High || req.Difficulty != exam.Hard || req.QuestionCount != 6 {
		t.Errorf("unexpected request: %+v", req)
	}
	want := []exam.QuestionType{exam.Essay, exam.TrueFalse}
	if len(req.QuestionTypes) != len(want) || req.QuestionTypes[0] != want[0] || req.QuestionTypes[1] != want[1] {
		t.Errorf("types = %v, want %v", req.QuestionTypes, want)
	}
}

func TestRequestFromFlagsRejectsUnknownType(t *testing.T) {
	_, err := requestFromFlags(newGenerateFlags(t, "--topic", "Fractions", "--types", "crossword"))
	if err == nil {
		t.Fatal("expected an error for an unknown question type")
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		3 * 1024 * 1024: "3.0 MB",
	}
	for n, want := range tests {
		if got := formatSize(n); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", n, got, want)
		}
	}
}
