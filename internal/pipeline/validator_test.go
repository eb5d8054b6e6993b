package pipeline

import (
	"reflect"
	"testing"

	"github.com/abhisek/examgen/internal/exam"
)

func TestStripOptionLabels(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"dotted", []string{"A. 1/2", "B. 1/3"}, []string{"1/2", "1/3"}},
		{"parens", []string{"(A) red", "(B) blue", "(C) green"}, []string{"red", "blue", "green"}},
		{"lowercase", []string{"a) red", "b) blue"}, []string{"red", "blue"}},
		{"unlabelled", []string{"red", "blue"}, []string{"red", "blue"}},
		{"out of order", []string{"B. red", "A. blue"}, []string{"B. red", "A. blue"}},
		{"partial", []string{"A. red", "blue"}, []string{"A. red", "blue"}},
		{"word starting with letter", []string{"A cat", "B bat"}, []string{"A cat", "B bat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripOptionLabels(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("stripOptionLabels(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}
	req := testRequest()

	ok := &exam.Question{ID: 1, Type: exam.ShortAnswer, Text: "Why?"}
	if err := v.Validate(ok, req); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	essay := &exam.Question{ID: 2, Type: exam.Essay, Text: "Discuss."}
	err := v.Validate(essay, req)
	if err == nil {
		t.Fatal("expected error for unrequested type")
	}
	if err.Validator != "structural" || err.QuestionID != 2 {
		t.Errorf("unexpected error %+v", err)
	}
}

func TestChoicesValidatorIgnoresOtherTypes(t *testing.T) {
	v := &ChoicesValidator{}
	q := &exam.Question{ID: 1, Type: exam.TrueFalse, Text: "The sky is green."}
	if err := v.Validate(q, testRequest()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
