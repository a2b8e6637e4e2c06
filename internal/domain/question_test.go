package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestQuestionInputValidations(t *testing.T) {
	valid := QuestionInput{Level: intPtr(0), Text: "some", Answers: []string{"1", "1", "1", "1"}}
	if _, err := valid.Build(); err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}

	cases := []struct {
		name  string
		in    QuestionInput
		field string
	}{
		{"level presence", QuestionInput{Text: "some", Answers: []string{"1", "2", "3", "4"}}, "level"},
		{"text presence", QuestionInput{Level: intPtr(3), Text: "  ", Answers: []string{"1", "2", "3", "4"}}, "text"},
		{"level above range", QuestionInput{Level: intPtr(15), Text: "some", Answers: []string{"1", "2", "3", "4"}}, "level"},
		{"level below range", QuestionInput{Level: intPtr(-1), Text: "some", Answers: []string{"1", "2", "3", "4"}}, "level"},
		{"missing answer", QuestionInput{Level: intPtr(1), Text: "some", Answers: []string{"1", "2", "3"}}, "answer4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Build()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected %s to be invalid, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestQuestionAllowsTopLevel(t *testing.T) {
	q, err := QuestionInput{Level: intPtr(14), Text: "top", Answers: []string{"a", "b", "c", "d"}}.Build()
	if err != nil {
		t.Fatalf("expected level 14 allowed, got %v", err)
	}
	if q.Level != 14 || q.Answer1 != "a" {
		t.Fatalf("unexpected question %+v", q)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
