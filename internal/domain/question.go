package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Levels is the number of questions in a game, one per level.
const Levels = 15

// MaxLevel is the highest question level.
const MaxLevel = Levels - 1

// ValidationError lists the fields of a record that failed validation.
type ValidationError struct {
	Record string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, field+" "+e.Fields[field])
	}
	return "invalid " + e.Record + ": " + strings.Join(parts, ", ")
}

// QuestionInput is an unvalidated question as it arrives from a form or a file.
// Level is a pointer so that a missing level can be told apart from level 0.
type QuestionInput struct {
	Level   *int     `yaml:"level" json:"level"`
	Text    string   `yaml:"text" json:"text"`
	Answers []string `yaml:"answers" json:"answers"`
}

// Build validates the input and returns the question it describes.
func (in QuestionInput) Build() (Question, error) {
	fields := map[string]string{}
	if in.Level == nil {
		fields["level"] = "can't be blank"
	} else if *in.Level < 0 || *in.Level > MaxLevel {
		fields["level"] = fmt.Sprintf("is not included in the list (0..%d)", MaxLevel)
	}
	if strings.TrimSpace(in.Text) == "" {
		fields["text"] = "can't be blank"
	}
	answers := make([]string, 4)
	copy(answers, in.Answers)
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			fields[fmt.Sprintf("answer%d", i+1)] = "can't be blank"
		}
	}
	if len(fields) > 0 {
		return Question{}, &ValidationError{Record: "question", Fields: fields}
	}
	return Question{
		Level:   *in.Level,
		Text:    strings.TrimSpace(in.Text),
		Answer1: strings.TrimSpace(answers[0]),
		Answer2: strings.TrimSpace(answers[1]),
		Answer3: strings.TrimSpace(answers[2]),
		Answer4: strings.TrimSpace(answers[3]),
	}, nil
}

// Validate checks an already built question, e.g. one loaded from storage.
func (q Question) Validate() error {
	level := q.Level
	answers := q.Answers()
	_, err := QuestionInput{Level: &level, Text: q.Text, Answers: answers[:]}.Build()
	return err
}
