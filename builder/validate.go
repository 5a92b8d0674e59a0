package builder

import (
	"sort"
	"strings"

	"github.com/vnkhanh/survey-platform/api"
)

// ValidationReason names the rule a draft broke.
type ValidationReason int

const (
	MissingTitle ValidationReason = iota + 1
	NoQuestions
	BlankQuestion
	TooFewChoices
)

// ValidationError is returned before any network call when a draft cannot be
// submitted. Question is the index of the offending question, or -1.
type ValidationError struct {
	Reason   ValidationReason
	Question int
}

func (e ValidationError) Error() string {
	switch e.Reason {
	case MissingTitle:
		return "survey title is required"
	case NoQuestions:
		return "add at least one question"
	case BlankQuestion:
		return "every question needs text"
	case TooFewChoices:
		return "every question needs at least two answers"
	default:
		return "invalid survey draft"
	}
}

// Validate reports the first problem, checking the title, then every
// question text, then every choice list.
func Validate(title string, questions []Question) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Reason: MissingTitle, Question: -1}
	}
	if len(questions) == 0 {
		return ValidationError{Reason: NoQuestions, Question: -1}
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return ValidationError{Reason: BlankQuestion, Question: i}
		}
	}
	for i, q := range questions {
		if len(filledChoices(q.Choices)) < 2 {
			return ValidationError{Reason: TooFewChoices, Question: i}
		}
	}
	return nil
}

func (d *Draft) Validate() error {
	return Validate(d.Title, d.Questions)
}

// filledChoices returns the non-blank choices with trimmed text.
func filledChoices(choices []Choice) []Choice {
	out := make([]Choice, 0, len(choices))
	for _, c := range choices {
		if t := strings.TrimSpace(c.Text); t != "" {
			c.Text = t
			out = append(out, c)
		}
	}
	return out
}

// InferKind classifies a question by its choice texts: exactly the labels
// "1".."5" in any order make a rating question. Only used for questions
// stored without a kind.
func InferKind(texts []string) api.QuestionKind {
	if len(texts) != len(api.RatingLabels) {
		return api.KindChoice
	}
	got := append([]string(nil), texts...)
	sort.Strings(got)
	want := append([]string(nil), api.RatingLabels...)
	sort.Strings(want)
	for i := range got {
		if got[i] != want[i] {
			return api.KindChoice
		}
	}
	return api.KindRating
}

// KindOf returns the stored kind of q, inferring it for legacy data.
func KindOf(q api.Question) api.QuestionKind {
	if q.Kind.Valid() {
		return q.Kind
	}
	texts := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		texts = append(texts, c.ChoiceText)
	}
	return InferKind(texts)
}
