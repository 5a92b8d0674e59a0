// Package builder keeps an in-memory survey draft and submits it to the API
// as an ordered sequence of create calls.
package builder

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vnkhanh/survey-platform/api"
)

var (
	ErrUnknownDraft   = errors.New("unknown draft id")
	ErrLastQuestion   = errors.New("a survey keeps at least one question")
	ErrTooFewChoices  = errors.New("a question keeps at least two choices")
	ErrRatingReadOnly = errors.New("rating choices are fixed")
)

// Choice is a choice draft. ServerID is zero until it is persisted.
type Choice struct {
	DraftID  string
	ServerID uint
	Text     string
}

// Question is a question draft with its ordered choices.
type Question struct {
	DraftID  string
	ServerID uint
	Text     string
	Kind     api.QuestionKind
	Choices  []Choice
}

type Draft struct {
	Title       string
	Description string
	IsActive    bool
	Theme       [3]string
	Questions   []Question
}

// NewID returns a fresh draft id.
func NewID() string {
	return uuid.NewString()
}

func NewChoice(text string) Choice {
	return Choice{DraftID: NewID(), Text: text}
}

// NewQuestion returns an empty choice question with two empty choices.
func NewQuestion() Question {
	return Question{
		DraftID: NewID(),
		Kind:    api.KindChoice,
		Choices: []Choice{NewChoice(""), NewChoice("")},
	}
}

// NewRatingQuestion returns a question with the fixed choices "1".."5".
func NewRatingQuestion(text string) Question {
	q := Question{DraftID: NewID(), Text: text, Kind: api.KindRating}
	for _, l := range api.RatingLabels {
		q.Choices = append(q.Choices, NewChoice(l))
	}
	return q
}

// NewDraft starts with one empty question and the default theme.
func NewDraft() *Draft {
	return &Draft{
		Theme:     api.DefaultTheme,
		Questions: []Question{NewQuestion()},
	}
}

func (d *Draft) question(id string) (*Question, error) {
	for i := range d.Questions {
		if d.Questions[i].DraftID == id {
			return &d.Questions[i], nil
		}
	}
	return nil, ErrUnknownDraft
}

// AddQuestion appends an empty question and returns its draft id.
func (d *Draft) AddQuestion() string {
	q := NewQuestion()
	d.Questions = append(d.Questions, q)
	return q.DraftID
}

func (d *Draft) RemoveQuestion(id string) error {
	if _, err := d.question(id); err != nil {
		return err
	}
	if len(d.Questions) <= 1 {
		return ErrLastQuestion
	}
	out := d.Questions[:0]
	for _, q := range d.Questions {
		if q.DraftID != id {
			out = append(out, q)
		}
	}
	d.Questions = out
	return nil
}

func (d *Draft) SetQuestionText(id, text string) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	q.Text = text
	return nil
}

// AddChoice appends an empty choice to a choice question.
func (d *Draft) AddChoice(questionID string) (string, error) {
	q, err := d.question(questionID)
	if err != nil {
		return "", err
	}
	if q.Kind == api.KindRating {
		return "", ErrRatingReadOnly
	}
	c := NewChoice("")
	q.Choices = append(q.Choices, c)
	return c.DraftID, nil
}

func (d *Draft) RemoveChoice(questionID, choiceID string) error {
	q, err := d.question(questionID)
	if err != nil {
		return err
	}
	if q.Kind == api.KindRating {
		return ErrRatingReadOnly
	}
	idx := -1
	for i, c := range q.Choices {
		if c.DraftID == choiceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownDraft
	}
	if len(q.Choices) <= 2 {
		return ErrTooFewChoices
	}
	q.Choices = append(q.Choices[:idx], q.Choices[idx+1:]...)
	return nil
}

func (d *Draft) SetChoiceText(questionID, choiceID, text string) error {
	q, err := d.question(questionID)
	if err != nil {
		return err
	}
	if q.Kind == api.KindRating {
		return ErrRatingReadOnly
	}
	for i := range q.Choices {
		if q.Choices[i].DraftID == choiceID {
			q.Choices[i].Text = text
			return nil
		}
	}
	return ErrUnknownDraft
}

// ToggleRating switches a question between a rating question with choices
// "1".."5" and a choice question with two empty choices. Persisted choices
// are dropped from the draft either way.
func (d *Draft) ToggleRating(questionID string) error {
	q, err := d.question(questionID)
	if err != nil {
		return err
	}
	if q.Kind == api.KindRating {
		q.Kind = api.KindChoice
		q.Choices = []Choice{NewChoice(""), NewChoice("")}
		return nil
	}
	q.Kind = api.KindRating
	q.Choices = q.Choices[:0]
	for _, l := range api.RatingLabels {
		q.Choices = append(q.Choices, NewChoice(l))
	}
	return nil
}

// SetTheme sets the three theme colors; empty values fall back to
// api.DefaultTheme. Colors are checked by the server.
func (d *Draft) SetTheme(c1, c2, c3 string) {
	for i, c := range []string{c1, c2, c3} {
		if c == "" {
			c = api.DefaultTheme[i]
		}
		d.Theme[i] = c
	}
}
