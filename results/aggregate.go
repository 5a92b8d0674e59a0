// Package results aggregates vote counts of a survey and renders them as
// text, PDF or spreadsheet.
package results

import (
	"math"

	"github.com/vnkhanh/survey-platform/api"
)

// QuestionTotal is the sum of votes over the question's choices.
func QuestionTotal(q api.Question) int {
	total := 0
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

// SurveyTotal is the sum of all question totals.
func SurveyTotal(s api.Survey) int {
	total := 0
	for _, q := range s.Questions {
		total += QuestionTotal(q)
	}
	return total
}

// Percent returns round(votes/total*100), or 0 when total is 0.
func Percent(votes, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(votes) / float64(total) * 100))
}

// MaxTotal is the largest question total, never less than 1. It scales the
// per-question bars of the overview.
func MaxTotal(s api.Survey) int {
	top := 1
	for _, q := range s.Questions {
		if t := QuestionTotal(q); t > top {
			top = t
		}
	}
	return top
}

type ChoiceRow struct {
	ID      uint
	Text    string
	Votes   int
	Percent int
}

type QuestionRow struct {
	ID      uint
	Text    string
	Kind    api.QuestionKind
	Total   int
	Choices []ChoiceRow
}

// Summary is the aggregated view of one survey.
type Summary struct {
	SurveyID   uint
	Title      string
	AccessCode string
	Total      int
	MaxTotal   int
	Questions  []QuestionRow
}

func Summarize(s api.Survey) Summary {
	out := Summary{
		SurveyID:   s.ID,
		Title:      s.Title,
		AccessCode: s.AccessCode,
		Total:      SurveyTotal(s),
		MaxTotal:   MaxTotal(s),
		Questions:  make([]QuestionRow, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		total := QuestionTotal(q)
		row := QuestionRow{
			ID:      q.ID,
			Text:    q.QuestionText,
			Kind:    q.Kind,
			Total:   total,
			Choices: make([]ChoiceRow, 0, len(q.Choices)),
		}
		for _, c := range q.Choices {
			row.Choices = append(row.Choices, ChoiceRow{
				ID:      c.ID,
				Text:    c.ChoiceText,
				Votes:   c.Votes,
				Percent: Percent(c.Votes, total),
			})
		}
		out.Questions = append(out.Questions, row)
	}
	return out
}
