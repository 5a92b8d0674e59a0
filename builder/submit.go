package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vnkhanh/survey-platform/api"
)

// ErrCaptchaRequired is returned when a submit is attempted without a
// captcha token.
var ErrCaptchaRequired = errors.New("captcha token required")

// API is the part of the survey API the builder needs.
type API interface {
	CreateSurvey(ctx context.Context, req api.CreateSurveyRequest) (api.Survey, error)
	CreateQuestion(ctx context.Context, req api.CreateQuestionRequest) (api.Question, error)
	CreateChoice(ctx context.Context, req api.CreateChoiceRequest) (api.Choice, error)
	DeleteSurvey(ctx context.Context, id uint) error
}

// Submit validates d and creates the survey, then each question followed by
// its non-blank choices, one call at a time in draft order. When a call after
// the survey create fails, the survey is deleted again and a *SagaError is
// returned.
func Submit(ctx context.Context, client API, d *Draft, captcha string) (api.Survey, error) {
	if err := d.Validate(); err != nil {
		return api.Survey{}, err
	}
	if captcha == "" {
		return api.Survey{}, ErrCaptchaRequired
	}

	survey, err := client.CreateSurvey(ctx, api.CreateSurveyRequest{
		Title:          strings.TrimSpace(d.Title),
		Description:    d.Description,
		IsActive:       d.IsActive,
		RecaptchaToken: captcha,
		Color1:         d.Theme[0],
		Color2:         d.Theme[1],
		Color3:         d.Theme[2],
	})
	if err != nil {
		return api.Survey{}, fmt.Errorf("create survey: %w", err)
	}
	survey.Questions = survey.Questions[:0]

	for i, q := range d.Questions {
		created, step, err := createQuestion(ctx, client, survey.ID, q)
		if err != nil {
			return api.Survey{}, compensate(ctx, client, survey.ID, fmt.Sprintf("question %d: %s", i+1, step), err)
		}
		survey.Questions = append(survey.Questions, created)
	}
	return survey, nil
}

func createQuestion(ctx context.Context, client API, surveyID uint, q Question) (api.Question, string, error) {
	kind := q.Kind
	if !kind.Valid() {
		kind = api.KindChoice
	}
	created, err := client.CreateQuestion(ctx, api.CreateQuestionRequest{
		SurveyID:     surveyID,
		QuestionText: strings.TrimSpace(q.Text),
		Kind:         kind,
	})
	if err != nil {
		return api.Question{}, "create question", err
	}
	created.Choices = created.Choices[:0]
	for _, c := range filledChoices(q.Choices) {
		ch, err := client.CreateChoice(ctx, api.CreateChoiceRequest{
			QuestionID: created.ID,
			ChoiceText: c.Text,
		})
		if err != nil {
			return api.Question{}, fmt.Sprintf("create choice %q", c.Text), err
		}
		created.Choices = append(created.Choices, ch)
	}
	return created, "", nil
}

// compensate deletes the survey created by a failed submit. The server
// removes its questions and choices with it.
func compensate(ctx context.Context, client API, surveyID uint, step string, cause error) error {
	serr := &SagaError{Step: step, Err: cause}
	if err := client.DeleteSurvey(context.WithoutCancel(ctx), surveyID); err != nil {
		serr.CompensationErr = fmt.Errorf("delete survey %d: %w", surveyID, err)
		return serr
	}
	serr.Compensated = true
	return serr
}
