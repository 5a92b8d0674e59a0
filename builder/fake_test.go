package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vnkhanh/survey-platform/api"
)

// recorder is an in-memory API that logs every call in order.
type recorder struct {
	calls  []string
	nextID uint
	// failOn makes the call with this name return errBoom.
	failOn       string
	failDelete   bool
	createdTexts []string
}

var errBoom = errors.New("boom")

func (r *recorder) id() uint {
	r.nextID++
	return r.nextID
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failOn {
		return errBoom
	}
	return nil
}

func (r *recorder) CreateSurvey(_ context.Context, req api.CreateSurveyRequest) (api.Survey, error) {
	if err := r.record("create survey"); err != nil {
		return api.Survey{}, err
	}
	return api.Survey{ID: r.id(), Title: req.Title, AccessCode: "code"}, nil
}

func (r *recorder) CreateQuestion(_ context.Context, req api.CreateQuestionRequest) (api.Question, error) {
	if err := r.record("create question " + req.QuestionText); err != nil {
		return api.Question{}, err
	}
	return api.Question{ID: r.id(), SurveyID: req.SurveyID, QuestionText: req.QuestionText, Kind: req.Kind}, nil
}

func (r *recorder) CreateChoice(_ context.Context, req api.CreateChoiceRequest) (api.Choice, error) {
	if err := r.record("create choice " + req.ChoiceText); err != nil {
		return api.Choice{}, err
	}
	r.createdTexts = append(r.createdTexts, req.ChoiceText)
	return api.Choice{ID: r.id(), QuestionID: req.QuestionID, ChoiceText: req.ChoiceText}, nil
}

func (r *recorder) DeleteSurvey(_ context.Context, id uint) error {
	r.calls = append(r.calls, fmt.Sprintf("delete survey %d", id))
	if r.failDelete {
		return errBoom
	}
	return nil
}
