package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/builder"
)

var errBoom = errors.New("boom")

type fakeAPI struct {
	survey api.Survey
	calls  []string
	nextID uint
	failOn string
}

func (f *fakeAPI) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errBoom
	}
	return nil
}

func (f *fakeAPI) id() uint {
	f.nextID++
	return 1000 + f.nextID
}

func (f *fakeAPI) GetSurvey(_ context.Context, id uint) (api.Survey, error) {
	if err := f.record(fmt.Sprintf("get survey %d", id)); err != nil {
		return api.Survey{}, err
	}
	return f.survey, nil
}

func (f *fakeAPI) UpdateSurvey(_ context.Context, id uint, _ api.UpdateSurveyRequest) (api.Survey, error) {
	return api.Survey{ID: id}, f.record(fmt.Sprintf("update survey %d", id))
}

func (f *fakeAPI) CreateQuestion(_ context.Context, req api.CreateQuestionRequest) (api.Question, error) {
	if err := f.record("create question " + req.QuestionText); err != nil {
		return api.Question{}, err
	}
	return api.Question{ID: f.id(), QuestionText: req.QuestionText}, nil
}

func (f *fakeAPI) UpdateQuestion(_ context.Context, id uint, req api.UpdateQuestionRequest) (api.Question, error) {
	call := fmt.Sprintf("update question %d", id)
	if req.QuestionText == nil && req.Kind != nil {
		call += " kind " + string(*req.Kind)
	}
	return api.Question{ID: id}, f.record(call)
}

func (f *fakeAPI) DeleteQuestion(_ context.Context, id uint) error {
	return f.record(fmt.Sprintf("delete question %d", id))
}

func (f *fakeAPI) CreateChoice(_ context.Context, req api.CreateChoiceRequest) (api.Choice, error) {
	if err := f.record("create choice " + req.ChoiceText); err != nil {
		return api.Choice{}, err
	}
	return api.Choice{ID: f.id(), ChoiceText: req.ChoiceText}, nil
}

func (f *fakeAPI) UpdateChoice(_ context.Context, id uint, _ api.UpdateChoiceRequest) (api.Choice, error) {
	return api.Choice{ID: id}, f.record(fmt.Sprintf("update choice %d", id))
}

func (f *fakeAPI) DeleteChoice(_ context.Context, id uint) error {
	return f.record(fmt.Sprintf("delete choice %d", id))
}

func (f *fakeAPI) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// stored has three questions (1, 2, 3) with two choices each.
func stored() api.Survey {
	s := api.Survey{ID: 9, Title: "Team", IsActive: true, Color1: "#111111"}
	for qi := uint(1); qi <= 3; qi++ {
		s.Questions = append(s.Questions, api.Question{
			ID:           qi,
			QuestionText: fmt.Sprintf("Q%d", qi),
			Kind:         api.KindChoice,
			Choices: []api.Choice{
				{ID: qi*10 + 1, ChoiceText: "yes"},
				{ID: qi*10 + 2, ChoiceText: "no"},
			},
		})
	}
	return s
}

func TestLoadMapsServerIDs(t *testing.T) {
	f := &fakeAPI{survey: stored()}
	e, err := Load(context.Background(), f, 9)
	require.NoError(t, err)

	assert.Equal(t, uint(9), e.SurveyID)
	assert.Equal(t, "Team", e.Draft.Title)
	assert.Equal(t, "#111111", e.Draft.Theme[0])
	assert.Equal(t, api.DefaultTheme[1], e.Draft.Theme[1])
	require.Len(t, e.Draft.Questions, 3)
	assert.Equal(t, uint(2), e.Draft.Questions[1].ServerID)
	assert.Equal(t, uint(22), e.Draft.Questions[1].Choices[1].ServerID)
	assert.NotEmpty(t, e.Draft.Questions[1].DraftID)
}

func TestLoadInfersLegacyRating(t *testing.T) {
	s := api.Survey{ID: 1, Title: "Old", Questions: []api.Question{{ID: 5, QuestionText: "Rate"}}}
	for i, l := range []string{"3", "1", "2", "5", "4"} {
		s.Questions[0].Choices = append(s.Questions[0].Choices, api.Choice{ID: uint(50 + i), ChoiceText: l})
	}
	e := FromSurvey(s)
	assert.Equal(t, api.KindRating, e.Draft.Questions[0].Kind)
}

func TestLoadError(t *testing.T) {
	f := &fakeAPI{failOn: "get survey 4"}
	_, err := Load(context.Background(), f, 4)
	assert.ErrorIs(t, err, errBoom)
}

func TestSaveDeletesExactlyRemovedQuestions(t *testing.T) {
	for keep := 1; keep <= 3; keep++ {
		t.Run(fmt.Sprintf("keep %d of 3", keep), func(t *testing.T) {
			f := &fakeAPI{survey: stored()}
			e := FromSurvey(f.survey)
			e.Draft.Questions = e.Draft.Questions[:keep]

			require.NoError(t, Save(context.Background(), f, e))
			assert.Equal(t, 3-keep, f.count("delete question"))
			for id := keep + 1; id <= 3; id++ {
				assert.Contains(t, f.calls, fmt.Sprintf("delete question %d", id))
			}
			assert.Equal(t, 2*(3-keep), f.count("delete choice"))
		})
	}
}

func TestSaveOrder(t *testing.T) {
	f := &fakeAPI{survey: stored()}
	e := FromSurvey(f.survey)
	d := e.Draft

	// drop question 3, drop choice 12, add a question
	d.Questions = d.Questions[:2]
	d.Questions[0].Choices = append(d.Questions[0].Choices[:1], builder.NewChoice("maybe"))
	added := builder.NewQuestion()
	added.Text = "New"
	added.Choices[0].Text = "a"
	added.Choices[1].Text = "b"
	d.Questions = append(d.Questions, added)

	require.NoError(t, Save(context.Background(), f, e))
	assert.Equal(t, []string{
		"update survey 9",
		"update question 1",
		"update choice 11",
		"create choice maybe",
		"update question 2",
		"update choice 21",
		"update choice 22",
		"create question New",
		"create choice a",
		"create choice b",
		"delete choice 12",
		"delete choice 31",
		"delete choice 32",
		"delete question 3",
	}, f.calls)

	// the saved draft is the new baseline
	f.calls = nil
	require.NoError(t, Save(context.Background(), f, e))
	assert.Zero(t, f.count("delete"))
	assert.Zero(t, f.count("create"))
}

func TestSaveBlankOriginalChoiceIsDeleted(t *testing.T) {
	f := &fakeAPI{survey: stored()}
	e := FromSurvey(f.survey)
	e.Draft.Questions[0].Choices = append(e.Draft.Questions[0].Choices, builder.NewChoice("maybe"))
	e.Draft.Questions[0].Choices[1].Text = " "

	require.NoError(t, Save(context.Background(), f, e))
	assert.Contains(t, f.calls, "delete choice 12")
	assert.NotContains(t, f.calls, "update choice 12")
}

func TestSaveSwitchToRatingAfterDeletes(t *testing.T) {
	f := &fakeAPI{survey: stored()}
	e := FromSurvey(f.survey)
	require.NoError(t, e.Draft.ToggleRating(e.Draft.Questions[0].DraftID))

	require.NoError(t, Save(context.Background(), f, e))
	last := f.calls[len(f.calls)-1]
	assert.Equal(t, "update question 1 kind rating", last)
	assert.Equal(t, 5, f.count("create choice"))
	assert.Contains(t, f.calls, "delete choice 11")
}

func TestSaveValidatesFirst(t *testing.T) {
	f := &fakeAPI{survey: stored()}
	e := FromSurvey(f.survey)
	e.Draft.Title = "  "

	err := Save(context.Background(), f, e)
	var verr builder.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, builder.MissingTitle, verr.Reason)
	assert.Empty(t, f.calls)
}

func TestSaveCompensatesCreatedEntities(t *testing.T) {
	f := &fakeAPI{survey: stored(), failOn: "delete question 3"}
	e := FromSurvey(f.survey)
	e.Draft.Questions = e.Draft.Questions[:2]
	added := builder.NewQuestion()
	added.Text = "New"
	added.Choices[0].Text = "a"
	added.Choices[1].Text = "b"
	e.Draft.Questions = append(e.Draft.Questions, added)

	err := Save(context.Background(), f, e)

	var serr *builder.SagaError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, serr.Compensated)
	assert.Equal(t, "delete question 3", serr.Step)
	assert.Contains(t, serr.Unreverted, "updated survey 9")
	assert.Contains(t, serr.Unreverted, "deleted choice 31")

	tail := f.calls[len(f.calls)-3:]
	assert.Equal(t, []string{"delete choice 1003", "delete choice 1002", "delete question 1001"}, tail)
}

func TestSaveRetryAfterRollback(t *testing.T) {
	f := &fakeAPI{survey: stored(), failOn: "create choice y"}
	e := FromSurvey(f.survey)
	e.Draft.Questions[0].Choices[1].Text = ""
	added := builder.NewQuestion()
	added.Text = "New"
	added.Choices[0].Text = "x"
	added.Choices[1].Text = "y"
	e.Draft.Questions = append(e.Draft.Questions, added)

	err := Save(context.Background(), f, e)
	var serr *builder.SagaError
	require.ErrorAs(t, err, &serr)
	require.True(t, serr.Compensated)
	assert.Contains(t, f.calls, "delete question 1001")

	// the draft is back to its pre-save ids
	q := e.Draft.Questions[3]
	assert.Zero(t, q.ServerID)
	assert.Zero(t, q.Choices[0].ServerID)
	assert.Zero(t, q.Choices[1].ServerID)
	assert.Equal(t, uint(12), e.Draft.Questions[0].Choices[1].ServerID)

	f.failOn = ""
	f.calls = nil
	require.NoError(t, Save(context.Background(), f, e))
	assert.Contains(t, f.calls, "create question New")
	assert.Contains(t, f.calls, "create choice x")
	assert.Contains(t, f.calls, "create choice y")
	assert.Contains(t, f.calls, "delete choice 12")
	assert.NotContains(t, f.calls, "update question 1001")
	assert.NotContains(t, f.calls, "update choice 1002")
	assert.Equal(t, 3, f.count("create"))
}
