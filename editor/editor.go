// Package editor loads a stored survey into a builder draft and reconciles
// the edited draft back to the server.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/builder"
)

// API is the part of the survey API the editor needs.
type API interface {
	GetSurvey(ctx context.Context, id uint) (api.Survey, error)
	UpdateSurvey(ctx context.Context, id uint, req api.UpdateSurveyRequest) (api.Survey, error)
	CreateQuestion(ctx context.Context, req api.CreateQuestionRequest) (api.Question, error)
	UpdateQuestion(ctx context.Context, id uint, req api.UpdateQuestionRequest) (api.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error
	CreateChoice(ctx context.Context, req api.CreateChoiceRequest) (api.Choice, error)
	UpdateChoice(ctx context.Context, id uint, req api.UpdateChoiceRequest) (api.Choice, error)
	DeleteChoice(ctx context.Context, id uint) error
}

// Edit is a draft of a stored survey plus the ids it was loaded with.
type Edit struct {
	SurveyID uint
	Draft    *builder.Draft

	originalQuestions []uint
	originalChoices   []uint
	originalKinds     map[uint]api.QuestionKind
}

// Load fetches survey id and maps it into a draft tagged with server ids.
func Load(ctx context.Context, client API, id uint) (*Edit, error) {
	s, err := client.GetSurvey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load survey %d: %w", id, err)
	}
	return FromSurvey(s), nil
}

// FromSurvey maps an already fetched survey.
func FromSurvey(s api.Survey) *Edit {
	d := &builder.Draft{
		Title:       s.Title,
		Description: s.Description,
		IsActive:    s.IsActive,
		Theme:       api.DefaultTheme,
	}
	d.SetTheme(s.Color1, s.Color2, s.Color3)

	e := &Edit{SurveyID: s.ID, Draft: d, originalKinds: map[uint]api.QuestionKind{}}
	for _, q := range s.Questions {
		kind := builder.KindOf(q)
		dq := builder.Question{
			DraftID:  builder.NewID(),
			ServerID: q.ID,
			Text:     q.QuestionText,
			Kind:     kind,
		}
		for _, c := range q.Choices {
			ch := builder.NewChoice(c.ChoiceText)
			ch.ServerID = c.ID
			dq.Choices = append(dq.Choices, ch)
			e.originalChoices = append(e.originalChoices, c.ID)
		}
		d.Questions = append(d.Questions, dq)
		e.originalQuestions = append(e.originalQuestions, q.ID)
		e.originalKinds[q.ID] = kind
	}
	return e
}

// draftIDs holds the server ids of a draft's questions and choices, indexed
// like the draft.
type draftIDs struct {
	questions []uint
	choices   [][]uint
}

func snapshotIDs(d *builder.Draft) draftIDs {
	ids := draftIDs{
		questions: make([]uint, len(d.Questions)),
		choices:   make([][]uint, len(d.Questions)),
	}
	for qi, q := range d.Questions {
		ids.questions[qi] = q.ServerID
		ids.choices[qi] = make([]uint, len(q.Choices))
		for ci, c := range q.Choices {
			ids.choices[qi][ci] = c.ServerID
		}
	}
	return ids
}

func (ids draftIDs) restore(d *builder.Draft) {
	for qi := range d.Questions {
		q := &d.Questions[qi]
		q.ServerID = ids.questions[qi]
		for ci := range q.Choices {
			q.Choices[ci].ServerID = ids.choices[qi][ci]
		}
	}
}

// saga tracks what a save changed so a failure can be unwound.
type saga struct {
	client           API
	draft            *builder.Draft
	before           draftIDs
	createdQuestions []uint
	createdChoices   []uint
	done             []string
}

// fail deletes what this save created and puts the draft's server ids back,
// so the same draft can be saved again.
func (s *saga) fail(ctx context.Context, step string, cause error) error {
	s.before.restore(s.draft)
	serr := &builder.SagaError{Step: step, Err: cause, Unreverted: s.done}
	ctx = context.WithoutCancel(ctx)
	var errs []string
	for i := len(s.createdChoices) - 1; i >= 0; i-- {
		if err := s.client.DeleteChoice(ctx, s.createdChoices[i]); err != nil {
			errs = append(errs, fmt.Sprintf("delete choice %d: %v", s.createdChoices[i], err))
		}
	}
	for i := len(s.createdQuestions) - 1; i >= 0; i-- {
		if err := s.client.DeleteQuestion(ctx, s.createdQuestions[i]); err != nil {
			errs = append(errs, fmt.Sprintf("delete question %d: %v", s.createdQuestions[i], err))
		}
	}
	if len(errs) > 0 {
		serr.CompensationErr = fmt.Errorf("%s", strings.Join(errs, "; "))
	} else {
		serr.Compensated = true
	}
	return serr
}

// Save validates the draft, then updates the survey, updates or creates each
// question and its non-blank choices in order, and finally deletes the
// original choices and then the original questions that were not saved.
// Calls are issued one at a time. On failure the entities created by this
// save are deleted; updates and deletes already applied are listed in the
// returned *builder.SagaError.
func Save(ctx context.Context, client API, e *Edit) error {
	d := e.Draft
	if err := d.Validate(); err != nil {
		return err
	}

	s := &saga{client: client, draft: d, before: snapshotIDs(d)}

	title := strings.TrimSpace(d.Title)
	if _, err := client.UpdateSurvey(ctx, e.SurveyID, api.UpdateSurveyRequest{
		Title:       &title,
		Description: &d.Description,
		IsActive:    &d.IsActive,
		Color1:      &d.Theme[0],
		Color2:      &d.Theme[1],
		Color3:      &d.Theme[2],
	}); err != nil {
		return s.fail(ctx, "update survey", err)
	}
	s.done = append(s.done, fmt.Sprintf("updated survey %d", e.SurveyID))

	savedQuestions := map[uint]bool{}
	savedChoices := map[uint]bool{}
	var toRating []uint

	for qi := range d.Questions {
		q := &d.Questions[qi]
		kind := q.Kind
		if !kind.Valid() {
			kind = api.KindChoice
		}
		text := strings.TrimSpace(q.Text)

		if q.ServerID != 0 {
			req := api.UpdateQuestionRequest{SurveyID: &e.SurveyID, QuestionText: &text}
			// A switch to rating is applied once the old choices are gone.
			if kind == api.KindRating && e.originalKinds[q.ServerID] != api.KindRating {
				toRating = append(toRating, q.ServerID)
			} else {
				req.Kind = &kind
			}
			if _, err := client.UpdateQuestion(ctx, q.ServerID, req); err != nil {
				return s.fail(ctx, fmt.Sprintf("update question %d", q.ServerID), err)
			}
			s.done = append(s.done, fmt.Sprintf("updated question %d", q.ServerID))
		} else {
			created, err := client.CreateQuestion(ctx, api.CreateQuestionRequest{
				SurveyID:     e.SurveyID,
				QuestionText: text,
				Kind:         kind,
			})
			if err != nil {
				return s.fail(ctx, fmt.Sprintf("create question %d", qi+1), err)
			}
			q.ServerID = created.ID
			s.createdQuestions = append(s.createdQuestions, created.ID)
		}
		savedQuestions[q.ServerID] = true

		for ci := range q.Choices {
			c := &q.Choices[ci]
			ctext := strings.TrimSpace(c.Text)
			if ctext == "" {
				// blank originals are deleted below
				c.ServerID = 0
				continue
			}
			if c.ServerID != 0 {
				if _, err := client.UpdateChoice(ctx, c.ServerID, api.UpdateChoiceRequest{
					QuestionID: &q.ServerID,
					ChoiceText: &ctext,
				}); err != nil {
					return s.fail(ctx, fmt.Sprintf("update choice %d", c.ServerID), err)
				}
				s.done = append(s.done, fmt.Sprintf("updated choice %d", c.ServerID))
			} else {
				created, err := client.CreateChoice(ctx, api.CreateChoiceRequest{
					QuestionID: q.ServerID,
					ChoiceText: ctext,
				})
				if err != nil {
					return s.fail(ctx, fmt.Sprintf("create choice %q", ctext), err)
				}
				c.ServerID = created.ID
				s.createdChoices = append(s.createdChoices, created.ID)
			}
			savedChoices[c.ServerID] = true
		}
	}

	for _, id := range e.originalChoices {
		if savedChoices[id] {
			continue
		}
		if err := client.DeleteChoice(ctx, id); err != nil {
			return s.fail(ctx, fmt.Sprintf("delete choice %d", id), err)
		}
		s.done = append(s.done, fmt.Sprintf("deleted choice %d", id))
	}
	for _, id := range e.originalQuestions {
		if savedQuestions[id] {
			continue
		}
		if err := client.DeleteQuestion(ctx, id); err != nil {
			return s.fail(ctx, fmt.Sprintf("delete question %d", id), err)
		}
		s.done = append(s.done, fmt.Sprintf("deleted question %d", id))
	}

	rating := api.KindRating
	for _, id := range toRating {
		if _, err := client.UpdateQuestion(ctx, id, api.UpdateQuestionRequest{Kind: &rating}); err != nil {
			return s.fail(ctx, fmt.Sprintf("update question %d kind", id), err)
		}
		s.done = append(s.done, fmt.Sprintf("updated question %d kind", id))
	}

	e.reset()
	return nil
}

// reset makes the saved draft the new baseline, dropping blank choices.
func (e *Edit) reset() {
	e.originalQuestions = e.originalQuestions[:0]
	e.originalChoices = e.originalChoices[:0]
	e.originalKinds = map[uint]api.QuestionKind{}
	for qi := range e.Draft.Questions {
		q := &e.Draft.Questions[qi]
		kept := q.Choices[:0]
		for _, c := range q.Choices {
			if c.ServerID != 0 {
				kept = append(kept, c)
				e.originalChoices = append(e.originalChoices, c.ServerID)
			}
		}
		q.Choices = kept
		e.originalQuestions = append(e.originalQuestions, q.ServerID)
		e.originalKinds[q.ServerID] = q.Kind
	}
}
