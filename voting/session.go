// Package voting drives one anonymous respondent through a survey: load it
// by access code, pick one choice per question, submit the ballot.
package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/client"
)

type State int

const (
	Loading State = iota
	Error
	Ready
	Submitting
	ReadyWithErrors
	Submitted
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case ReadyWithErrors:
		return "ready-with-errors"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrIncomplete means some questions have no selected choice; see
	// Session.Missing.
	ErrIncomplete      = errors.New("every question needs an answer")
	ErrCaptchaRequired = errors.New("captcha token required")
	ErrNotOpen         = errors.New("survey is not open for voting")
	ErrUnknownChoice   = errors.New("choice does not belong to question")
)

// API is the part of the survey API a voter needs.
type API interface {
	SurveyByCode(ctx context.Context, code string) (api.Survey, error)
	SubmitVotes(ctx context.Context, surveyID uint, answers []api.Answer, captcha string) (api.SubmitVotesResponse, error)
}

type Session struct {
	client   API
	state    State
	survey   api.Survey
	selected map[uint]uint
	missing  []uint
	err      error
}

// Open fetches the survey behind code. The returned session is Ready, or
// Error together with the load error.
func Open(ctx context.Context, c API, code string) (*Session, error) {
	s := &Session{client: c, state: Loading, selected: map[uint]uint{}}
	survey, err := c.SurveyByCode(ctx, code)
	if err != nil {
		s.state = Error
		s.err = fmt.Errorf("open survey: %w", err)
		return s, s.err
	}
	s.survey = survey
	s.state = Ready
	return s, nil
}

func (s *Session) State() State { return s.state }

// Survey returns the survey with the vote counts known locally.
func (s *Session) Survey() api.Survey { return s.survey }

// Err is the last load or submit error.
func (s *Session) Err() error { return s.err }

// Missing lists unanswered questions after a rejected submit, in survey
// order.
func (s *Session) Missing() []uint {
	return append([]uint(nil), s.missing...)
}

// Selected returns the choice picked for questionID.
func (s *Session) Selected(questionID uint) (uint, bool) {
	id, ok := s.selected[questionID]
	return id, ok
}

func (s *Session) editable() bool {
	return s.state == Ready || s.state == ReadyWithErrors
}

// Select records choiceID as the answer to questionID, replacing an earlier
// pick, and clears the question from the missing set.
func (s *Session) Select(questionID, choiceID uint) error {
	if !s.editable() {
		return ErrNotOpen
	}
	if !s.hasChoice(questionID, choiceID) {
		return ErrUnknownChoice
	}
	s.selected[questionID] = choiceID
	out := s.missing[:0]
	for _, id := range s.missing {
		if id != questionID {
			out = append(out, id)
		}
	}
	s.missing = out
	return nil
}

func (s *Session) hasChoice(questionID, choiceID uint) bool {
	for _, q := range s.survey.Questions {
		if q.ID != questionID {
			continue
		}
		for _, c := range q.Choices {
			if c.ID == choiceID {
				return true
			}
		}
	}
	return false
}

// Submit sends the ballot. Unanswered questions are reported with
// ErrIncomplete without any request; on success the local counts are
// incremented for the picked choices.
func (s *Session) Submit(ctx context.Context, captcha string) error {
	if !s.editable() {
		return ErrNotOpen
	}

	answers := make([]api.Answer, 0, len(s.survey.Questions))
	var missing []uint
	for _, q := range s.survey.Questions {
		choiceID, ok := s.selected[q.ID]
		if !ok {
			missing = append(missing, q.ID)
			continue
		}
		answers = append(answers, api.Answer{QuestionID: q.ID, ChoiceID: choiceID})
	}
	if len(missing) > 0 {
		s.missing = missing
		s.state = ReadyWithErrors
		s.err = ErrIncomplete
		return ErrIncomplete
	}
	if captcha == "" {
		return ErrCaptchaRequired
	}

	s.state = Submitting
	if _, err := s.client.SubmitVotes(ctx, s.survey.ID, answers, captcha); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Missing) > 0 {
			s.missing = append([]uint(nil), apiErr.Missing...)
		}
		s.state = ReadyWithErrors
		s.err = fmt.Errorf("submit votes: %w", err)
		return s.err
	}

	for qi := range s.survey.Questions {
		q := &s.survey.Questions[qi]
		for ci := range q.Choices {
			if q.Choices[ci].ID == s.selected[q.ID] {
				q.Choices[ci].Votes++
			}
		}
	}
	s.missing = nil
	s.err = nil
	s.state = Submitted
	return nil
}
