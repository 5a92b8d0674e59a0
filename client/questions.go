package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vnkhanh/survey-platform/api"
)

// ListQuestions lists the caller's questions, limited to one survey when
// surveyID is non-zero.
func (c *Client) ListQuestions(ctx context.Context, surveyID uint) ([]api.Question, error) {
	path := "/api/questions/"
	if surveyID != 0 {
		path = fmt.Sprintf("%s?survey=%d", path, surveyID)
	}
	var out []api.Question
	err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out)
	return out, err
}

func (c *Client) CreateQuestion(ctx context.Context, req api.CreateQuestionRequest) (api.Question, error) {
	var out api.Question
	err := c.doJSON(ctx, http.MethodPost, "/api/questions/", true, req, &out)
	return out, err
}

func (c *Client) UpdateQuestion(ctx context.Context, id uint, req api.UpdateQuestionRequest) (api.Question, error) {
	var out api.Question
	err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/questions/%d/", id), true, req, &out)
	return out, err
}

func (c *Client) DeleteQuestion(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/questions/%d/", id), true, nil, nil)
}

func (c *Client) ListChoices(ctx context.Context, questionID uint) ([]api.Choice, error) {
	path := "/api/choices/"
	if questionID != 0 {
		path = fmt.Sprintf("%s?question=%d", path, questionID)
	}
	var out []api.Choice
	err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out)
	return out, err
}

func (c *Client) CreateChoice(ctx context.Context, req api.CreateChoiceRequest) (api.Choice, error) {
	var out api.Choice
	err := c.doJSON(ctx, http.MethodPost, "/api/choices/", true, req, &out)
	return out, err
}

func (c *Client) UpdateChoice(ctx context.Context, id uint, req api.UpdateChoiceRequest) (api.Choice, error) {
	var out api.Choice
	err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/choices/%d/", id), true, req, &out)
	return out, err
}

func (c *Client) DeleteChoice(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/choices/%d/", id), true, nil, nil)
}

// VoteChoice adds one vote to a single choice. No token needed.
func (c *Client) VoteChoice(ctx context.Context, id uint) (api.VoteResponse, error) {
	var out api.VoteResponse
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/choices/%d/vote/", id), false, nil, &out)
	return out, err
}
