package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vnkhanh/survey-platform/api"
)

func (c *Client) ListSurveys(ctx context.Context) ([]api.Survey, error) {
	var out []api.Survey
	err := c.doJSON(ctx, http.MethodGet, "/api/surveys/", true, nil, &out)
	return out, err
}

func (c *Client) GetSurvey(ctx context.Context, id uint) (api.Survey, error) {
	var out api.Survey
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/surveys/%d/", id), true, nil, &out)
	return out, err
}

func (c *Client) CreateSurvey(ctx context.Context, req api.CreateSurveyRequest) (api.Survey, error) {
	var out api.Survey
	err := c.doJSON(ctx, http.MethodPost, "/api/surveys/", true, req, &out)
	return out, err
}

func (c *Client) UpdateSurvey(ctx context.Context, id uint, req api.UpdateSurveyRequest) (api.Survey, error) {
	var out api.Survey
	err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/surveys/%d/", id), true, req, &out)
	return out, err
}

func (c *Client) DeleteSurvey(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/surveys/%d/", id), true, nil, nil)
}

// SurveyByCode fetches an active survey by its access code. No token needed.
func (c *Client) SurveyByCode(ctx context.Context, code string) (api.Survey, error) {
	var out api.Survey
	err := c.doJSON(ctx, http.MethodGet, "/api/surveys/vote_access/?code="+url.QueryEscape(code), false, nil, &out)
	return out, err
}

// SubmitVotes casts one ballot. A rejected ballot is an *APIError whose
// Missing field lists the unanswered questions.
func (c *Client) SubmitVotes(ctx context.Context, surveyID uint, answers []api.Answer, captcha string) (api.SubmitVotesResponse, error) {
	var out api.SubmitVotesResponse
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/surveys/%d/submit_votes/", surveyID), false, api.SubmitVotesRequest{
		Answers:        answers,
		RecaptchaToken: captcha,
	}, &out)
	return out, err
}

// DownloadReport streams the PDF report into w.
func (c *Client) DownloadReport(ctx context.Context, id uint, w io.Writer) error {
	return c.download(ctx, fmt.Sprintf("/api/surveys/%d/report.pdf", id), w)
}

// DownloadExport streams the spreadsheet export into w.
func (c *Client) DownloadExport(ctx context.Context, id uint, w io.Writer) error {
	return c.download(ctx, fmt.Sprintf("/api/surveys/%d/export.xlsx", id), w)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) error {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", path, err)
	}
	return nil
}
