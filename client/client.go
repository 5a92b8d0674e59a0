// Package client talks to the survey API on behalf of an explicit Session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vnkhanh/survey-platform/api"
)

// ErrNoToken is returned, before any request is sent, by calls that need a
// logged-in session.
var ErrNoToken = errors.New("not logged in")

// Session carries the API base URL and the auth token of the current user.
type Session struct {
	BaseURL string
	Token   string
}

// Authorized reports whether the session holds a token.
func (s Session) Authorized() bool {
	return s.Token != ""
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
	// Missing lists unanswered question ids reported by submit_votes.
	Missing []uint
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	Session Session
	HTTP    *http.Client
}

func New(s Session) *Client {
	return &Client{
		Session: s,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// request describes one API call.
type request struct {
	method      string
	path        string
	auth        bool
	body        io.Reader
	contentType string
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	if r.auth && !c.Session.Authorized() {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, r.method, strings.TrimRight(c.Session.BaseURL, "/")+r.path, r.body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	if c.Session.Authorized() {
		req.Header.Set("Authorization", "Token "+c.Session.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// do sends r and decodes a JSON reply into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out any) error {
	r := request{method: method, path: path, auth: auth}
	if in != nil {
		body, err := jsonBody(in)
		if err != nil {
			return err
		}
		r.body = body
	}
	return c.do(ctx, r, out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body api.ErrorResponse
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Missing = body.MissingQuestions
		switch {
		case body.Message != "" && body.Error != "":
			apiErr.Message = body.Message + ": " + body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		default:
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
