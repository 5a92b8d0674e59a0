package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/survey-platform/api"
)

// server records the last request and answers with the handler's reply.
func server(t *testing.T, h http.HandlerFunc) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthCallsFailWithoutToken(t *testing.T) {
	srv, seen := server(t, func(w http.ResponseWriter, r *http.Request) {})
	c := New(Session{BaseURL: srv.URL})

	_, err := c.ListSurveys(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, c.DeleteQuestion(context.Background(), 1), ErrNoToken)
	assert.Empty(t, *seen)
}

func TestTokenHeader(t *testing.T) {
	srv, seen := server(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.Survey{{ID: 1, Title: "A"}})
	})
	c := New(Session{BaseURL: srv.URL + "/", Token: "abc"})

	out, err := c.ListSurveys(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)

	r := (*seen)[0]
	assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
	assert.Equal(t, "/api/surveys/", r.URL.Path)
}

func TestLogin(t *testing.T) {
	var body api.Credentials
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api-token-auth/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, api.TokenResponse{Token: "tok"})
	})
	c := New(Session{BaseURL: srv.URL})

	tok, err := c.Login(context.Background(), "ann", "secret", "cap")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, api.Credentials{Username: "ann", Password: "secret", RecaptchaToken: "cap"}, body)
}

func TestAPIErrorDecoding(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Message:          "All questions must be answered",
			MissingQuestions: []uint{4, 5},
		})
	})
	c := New(Session{BaseURL: srv.URL})

	_, err := c.SubmitVotes(context.Background(), 3, []api.Answer{{QuestionID: 1, ChoiceID: 2}}, "cap")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, []uint{4, 5}, apiErr.Missing)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})
	c := New(Session{BaseURL: srv.URL})

	_, err := c.SurveyByCode(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestSurveyByCodeIsPublic(t *testing.T) {
	srv, seen := server(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Survey{ID: 8, Questions: []api.Question{}})
	})
	c := New(Session{BaseURL: srv.URL})

	s, err := c.SurveyByCode(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, uint(8), s.ID)

	r := (*seen)[0]
	assert.Equal(t, "a b", r.URL.Query().Get("code"))
	assert.Empty(t, r.Header.Get("Authorization"))
}

func TestDeleteNoContent(t *testing.T) {
	srv, seen := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := New(Session{BaseURL: srv.URL, Token: "t"})

	require.NoError(t, c.DeleteSurvey(context.Background(), 12))
	assert.Equal(t, http.MethodDelete, (*seen)[0].Method)
	assert.Equal(t, "/api/surveys/12/", (*seen)[0].URL.Path)
}

func TestUpdateQuestionSendsOnlySetFields(t *testing.T) {
	var raw map[string]any
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, api.Question{ID: 2})
	})
	c := New(Session{BaseURL: srv.URL, Token: "t"})

	text := "New text"
	_, err := c.UpdateQuestion(context.Background(), 2, api.UpdateQuestionRequest{QuestionText: &text})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"question_text": "New text"}, raw)
}

func TestUpdateProfileMultipart(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "#abcdef", r.FormValue("color_2"))
		f, fh, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", fh.Filename)
		assert.Equal(t, "png-bytes", string(b))
		writeJSON(w, http.StatusOK, api.Profile{Username: "ann"})
	})
	c := New(Session{BaseURL: srv.URL, Token: "t"})

	color := "#abcdef"
	p, err := c.UpdateProfile(context.Background(), ProfileUpdate{
		Color2: &color,
		Avatar: &File{Name: "me.png", Reader: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ann", p.Username)
}

func TestDownloadReport(t *testing.T) {
	srv, _ := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/surveys/4/report.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3"))
	})
	c := New(Session{BaseURL: srv.URL, Token: "t"})

	var buf bytes.Buffer
	require.NoError(t, c.DownloadReport(context.Background(), 4, &buf))
	assert.Equal(t, "%PDF-1.3", buf.String())
}

func TestTokenFile(t *testing.T) {
	f := TokenFile{Path: filepath.Join(t.TempDir(), "nested", "token")}

	tok, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, f.Save("abc"))
	tok, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear())
	tok, err = f.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}
