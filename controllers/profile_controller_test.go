package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/survey-platform/api"
)

func multipartRequest(t *testing.T, token string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/profile/me/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+token)
	return req
}

func TestUpdateProfileColors(t *testing.T) {
	e := newEnv(t)
	_, token := e.user("dana")

	w := e.do(http.MethodPatch, "/api/profile/me/", token, map[string]string{"color_1": "#ABCDEF"})
	expectStatus(t, w, http.StatusOK)
	p := decode[api.Profile](t, w)
	assert.Equal(t, "dana", p.Username)
	assert.Equal(t, "#ABCDEF", p.Color1)
	assert.Empty(t, p.Color2)

	w = e.do(http.MethodPatch, "/api/profile/me/", token, map[string]string{"color_2": "blue"})
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(http.MethodGet, "/api/profile/me/", token, nil)
	expectStatus(t, w, http.StatusOK)
	assert.Equal(t, "#ABCDEF", decode[api.Profile](t, w).Color1)
}

func TestUpdateProfileImages(t *testing.T) {
	e := newEnv(t)
	_, token := e.user("erin")

	req := multipartRequest(t, token, map[string]string{"color_3": "#123"}, map[string][]byte{
		"avatar": []byte("\x89PNG fake"),
	})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	p := decode[api.Profile](t, w)
	require.NotNil(t, p.Avatar)
	assert.Contains(t, *p.Avatar, "https://cdn.test/")
	assert.Nil(t, p.BackgroundImage)
	assert.Equal(t, "#123", p.Color3)
	assert.Len(t, e.uploader.paths, 1)
}

func TestUpdateProfileWithoutUploader(t *testing.T) {
	e := newEnv(t)
	e.h.Uploader = nil
	_, token := e.user("finn")

	req := multipartRequest(t, token, nil, map[string][]byte{"background_image": []byte("img")})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusServiceUnavailable)
}
