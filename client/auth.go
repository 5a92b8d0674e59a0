package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vnkhanh/survey-platform/api"
)

// Login exchanges credentials for a token. The session is not modified.
func (c *Client) Login(ctx context.Context, username, password, captcha string) (string, error) {
	var out api.TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api-token-auth/", false, api.Credentials{
		Username:       username,
		Password:       password,
		RecaptchaToken: captcha,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, username, password, captcha string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/register/", false, api.Credentials{
		Username:       username,
		Password:       password,
		RecaptchaToken: captcha,
	}, nil)
}

// Logout revokes the session token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout/", true, nil, nil)
}

func (c *Client) Profile(ctx context.Context) (api.Profile, error) {
	var out api.Profile
	err := c.doJSON(ctx, http.MethodGet, "/api/profile/me/", true, nil, &out)
	return out, err
}

// File is an upload attached to a profile update.
type File struct {
	Name   string
	Reader io.Reader
}

// ProfileUpdate changes the fields that are set. Images switch the request
// to multipart.
type ProfileUpdate struct {
	Color1          *string
	Color2          *string
	Color3          *string
	Avatar          *File
	BackgroundImage *File
}

func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (api.Profile, error) {
	var out api.Profile
	if u.Avatar == nil && u.BackgroundImage == nil {
		body := map[string]string{}
		for key, v := range map[string]*string{"color_1": u.Color1, "color_2": u.Color2, "color_3": u.Color3} {
			if v != nil {
				body[key] = *v
			}
		}
		err := c.doJSON(ctx, http.MethodPatch, "/api/profile/me/", true, body, &out)
		return out, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, v := range map[string]*string{"color_1": u.Color1, "color_2": u.Color2, "color_3": u.Color3} {
		if v == nil {
			continue
		}
		if err := mw.WriteField(key, *v); err != nil {
			return out, err
		}
	}
	for key, f := range map[string]*File{"avatar": u.Avatar, "background_image": u.BackgroundImage} {
		if f == nil {
			continue
		}
		part, err := mw.CreateFormFile(key, f.Name)
		if err != nil {
			return out, err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return out, fmt.Errorf("read %s: %w", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	err := c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "/api/profile/me/",
		auth:        true,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	return out, err
}
