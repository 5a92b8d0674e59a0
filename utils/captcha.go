package utils

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	recaptcha "google.golang.org/api/recaptchaenterprise/v1"
)

// Captcha actions, matched against the action the widget was rendered with.
const (
	ActionLogin        = "login"
	ActionRegister     = "register"
	ActionCreateSurvey = "create_survey"
	ActionVote         = "vote"
)

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, action string) error
}

// RecaptchaVerifier checks tokens with reCAPTCHA Enterprise assessments.
type RecaptchaVerifier struct {
	svc      *recaptcha.Service
	parent   string
	siteKey  string
	minScore float64
}

func NewRecaptchaVerifier(ctx context.Context, project, siteKey, apiKey string, minScore float64) (*RecaptchaVerifier, error) {
	svc, err := recaptcha.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("recaptcha client: %w", err)
	}
	return &RecaptchaVerifier{
		svc:      svc,
		parent:   "projects/" + project,
		siteKey:  siteKey,
		minScore: minScore,
	}, nil
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, action string) error {
	if token == "" {
		return fmt.Errorf("%w: missing recaptcha_token", ErrCaptcha)
	}
	assessment := &recaptcha.GoogleCloudRecaptchaenterpriseV1Assessment{
		Event: &recaptcha.GoogleCloudRecaptchaenterpriseV1Event{
			Token:          token,
			SiteKey:        v.siteKey,
			ExpectedAction: action,
		},
	}
	resp, err := v.svc.Projects.Assessments.Create(v.parent, assessment).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("recaptcha assessment: %w", err)
	}
	if resp.TokenProperties == nil || !resp.TokenProperties.Valid {
		reason := "unknown"
		if resp.TokenProperties != nil {
			reason = resp.TokenProperties.InvalidReason
		}
		return fmt.Errorf("%w: invalid token (%s)", ErrCaptcha, reason)
	}
	if resp.TokenProperties.Action != action {
		return fmt.Errorf("%w: action %q does not match %q", ErrCaptcha, resp.TokenProperties.Action, action)
	}
	if resp.RiskAnalysis != nil && resp.RiskAnalysis.Score < v.minScore {
		return fmt.Errorf("%w: score %.2f below %.2f", ErrCaptcha, resp.RiskAnalysis.Score, v.minScore)
	}
	return nil
}

// PresenceCaptcha only checks that a token was sent. Used in development
// and tests when reCAPTCHA is disabled.
type PresenceCaptcha struct{}

func (PresenceCaptcha) Verify(_ context.Context, token, _ string) error {
	if token == "" {
		return fmt.Errorf("%w: missing recaptcha_token", ErrCaptcha)
	}
	return nil
}
