// Command surveyctl creates, edits, votes on and reports on surveys through
// the survey API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnkhanh/survey-platform/builder"
	"github.com/vnkhanh/survey-platform/client"
	"github.com/vnkhanh/survey-platform/voting"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("surveyctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("api", "http://127.0.0.1:8080")

	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Manage and vote on surveys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if v.GetBool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	pf := root.PersistentFlags()
	pf.String("api", "", "API base URL (env SURVEYCTL_API)")
	pf.String("token-file", "", "where the login token is kept (default ~/.surveyctl/token)")
	pf.String("captcha", "", "reCAPTCHA token for login, register, create and vote (env SURVEYCTL_CAPTCHA)")
	pf.BoolP("verbose", "v", false, "debug logging")
	_ = v.BindPFlags(pf)

	app := &app{v: v}
	root.AddCommand(
		app.loginCmd(),
		app.registerCmd(),
		app.logoutCmd(),
		app.listCmd(),
		app.createCmd(),
		app.editCmd(),
		app.deleteCmd(),
		app.voteCmd(),
		app.resultsCmd(),
	)
	return root
}

// app resolves the session shared by all commands.
type app struct {
	v *viper.Viper
}

func (a *app) tokenFile() (client.TokenFile, error) {
	if p := a.v.GetString("token-file"); p != "" {
		return client.TokenFile{Path: p}, nil
	}
	return client.DefaultTokenFile()
}

// client builds an API client with the stored token, if any.
func (a *app) client() (*client.Client, error) {
	tf, err := a.tokenFile()
	if err != nil {
		return nil, err
	}
	token, err := tf.Load()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return client.New(client.Session{BaseURL: a.v.GetString("api"), Token: token}), nil
}

func (a *app) captcha() string {
	return a.v.GetString("captcha")
}

// describe turns errors into the messages shown to the user.
func describe(err error) string {
	var (
		verr   builder.ValidationError
		serr   *builder.SagaError
		apiErr *client.APIError
	)
	switch {
	case errors.Is(err, client.ErrNoToken):
		return "please log in first: surveyctl login"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, builder.ErrCaptchaRequired), errors.Is(err, voting.ErrCaptchaRequired):
		return "a captcha token is required (--captcha or SURVEYCTL_CAPTCHA)"
	case errors.As(err, &serr):
		slog.Debug("save failed", "step", serr.Step, "error", serr.Err, "rolled_back", serr.Compensated)
		return "could not save the survey, please try again"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
