package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// credentials reads the username and password from flags or stdin.
func credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	in := bufio.NewReader(cmd.InOrStdin())
	var err error
	if username == "" {
		if username, err = prompt(cmd, in, "username: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = prompt(cmd, in, "password: "); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("username", "u", "", "account name")
	cmd.Flags().StringP("password", "p", "", "password (prompted when empty)")
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			token, err := c.Login(cmd.Context(), username, password, a.captcha())
			if err != nil {
				return err
			}
			tf, err := a.tokenFile()
			if err != nil {
				return err
			}
			if err := tf.Save(token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", username)
			return nil
		},
	}
	credentialFlags(cmd)
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, err := credentials(cmd)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Register(cmd.Context(), username, password, a.captcha()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s created, now run: surveyctl login\n", username)
			return nil
		},
	}
	credentialFlags(cmd)
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if c.Session.Authorized() {
				if err := c.Logout(cmd.Context()); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: server logout failed:", describe(err))
				}
			}
			tf, err := a.tokenFile()
			if err != nil {
				return err
			}
			return tf.Clear()
		},
	}
}
