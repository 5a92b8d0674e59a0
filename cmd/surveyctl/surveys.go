package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/survey-platform/builder"
	"github.com/vnkhanh/survey-platform/editor"
)

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid survey id %q", s)
	}
	return uint(id), nil
}

func (a *app) loadDraftFile(cmd *cobra.Command) (draftFile, error) {
	path, _ := cmd.Flags().GetString("file")
	switch path {
	case "":
		return draftFile{}, fmt.Errorf("--file is required")
	case "-":
		return readDraftFile(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return draftFile{}, err
	}
	defer f.Close()
	return readDraftFile(f)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your surveys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			surveys, err := c.ListSurveys(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tACTIVE\tQUESTIONS\tACCESS CODE")
			for _, s := range surveys {
				fmt.Fprintf(tw, "%d\t%s\t%t\t%d\t%s\n", s.ID, s.Title, s.IsActive, len(s.Questions), s.AccessCode)
			}
			return tw.Flush()
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a survey from a YAML draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.loadDraftFile(cmd)
			if err != nil {
				return err
			}
			d := builder.NewDraft()
			f.apply(d)

			c, err := a.client()
			if err != nil {
				return err
			}
			s, err := builder.Submit(cmd.Context(), c, d, a.captcha())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "survey %d created, access code %s\n", s.ID, s.AccessCode)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML draft, - for stdin")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Dump a survey as YAML, or save an edited YAML draft back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				s, err := c.GetSurvey(cmd.Context(), id)
				if err != nil {
					return err
				}
				return dumpDraftFile(cmd.OutOrStdout(), s)
			}

			f, err := a.loadDraftFile(cmd)
			if err != nil {
				return err
			}
			e, err := editor.Load(cmd.Context(), c, id)
			if err != nil {
				return err
			}
			f.applyEdit(e)
			if err := editor.Save(cmd.Context(), c, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "survey %d saved\n", id)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML draft, - for stdin")
	cmd.Flags().Bool("dump", false, "print the stored survey as a YAML draft")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a survey with its questions and votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.DeleteSurvey(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "survey %d deleted\n", id)
			return nil
		},
	}
}
