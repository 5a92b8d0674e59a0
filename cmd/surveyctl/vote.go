package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/survey-platform/voting"
)

// parseAnswers reads "question=choice" pairs given as numeric ids.
func parseAnswers(pairs []string) (map[uint]uint, error) {
	out := make(map[uint]uint, len(pairs))
	for _, p := range pairs {
		q, c, ok := strings.Cut(p, "=")
		qid, qerr := strconv.ParseUint(q, 10, 64)
		cid, cerr := strconv.ParseUint(c, 10, 64)
		if !ok || qerr != nil || cerr != nil {
			return nil, fmt.Errorf("invalid answer %q, want QUESTION_ID=CHOICE_ID", p)
		}
		out[uint(qid)] = uint(cid)
	}
	return out, nil
}

// ask prompts for every question without a selection.
func ask(cmd *cobra.Command, s *voting.Session) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	for i, q := range s.Survey().Questions {
		if _, ok := s.Selected(q.ID); ok {
			continue
		}
		fmt.Fprintf(out, "%d. %s\n", i+1, q.QuestionText)
		for n, c := range q.Choices {
			fmt.Fprintf(out, "   [%d] %s\n", n+1, c.ChoiceText)
		}
		for {
			line, err := prompt(cmd, in, "   your choice: ")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(q.Choices) {
				fmt.Fprintf(out, "   pick a number from 1 to %d\n", len(q.Choices))
				continue
			}
			if err := s.Select(q.ID, q.Choices[n-1].ID); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (a *app) voteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote CODE",
		Short: "Answer a published survey by its access code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("answer")
			answers, err := parseAnswers(pairs)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			s, err := voting.Open(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", s.Survey().Title)

			for qid, cid := range answers {
				if err := s.Select(qid, cid); err != nil {
					return fmt.Errorf("answer %d=%d: %w", qid, cid, err)
				}
			}
			if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
				if err := ask(cmd, s); err != nil {
					return err
				}
			}

			err = s.Submit(cmd.Context(), a.captcha())
			if errors.Is(err, voting.ErrIncomplete) || len(s.Missing()) > 0 {
				return fmt.Errorf("unanswered questions: %v", s.Missing())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "thanks for voting")
			return nil
		},
	}
	cmd.Flags().StringArrayP("answer", "a", nil, "QUESTION_ID=CHOICE_ID, repeatable")
	cmd.Flags().BoolP("interactive", "i", true, "prompt for questions without --answer")
	return cmd
}
