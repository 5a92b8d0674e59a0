package results

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vnkhanh/survey-platform/api"
)

const barWidth = 20

// RenderText writes a plain-text table of the survey's results.
func RenderText(w io.Writer, s api.Survey) error {
	sum := Summarize(s)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", sum.Title)
	fmt.Fprintf(tw, "id %d\tcode %s\ttotal votes %d\n\n", sum.SurveyID, sum.AccessCode, sum.Total)
	for i, q := range sum.Questions {
		fmt.Fprintf(tw, "%d. %s\t\t(%d votes)\n", i+1, q.Text, q.Total)
		for _, c := range q.Choices {
			filled := c.Percent * barWidth / 100
			bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
			fmt.Fprintf(tw, "   %s\t%s\t%d votes (%d%%)\n", c.Text, bar, c.Votes, c.Percent)
		}
		fmt.Fprintln(tw)
	}
	if len(sum.Questions) == 0 {
		fmt.Fprintln(tw, "no questions")
	}
	return tw.Flush()
}
