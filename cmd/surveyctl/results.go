package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/survey-platform/results"
)

func (a *app) resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results ID",
		Short: "Show the results of one of your surveys",
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
			s, err := c.GetSurvey(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := results.RenderText(cmd.OutOrStdout(), s); err != nil {
				return err
			}

			pdfPath, _ := cmd.Flags().GetString("pdf")
			xlsxPath, _ := cmd.Flags().GetString("xlsx")
			server, _ := cmd.Flags().GetBool("server")
			if pdfPath != "" {
				if err := writeFile(pdfPath, func(f *os.File) error {
					if server {
						return c.DownloadReport(cmd.Context(), id, f)
					}
					return results.RenderPDF(f, s)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "PDF report written to %s\n", pdfPath)
			}
			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(f *os.File) error {
					if server {
						return c.DownloadExport(cmd.Context(), id, f)
					}
					return results.RenderXLSX(f, s)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "spreadsheet written to %s\n", xlsxPath)
			}
			return nil
		},
	}
	cmd.Flags().String("pdf", "", "also write a PDF report to this path")
	cmd.Flags().String("xlsx", "", "also write a spreadsheet to this path")
	cmd.Flags().Bool("server", false, "download the files rendered by the server instead of rendering locally")
	return cmd
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
