package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdraft/internal/composer"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

var (
	sectionID        string
	sectionContent   string
	sectionSynthesis string
	sectionSolution  string
	sectionCompany   string
	sectionExample   string
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Draft one report section (general, 1.1, 1.2, 1.3, 1.5, 1.6, 1.7)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in composer.Inputs
		for _, f := range []struct {
			path string
			dst  *string
		}{
			{sectionContent, &in.Content},
			{sectionSynthesis, &in.Synthesis},
			{sectionExample, &in.Example},
		} {
			text, err := readOptional(f.path)
			if err != nil {
				return err
			}
			*f.dst = text
		}
		in.SolutionName = sectionSolution
		in.CompanyName = sectionCompany

		out, err := newService().Section(cmd.Context(), pipeline.SectionRequest{
			Section: composer.Section(sectionID),
			Inputs:  in,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	f := sectionCmd.Flags()
	f.StringVar(&sectionID, "section", string(composer.General), "section identifier")
	f.StringVar(&sectionContent, "content", "", "file holding the material to draft from")
	f.StringVar(&sectionSynthesis, "synthesis", "", "file holding the solution synthesis (1.1, 1.7)")
	f.StringVar(&sectionSolution, "solution", "", "solution name (1.2, 1.3)")
	f.StringVar(&sectionCompany, "company", "", "company name (1.6)")
	f.StringVar(&sectionExample, "example", "", "file holding a style example (required for general)")
	rootCmd.AddCommand(sectionCmd)
}
