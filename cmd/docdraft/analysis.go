package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdraft/internal/composer"
)

var (
	anSynthesis  string
	anSolution   string
	anCompany    string
	anWebsite    string
	anWebInfo    string
	anInnovation string
)

var innovationCmd = &cobra.Command{
	Use:   "innovation",
	Short: "Analyse how innovative a solution is",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := readOptional(anSynthesis)
		if err != nil {
			return err
		}
		out, err := newService().Innovation(cmd.Context(), "", composer.InnovationInputs{
			Synthesis:    synth,
			SolutionName: anSolution,
			CompanyName:  anCompany,
			WebsiteURL:   anWebsite,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Write a market study against four competitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in composer.MarketInputs
		for _, f := range []struct {
			path string
			dst  *string
		}{
			{anSynthesis, &in.Synthesis},
			{anWebInfo, &in.WebInfo},
			{anInnovation, &in.InnovationAnalysis},
		} {
			text, err := readOptional(f.path)
			if err != nil {
				return err
			}
			*f.dst = text
		}
		in.SolutionName = anSolution
		in.CompanyName = anCompany

		out, err := newService().Market(cmd.Context(), "", in)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{innovationCmd, marketCmd} {
		c.Flags().StringVar(&anSynthesis, "synthesis", "", "file holding the solution synthesis")
		c.Flags().StringVar(&anSolution, "solution", "", "solution name")
		c.Flags().StringVar(&anCompany, "company", "", "company name")
		rootCmd.AddCommand(c)
	}
	innovationCmd.Flags().StringVar(&anWebsite, "website", "", "company website to search")
	marketCmd.Flags().StringVar(&anWebInfo, "web-info", "", "file holding web information on the solution")
	marketCmd.Flags().StringVar(&anInnovation, "innovation", "", "file holding the innovation analysis")
}
