package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

var (
	navSynthesis string
	navInfos     []string
	navStrategy  string
)

var navigateCmd = &cobra.Command{
	Use:   "navigate FILE...",
	Short: "Select the chunks worth drafting",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := readOptional(navSynthesis)
		if err != nil {
			return err
		}
		infos, err := fileInfos(args, navInfos)
		if err != nil {
			return err
		}

		svc := newService()
		res, err := svc.Navigate(cmd.Context(), pipeline.NavigateRequest{
			Paths:     args,
			Infos:     infos,
			Synthesis: synth,
			Strategy:  navStrategy,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, artifact.FormatRefs(res.Selected))
		for _, tr := range res.Traces {
			fmt.Fprintf(out, "# %s: %d chunks, %d visited, stop=%s\n", tr.File, tr.Chunks, len(tr.Steps), tr.Stop)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.File, e.Message)
		}
		fmt.Fprintf(os.Stderr, "wrote %s and %s\n",
			svc.Store().Path(artifact.RefsFile), svc.Store().Path(artifact.TraceFile))
		return nil
	},
}

func init() {
	navigateCmd.Flags().StringVar(&navSynthesis, "synthesis", "", "file holding the project synthesis")
	navigateCmd.Flags().StringArrayVar(&navInfos, "info", nil, "file description as NAME=TEXT (repeatable)")
	navigateCmd.Flags().StringVar(&navStrategy, "strategy", pipeline.StrategyLLM, "navigation strategy: llm or linear")
	rootCmd.AddCommand(navigateCmd)
}
