package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

var (
	workSynthesis string
	workInfos     []string
)

var workdraftCmd = &cobra.Command{
	Use:   "workdraft FILE...",
	Short: "Navigate and draft in one pass",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := readOptional(workSynthesis)
		if err != nil {
			return err
		}
		infos, err := fileInfos(args, workInfos)
		if err != nil {
			return err
		}

		svc := newService()
		res, err := svc.WorkDraft(cmd.Context(), pipeline.WorkDraftRequest{Paths: args, Infos: infos, Synthesis: synth})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.File, e.Message)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", svc.Store().Path(artifact.WorksFile))
		return nil
	},
}

func init() {
	workdraftCmd.Flags().StringVar(&workSynthesis, "synthesis", "", "file holding the project synthesis")
	workdraftCmd.Flags().StringArrayVar(&workInfos, "info", nil, "file description as NAME=TEXT (repeatable)")
	rootCmd.AddCommand(workdraftCmd)
}
