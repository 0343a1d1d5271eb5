package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docdraft/internal/artifact"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize FILE.docx",
	Short: "Build a structured synthesis from a Word document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()

		svc := newService()
		out, err := svc.Synthesize(cmd.Context(), "", f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		fmt.Fprintf(os.Stderr, "wrote %s\n", svc.Store().Path(artifact.SynthesisFile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)
}
