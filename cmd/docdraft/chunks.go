package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks FILE...",
	Short: "Extract and chunk files, printing the chunk table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch := newService().Load(args, nil)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tCHUNK\tWORDS\tLOW PRIORITY")
		for _, src := range batch.Sources {
			for _, c := range src.Chunks {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%t\n", src.Name, c.Position, c.Words, c.LowPriority)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, e := range batch.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.File, e.Message)
		}
		return nil
	},
}

func baseName(path string) string {
	return filepath.Base(path)
}

func init() {
	rootCmd.AddCommand(chunksCmd)
}
