package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/document"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

var (
	draftSynthesis string
	draftInfos     []string
	draftChunks    string
	draftAll       bool
	draftRefs      []string
)

var draftCmd = &cobra.Command{
	Use:   "draft FILE...",
	Short: "Draft prose for selected chunks",
	Long: "Drafts prose for --ref chunks, or for every chunk with --all, or else for the chunk list " +
		"written by navigate.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := readOptional(draftSynthesis)
		if err != nil {
			return err
		}
		infos, err := fileInfos(args, draftInfos)
		if err != nil {
			return err
		}

		svc := newService()
		req := pipeline.DraftRequest{Paths: args, Infos: infos, Synthesis: synth}
		for _, r := range draftRefs {
			ref, err := parseRefFlag(r)
			if err != nil {
				return err
			}
			req.Refs = append(req.Refs, ref)
		}
		if draftAll {
			for _, f := range args {
				req.All = append(req.All, baseName(f))
			}
		}
		if len(req.Refs) == 0 && len(req.All) == 0 {
			refs, err := readChunkList(svc, draftChunks)
			if err != nil {
				return err
			}
			req.Refs = refs
		}

		res, err := svc.Draft(cmd.Context(), req)
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

func parseRefFlag(s string) (document.Ref, error) {
	i := strings.LastIndexByte(s, ',')
	if i < 0 {
		return document.Ref{}, eris.Errorf("invalid --ref %q (want NAME,N)", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return document.Ref{}, eris.Errorf("invalid --ref %q (want NAME,N)", s)
	}
	return document.Ref{File: strings.TrimSpace(s[:i]), Position: n}, nil
}

// readChunkList loads refs from path, or from the output dir's chunk list
// when path is empty. Bad lines are logged and skipped.
func readChunkList(svc *pipeline.Service, path string) ([]document.Ref, error) {
	var (
		refs []document.Ref
		bad  []artifact.LineError
		err  error
	)
	if path == "" {
		refs, bad, err = svc.Store().ReadRefs()
	} else {
		refs, bad, err = artifact.ReadRefsFile(path)
	}
	if err != nil {
		return nil, err
	}
	for _, b := range bad {
		logger.Warn("skipping chunk list line",
			zap.Int("line", b.Line), zap.String("text", b.Text), zap.String("error", b.Err))
	}
	return refs, nil
}
