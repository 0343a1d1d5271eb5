package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/config"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	providerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "docdraft",
	Short: "Draft report prose from project documents",
	Long: "Extracts and chunks project documents, lets a language model pick the chunks worth drafting, " +
		"and writes report sections and analyses from them.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if providerFlag != "" {
			c.LLM.Provider = strings.ToLower(strings.TrimSpace(providerFlag))
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		l, err := config.NewLogger(cfg.Log)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "generation provider: xai or openai (default from config)")
}

func newService() *pipeline.Service {
	return pipeline.NewService(cfg, logger)
}

// readOptional returns the trimmed content of path, or "" when path is empty.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return strings.TrimSpace(string(data)), nil
}

// fileInfos aligns NAME=TEXT pairs with files by base name.
func fileInfos(files, pairs []string) ([]string, error) {
	byName := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, text, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, eris.Errorf("invalid --info %q (want NAME=TEXT)", p)
		}
		byName[strings.TrimSpace(name)] = strings.TrimSpace(text)
	}
	infos := make([]string, len(files))
	for i, f := range files {
		infos[i] = byName[baseName(f)]
	}
	return infos, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
