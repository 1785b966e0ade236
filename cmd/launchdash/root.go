package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/dataset"
)

// rootOptions are the flags every subcommand shares.
type rootOptions struct {
	configPath string
	dataPath   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "launchdash",
		Short:         "SpaceX launch records dashboard",
		Long:          "Serve an interactive dashboard of launch outcomes by site and payload mass, or run its queries directly.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file (defaults apply if it does not exist)")
	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "launch records CSV; overrides dataset.path")

	cmd.AddCommand(
		newServeCmd(opts),
		newSitesCmd(opts),
		newPieCmd(opts),
		newScatterCmd(opts),
	)
	return cmd
}

// load resolves the config and loads the dataset it points at.
func (o *rootOptions) load() (*config.Config, *dataset.Dataset, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.dataPath != "" {
		cfg.Dataset.Path = o.dataPath
	}
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, ds, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
