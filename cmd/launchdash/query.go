package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/export"
	"github.com/launchdash/launchdash/internal/query"
)

type sitesOutput struct {
	Sites  []string    `json:"sites"`
	Bounds query.Range `json:"payload_bounds"`
	Count  int         `json:"record_count"`
}

func newSitesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and the payload range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ds, err := root.load()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sitesOutput{
				Sites:  ds.Sites(),
				Bounds: query.FullRange(ds),
				Count:  ds.Len(),
			})
		},
	}
}

func newPieCmd(root *rootOptions) *cobra.Command {
	var site, out string
	cmd := &cobra.Command{
		Use:   "pie",
		Short: "Count successful launches per site, or successes and failures for one site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ds, err := root.load()
			if err != nil {
				return err
			}
			agg := query.SuccessCounts(ds, site)
			if out != "" {
				if err := renderFile(out, chart.PieFigure(agg), cfg.UI); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), agg)
		},
	}
	cmd.Flags().StringVar(&site, "site", query.AllSites, "launch site, or ALL")
	cmd.Flags().StringVar(&out, "out", "", "also render the chart to this .svg or .png file")
	return cmd
}

type scatterOutput struct {
	Selector string        `json:"selector"`
	Range    query.Range   `json:"range"`
	Points   []query.Point `json:"points"`
}

func newScatterCmd(root *rootOptions) *cobra.Command {
	var (
		site      string
		low, high float64
		out, xlsx string
	)
	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "List launches within a payload range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ds, err := root.load()
			if err != nil {
				return err
			}
			rng := query.FullRange(ds)
			if cmd.Flags().Changed("low") {
				rng.Low = low
			}
			if cmd.Flags().Changed("high") {
				rng.High = high
			}

			points, err := query.PayloadOutcome(ds, site, rng)
			if err != nil {
				return err
			}
			if out != "" {
				if err := renderFile(out, chart.ScatterFigure(site, rng, points), cfg.UI); err != nil {
					return err
				}
			}
			if xlsx != "" {
				if err := writeXLSX(xlsx, export.Report{
					Selector: site,
					Range:    rng,
					Points:   points,
					Counts:   query.SuccessCounts(ds, site),
				}); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), scatterOutput{Selector: site, Range: rng, Points: points})
		},
	}
	cmd.Flags().StringVar(&site, "site", query.AllSites, "launch site, or ALL")
	cmd.Flags().Float64Var(&low, "low", 0, "lowest payload mass in kg (default: dataset minimum)")
	cmd.Flags().Float64Var(&high, "high", 0, "highest payload mass in kg (default: dataset maximum)")
	cmd.Flags().StringVar(&out, "out", "", "also render the chart to this .svg or .png file")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also export the rows to this .xlsx file")
	return cmd
}

// renderFile draws fig to path, picking the format from its extension.
func renderFile(path string, fig chart.Figure, ui config.UIConfig) error {
	format, err := chart.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := chart.Render(f, fig, format, ui.ChartWidth, ui.ChartHeight); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, rep export.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := export.WriteXLSX(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
