// Command launchdash serves the SpaceX launch records dashboard and answers
// the same queries from the command line.
//
//	launchdash serve   --config config.yaml --data spacex_launch_dash.csv
//	launchdash sites
//	launchdash pie     --site "KSC LC-39A" --out pie.svg
//	launchdash scatter --site ALL --low 2000 --high 8000 --xlsx launches.xlsx
package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("launchdash failed", "err", err)
		os.Exit(1)
	}
}
