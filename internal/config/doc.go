// Package config loads the dashboard configuration from config.yaml.
//
// Config fields:
//   - Server.HTTPPort: port for the page, REST API and WebSocket callbacks (default 8050)
//   - Server.GRPCPort: port for the gRPC health service (default 50052; 0 disables it)
//   - Server.Auth.Mode: "apikey" or "none"
//   - Server.Auth.KeyEnv / Header: environment variable holding the key, header it is read from
//   - Server.Compress: brotli-compress API and chart responses for clients that accept it
//   - Dataset.Path: launch records CSV (default spacex_launch_dash.csv)
//   - UI.Title, UI.SliderStep, UI.ChartWidth, UI.ChartHeight, UI.PrettyHTML
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file with fsnotify whenever it is written.
package config
