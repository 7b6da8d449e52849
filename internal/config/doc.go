// Package config loads Otter's runtime options.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/otter/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. OTTER_* environment variables override file values (OTTER_API_ADDR,
//     OTTER_LOG_LEVEL, ...)
//
// # Fields
//
//   - settings_backend: "toml" (default) or "sqlite"
//   - settings_path: settings file; empty uses the backend default
//   - log_level, log_file: zap level and JSON log destination
//   - theme: TUI theme name; empty follows the appearance setting
//   - api_addr: listen address for `otter serve` (127.0.0.1:8765)
//   - nats_url, nats_subject: optional notification publishing
//   - notify_dedupe: window in which a repeated update announcement is dropped
//
// Home Assistant URL and token are user settings and live in the settings
// store, not in this file.
package config
