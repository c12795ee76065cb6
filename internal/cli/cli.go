// Package cli implements the cardcrop command-line interface.
//
// # Commands
//
//   - cover: scale and centre-crop images to the card frame without user input
//   - crop: run a headless edit session, optionally replaying a gesture script
//   - config: write or print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and also receives the library's own
// diagnostics.
//
// # Configuration
//
// --config names a JSON or TOML file. Without it the file at
// config.GetConfigPath is used when present, otherwise built-in defaults.
// Explicit flags always win over the file.
package cli
