// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/ujar/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/ujar/config.cue on macOS, %APPDATA%\ujar\config.cue
// on Windows). The package provides type-safe configuration access for assembly
// defaults (lock file, target path, compile path, entry point, manifest extras)
// and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
