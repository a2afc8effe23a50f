// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ujar-cli/internal/config"
	"ujar-cli/internal/issue"
)

// newConfigCommand creates the `ujar config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ujar configuration",
		Long: `Manage ujar configuration.

Configuration is stored in:
  - Linux: ~/.config/ujar/config.cue
  - macOS: ~/Library/Application Support/ujar/config.cue
  - Windows: %APPDATA%\ujar\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Stdout(), "%s %s\n",
				SuccessStyle.Render("Wrote"),
				CoordStyle.Render(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Stdout(), filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.Stdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		renderIssue(app.Stderr(), issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CoordStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.Stdout(), TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.Stdout())

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if fileExistsCheck(cfgPath) {
			fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}

	fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Lock file"), valueStyle.Render(cfg.Uberjar.LockFilePath))
	fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Target path"), valueStyle.Render(orUnset(cfg.Uberjar.TargetPath)))
	fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Compile path"), valueStyle.Render(orUnset(cfg.Uberjar.CompilePath)))
	fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Main"), valueStyle.Render(orUnset(cfg.Uberjar.Main)))
	fmt.Fprintf(app.Stdout(), "%s: %s\n", keyStyle.Render("Color scheme"), valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(app.Stdout(), "%s: %v\n", keyStyle.Render("Verbose"), cfg.UI.Verbose)

	if len(cfg.Uberjar.Manifest) > 0 {
		fmt.Fprintln(app.Stdout(), keyStyle.Render("Manifest extras")+":")
		for name, val := range cfg.Uberjar.Manifest {
			fmt.Fprintf(app.Stdout(), "  %s: %v\n", name, val)
		}
	}

	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
