// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"ujar-cli/internal/config"
	"ujar-cli/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: Cobra command handlers receive an App reference
	// and delegate configuration access and output through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests can
	// supply mock implementations to isolate specific behavior.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// Stdout returns the writer for regular command output.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// Stderr returns the writer for diagnostics.
func (a *App) Stderr() io.Writer {
	return a.stderr
}

// loadConfig loads configuration honoring the global --config flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}

// renderIssue prints the remediation card for a known issue to w. Rendering
// problems are swallowed: the caller still returns the underlying error.
func renderIssue(w io.Writer, id issue.Id) {
	i := issue.Get(id)
	if i == nil {
		return
	}
	if out, err := i.Render("dark"); err == nil {
		fmt.Fprint(w, out)
	}
}
