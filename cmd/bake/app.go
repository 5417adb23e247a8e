// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bakebuild/bake/internal/config"
	"github.com/bakebuild/bake/internal/include"
	"github.com/bakebuild/bake/internal/runtime"
	"github.com/bakebuild/bake/pkg/bakefile"
)

type (
	// Loader produces a fully resolved Bakefile from a root rule file.
	Loader interface {
		Load(ctx context.Context, path string) (*bakefile.Bakefile, error)
	}

	// LoaderFactory builds a Loader for the effective configuration.
	LoaderFactory func(cfg *config.Config, logger *slog.Logger) Loader

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer; every Cobra command handler receives an App reference.
	App struct {
		Config    config.Provider
		NewLoader LoaderFactory
		Runtimes  *runtime.Registry
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config    config.Provider
		NewLoader LoaderFactory
		Runtimes  *runtime.Registry
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp creates an App from deps, filling in production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		NewLoader: deps.NewLoader,
		Runtimes:  deps.Runtimes,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewLoader == nil {
		app.NewLoader = defaultLoader
	}
	if app.Runtimes == nil {
		app.Runtimes = runtime.DefaultRegistry()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// defaultLoader resolves includes over HTTP with the configured timeout and user agent.
func defaultLoader(cfg *config.Config, logger *slog.Logger) Loader {
	return include.New(
		include.WithFetcher(include.NewHTTPFetcher(nil, cfg.Include.UserAgent)),
		include.WithTimeout(cfg.Include.Timeout),
		include.WithLogger(logger),
	)
}
