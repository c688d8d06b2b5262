// Package cli holds the shared plumbing of the dealboard commands: app
// construction, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/app"
	"github.com/thenoetrevino/dealboard/internal/config"
)

type contextKey string

const appKey contextKey = "dealboard.app"

// ConfigPath overrides the config file location when set (--config flag)
var ConfigPath string

// CLI represents the CLI application context
type CLI struct {
	App   *app.App // Application container with services
	owned bool     // App was created here and must be closed here
}

// WithApp returns a context carrying an existing app. Commands run with this
// context use it instead of opening their own (and leave it open).
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// NewCLI returns the app injected into ctx, or builds one from the config file
func NewCLI(ctx context.Context) (*CLI, error) {
	if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
		return &CLI{App: a}, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize board: %w", err)
	}
	return &CLI{App: application, owned: true}, nil
}

// FromCommand builds the CLI for a cobra command's context
func FromCommand(cmd *cobra.Command) (*CLI, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return NewCLI(ctx)
}

// Config returns the effective configuration
func (c *CLI) Config() *config.Config {
	return c.App.Config
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}

func loadConfig() (*config.Config, error) {
	if ConfigPath != "" {
		return config.LoadFile(ConfigPath)
	}
	return config.Load()
}
