// Package cli provides helpers for running dealboard commands against a test app
package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/app"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/config"
	dealcli "github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/testutil"
)

// SetupCLITest creates an app backed by a temporary SQLite file with the
// default pipeline and the static enrichment provider
func SetupCLITest(t *testing.T) *app.App {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Backend = config.StorageSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "board.db")
	cfg.Daemon.Enabled = false
	cfg.Enrichment.Provider = "static"

	testApp, err := app.New(context.Background(), cfg,
		app.WithBoardOptions(board.WithClock(testutil.TestClock()), board.WithIDGenerator(testutil.SequentialIDs())))
	if err != nil {
		t.Fatalf("Failed to create test app: %v", err)
	}
	t.Cleanup(func() {
		_ = testApp.Close()
	})
	return testApp
}

// ExecuteCLICommand executes a CLI command with a test app instance and
// returns what it wrote to stdout
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	stdout, _, err := ExecuteCLICommandFull(t, context.Background(), testApp, cmd, args)
	return stdout, err
}

// ExecuteCLICommandFull executes a CLI command with a specific context and
// returns stdout and stderr separately
func ExecuteCLICommandFull(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) (string, string, error) {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(dealcli.WithApp(ctx, testApp))
	return stdout.String(), stderr.String(), err
}
