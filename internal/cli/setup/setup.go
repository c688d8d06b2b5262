// Package setup implements the commands that create and inspect the config file
package setup

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/config"
	"gopkg.in/yaml.v3"
)

// SetupCmd returns the setup command
func SetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create or inspect the dealboard config",
		Long: `Configure the pipeline stages, storage backend, event daemon and enrichment provider.

The config lives at $XDG_CONFIG_HOME/dealboard/config.yaml (or ~/.config/dealboard/config.yaml)
unless --config is given.`,
	}

	cmd.AddCommand(InitCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(PathCmd())

	return cmd
}

// configPath returns the --config override or the default location
func configPath() (string, error) {
	if cli.ConfigPath != "" {
		return cli.ConfigPath, nil
	}
	return config.Path()
}

// InitCmd returns the setup init subcommand
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default config (six stage sales pipeline, SQLite storage, static enrichment).
An existing file is kept unless --force is given.

Examples:
  dealboard setup init
  dealboard setup init --storage=redis --redis-url=redis://localhost:6379/0
  dealboard setup init --provider=gemini --force
  dealboard setup init --stage-color=proposal=#A855F7
`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	cmd.Flags().String("storage", config.StorageSQLite, "Storage backend: sqlite or redis")
	cmd.Flags().String("redis-url", "", "Redis URL for the redis backend")
	cmd.Flags().String("provider", "static", "Enrichment provider: static, openai or gemini")
	cmd.Flags().String("theme", "default", "Color preset: default or monochrome")
	cmd.Flags().StringArray("stage-color", nil, "Column color as stage=#RRGGBB (repeatable)")
	cli.AddOutputFlags(cmd)

	return cmd
}

// initView is the result of setup init
type initView struct {
	Path string `json:"path"`
}

func (v initView) GetID() string { return v.Path }

func (v initView) String() string {
	return fmt.Sprintf("✓ Config written to %s", v.Path)
}

func runInit(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)

	path, err := configPath()
	if err != nil {
		return formatter.Fail(err, "")
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return formatter.Fail(&cli.ExitError{Code: cli.ExitValidation, Err: fmt.Errorf("config %s already exists", path)},
			"Use --force to overwrite it")
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(err, "")
	}

	cfg := config.Default()
	cfg.Storage.Backend, _ = cmd.Flags().GetString("storage")
	cfg.Storage.RedisURL, _ = cmd.Flags().GetString("redis-url")
	cfg.Enrichment.Provider, _ = cmd.Flags().GetString("provider")
	theme, _ := cmd.Flags().GetString("theme")
	cfg.ColorScheme = *config.ColorSchemeFor(theme)

	colors, _ := cmd.Flags().GetStringArray("stage-color")
	if err := applyStageColors(cfg, colors); err != nil {
		return formatter.Fail(&cli.ExitError{Code: cli.ExitValidation, Err: err}, "")
	}

	if err := cfg.Validate(); err != nil {
		return formatter.Fail(&cli.ExitError{Code: cli.ExitValidation, Err: err}, "")
	}
	if err := cfg.SaveFile(path); err != nil {
		return formatter.Fail(fmt.Errorf("failed to write config: %w", err), "")
	}
	return formatter.Success(initView{Path: path})
}

// applyStageColors sets the color of each stage named in stage=#RRGGBB pairs
func applyStageColors(cfg *config.Config, pairs []string) error {
	colors, err := cli.ParseFields(pairs)
	if err != nil {
		return err
	}
	for id, color := range colors {
		if err := cli.ValidateColorHex(color); err != nil {
			return fmt.Errorf("stage %s: %w", id, err)
		}
		found := false
		for i := range cfg.Pipeline.Stages {
			if cfg.Pipeline.Stages[i].ID == id {
				cfg.Pipeline.Stages[i].Color = color
				found = true
			}
		}
		if !found {
			return fmt.Errorf("unknown stage %q", id)
		}
	}
	return nil
}

// ShowCmd returns the setup show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Long:  "Print the config after defaults and environment overrides are applied. API keys are never printed.",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
	cli.AddOutputFlags(cmd)
	return cmd
}

// showView is the result of setup show
type showView struct {
	*config.Config
}

func (v showView) String() string {
	data, err := yaml.Marshal(v.Config)
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func runShow(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)

	var (
		cfg *config.Config
		err error
	)
	if cli.ConfigPath != "" {
		cfg, err = config.LoadFile(cli.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return formatter.Fail(&cli.ExitError{Code: cli.ExitDataErr, Err: err}, "Fix the file or recreate it with 'dealboard setup init --force'")
	}
	return formatter.Success(showView{Config: cfg})
}

// PathCmd returns the setup path subcommand
func PathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
