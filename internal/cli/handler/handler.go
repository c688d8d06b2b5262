// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thenoetrevino/dealboard/internal/cli"
)

// Handler defines the interface for command execution
type Handler interface {
	// Execute runs the command with parsed arguments
	Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error) {
	return f(ctx, c, args)
}

// Arguments captures parsed CLI arguments and flags
type Arguments struct {
	Flags     map[string]any // only flags set explicitly on the command line
	Args      []string
	Formatter *cli.OutputFormatter
	cmd       *cobra.Command
}

// GetCmd returns the cobra command for access to flag parsing utilities
func (a *Arguments) GetCmd() *cobra.Command {
	return a.cmd
}

// Has reports whether a flag was set explicitly
func (a *Arguments) Has(name string) bool {
	_, ok := a.Flags[name]
	return ok
}

// Command wraps common command execution logic: it builds the formatter and the
// CLI, runs the handler and reports its error with the matching exit code.
// Returns a cobra RunE compatible function.
func Command(handler Handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		formatter := cli.NewFormatter(cmd)

		cliInstance, err := cli.FromCommand(cmd)
		if err != nil {
			return formatter.Fail(err, "Check the config file with 'dealboard setup show'")
		}
		defer func() {
			if err := cliInstance.Close(); err != nil {
				slog.Error("error closing CLI", "error", err)
			}
		}()

		arguments := &Arguments{
			Flags:     parseFlagsToMap(cmd),
			Args:      args,
			Formatter: formatter,
			cmd:       cmd,
		}

		result, err := handler.Execute(ctx, cliInstance, arguments)
		if err != nil {
			return formatter.Fail(err, "")
		}
		if result == nil {
			return nil
		}

		// Common output formatting
		return formatter.Success(result)
	}
}

// flagGetters reads a typed flag value by its pflag type name
var flagGetters = map[string]func(*pflag.FlagSet, string) (any, error){
	"string":      func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetString(n) },
	"int":         func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetInt(n) },
	"bool":        func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetBool(n) },
	"float64":     func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetFloat64(n) },
	"stringSlice": func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetStringSlice(n) },
	"stringArray": func(fs *pflag.FlagSet, n string) (any, error) { return fs.GetStringArray(n) },
}

// parseFlagsToMap collects the explicitly set flags of cmd, keyed by name
func parseFlagsToMap(cmd *cobra.Command) map[string]any {
	fs := cmd.Flags()
	flags := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		get, ok := flagGetters[f.Value.Type()]
		if !ok {
			slog.Debug("unsupported flag type", "flag", f.Name, "type", f.Value.Type())
			return
		}
		if v, err := get(fs, f.Name); err == nil {
			flags[f.Name] = v
		}
	})
	return flags
}

// GetString retrieves a string flag with default
func (a *Arguments) GetString(name string, defaultVal string) string {
	if val, ok := a.Flags[name].(string); ok {
		return val
	}
	return defaultVal
}

// GetInt retrieves an int flag with default
func (a *Arguments) GetInt(name string, defaultVal int) int {
	if val, ok := a.Flags[name].(int); ok {
		return val
	}
	return defaultVal
}

// GetFloat retrieves a float64 flag with default
func (a *Arguments) GetFloat(name string, defaultVal float64) float64 {
	if val, ok := a.Flags[name].(float64); ok {
		return val
	}
	return defaultVal
}

// GetBool retrieves a bool flag
func (a *Arguments) GetBool(name string) bool {
	val, _ := a.Flags[name].(bool)
	return val
}

// GetStringSlice retrieves a string slice flag with default
func (a *Arguments) GetStringSlice(name string, defaultVal []string) []string {
	if val, ok := a.Flags[name].([]string); ok {
		return val
	}
	return defaultVal
}
