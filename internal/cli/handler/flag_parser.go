package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ErrDealIDRequired is returned when neither a positional id nor --id was given
var ErrDealIDRequired = errors.New("deal id is required")

// FlagParser extracts the deal, stage and date arguments shared by commands
type FlagParser struct {
	cmd *cobra.Command
}

// NewFlagParser creates a new flag parser
func NewFlagParser(cmd *cobra.Command) *FlagParser {
	return &FlagParser{cmd: cmd}
}

// ParseDealID takes the deal id from the first positional argument or the --id flag
func (p *FlagParser) ParseDealID(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if p.cmd.Flags().Lookup("id") != nil {
		id, err := p.cmd.Flags().GetString("id")
		if err != nil {
			return "", fmt.Errorf("failed to parse id flag: %w", err)
		}
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", ErrDealIDRequired
}

// ParseDealIDs trims the positional ids and drops repeats, keeping first-seen order.
// A blank id is an error.
func (p *FlagParser) ParseDealIDs(args []string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	ids := make([]string, 0, len(args))
	for i, arg := range args {
		id := strings.TrimSpace(arg)
		if id == "" {
			return nil, fmt.Errorf("deal id %d is blank", i+1)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseStage resolves a stage flag by id or title.
// An unknown stage carries the list of configured stages as its suggestion.
func (p *FlagParser) ParseStage(stages *board.StageSet, flagName string) (models.StageID, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s flag: %w", flagName, err)
	}
	stage, err := cli.ParseStage(stages, value)
	if err != nil {
		return "", cli.Suggest(err, "Available stages: "+cli.StageList(stages))
	}
	return stage, nil
}

// ParseDueDate reads a YYYY-MM-DD flag; an empty value yields nil
func (p *FlagParser) ParseDueDate(flagName string) (*time.Time, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s flag: %w", flagName, err)
	}
	due, err := cli.ParseDueDate(value)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitValidation, Err: err}
	}
	return due, nil
}
