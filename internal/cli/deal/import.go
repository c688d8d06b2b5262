package deal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/models"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by dealboard import
type SeedFile struct {
	Deals []SeedDeal `yaml:"deals"`
}

// SeedDeal is one deal of a seed file
type SeedDeal struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Company      string            `yaml:"company"`
	ContactName  string            `yaml:"contact_name"`
	Value        float64           `yaml:"value"`
	Stage        string            `yaml:"stage"`
	Probability  int               `yaml:"probability"`
	Priority     string            `yaml:"priority"`
	DueDate      string            `yaml:"due_date"`
	Favorite     bool              `yaml:"favorite"`
	Tags         []string          `yaml:"tags"`
	CustomFields map[string]string `yaml:"custom_fields"`
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import deals from a YAML seed file",
		Long: `Create every deal listed in a YAML file (use - for stdin). The board is saved once.
An invalid deal stops the import; deals before it are kept.

File format:
  deals:
    - title: Acme renewal
      company: Acme
      value: 12000
      stage: proposal
      priority: high
      due_date: 2026-06-30
      tags: [renewal]
      custom_fields:
        source: referral
`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runImport)),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

// importView is the result of import
type importView struct {
	Imported []*models.Deal `json:"imported"`
	Count    int            `json:"count"`
}

// GetIDs lists the imported deal ids for quiet output
func (v importView) GetIDs() []string {
	return listView{Deals: v.Imported}.GetIDs()
}

func (v importView) String() string {
	return fmt.Sprintf("✓ Imported %d deal(s)", v.Count)
}

func runImport(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	seed, err := readSeed(args.GetCmd(), args.Args[0])
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitDataErr, Err: err}
	}

	reqs, err := seed.Requests(c.App.Board.Stages())
	if err != nil {
		return nil, err
	}

	created, err := c.App.DealService.ImportDeals(ctx, reqs)
	if errors.Is(err, dealservice.ErrEmptyImport) {
		return nil, cli.Suggest(err, "The file needs a top-level 'deals:' list")
	}
	if err != nil {
		if len(created) > 0 {
			return nil, fmt.Errorf("imported %d deal(s) before failing: %w", len(created), err)
		}
		return nil, err
	}
	return importView{Imported: created, Count: len(created)}, nil
}

func readSeed(cmd *cobra.Command, path string) (*SeedFile, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return ParseSeed(r)
}

// ParseSeed decodes a seed file; unknown keys are rejected
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Requests converts the seed deals into create requests, resolving stages
// and priorities against the board
func (s *SeedFile) Requests(stages *board.StageSet) ([]dealservice.CreateDealRequest, error) {
	reqs := make([]dealservice.CreateDealRequest, 0, len(s.Deals))
	for i, d := range s.Deals {
		req := dealservice.CreateDealRequest{
			ID:           d.ID,
			Title:        d.Title,
			Company:      d.Company,
			ContactName:  d.ContactName,
			Value:        d.Value,
			Probability:  d.Probability,
			Favorite:     d.Favorite,
			Tags:         d.Tags,
			CustomFields: d.CustomFields,
		}

		if strings.TrimSpace(d.Stage) != "" {
			stage, err := cli.ParseStage(stages, d.Stage)
			if err != nil {
				return nil, cli.Suggest(fmt.Errorf("deal %d: %w", i+1, err), "Available stages: "+cli.StageList(stages))
			}
			req.Stage = stage
		}

		priority, err := cli.ParsePriority(d.Priority)
		if err != nil {
			return nil, fmt.Errorf("deal %d: %w", i+1, err)
		}
		req.Priority = priority

		due, err := cli.ParseDueDate(d.DueDate)
		if err != nil {
			return nil, &cli.ExitError{Code: cli.ExitValidation, Err: fmt.Errorf("deal %d: %w", i+1, err)}
		}
		req.DueDate = due

		reqs = append(reqs, req)
	}
	return reqs, nil
}
