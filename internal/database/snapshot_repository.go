package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// SnapshotRepo stores the board as one row per deal plus a version row
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo wraps an initialized database
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load reads the stored snapshot. An empty database yields an empty snapshot
// at version 0. Columns are returned for every stage that holds deals, in the
// order the stages first appear; the board fills in the rest.
func (r *SnapshotRepo) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{Deals: []*models.Deal{}, Columns: []*models.Column{}}

	if err := r.db.QueryRowContext(ctx,
		`SELECT version FROM board_meta WHERE id = 1`,
	).Scan(&snap.Version); err != nil {
		return nil, fmt.Errorf("failed to read snapshot version: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, company, contact_name, value, stage, position, probability,
		        priority, due_date, favorite, tags, custom_fields, created_at, updated_at
		 FROM deals
		 ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	type placement struct {
		id       string
		position int
	}
	byStage := make(map[models.StageID][]placement)
	var stageOrder []models.StageID

	for rows.Next() {
		d, pos, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		snap.Deals = append(snap.Deals, d)

		if _, seen := byStage[d.Stage]; !seen {
			stageOrder = append(stageOrder, d.Stage)
		}
		byStage[d.Stage] = append(byStage[d.Stage], placement{id: d.ID, position: pos})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, stage := range stageOrder {
		placements := byStage[stage]
		ids := make([]string, len(placements))
		for _, p := range placements {
			if p.position < 0 || p.position >= len(ids) || ids[p.position] != "" {
				return nil, fmt.Errorf("%w: stage %s has a gap or clash at position %d",
					models.ErrInvariantViolation, stage, p.position)
			}
			ids[p.position] = p.id
		}
		snap.Columns = append(snap.Columns, &models.Column{Stage: stage, DealIDs: ids})
	}

	slog.Debug("snapshot loaded", "version", snap.Version, "deals", len(snap.Deals))
	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*models.Deal, int, error) {
	var (
		d                    models.Deal
		position             int
		stage, priority      string
		due                  sql.NullString
		tags, fields         string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&d.ID, &d.Title, &d.Company, &d.ContactName, &d.Value, &stage, &position, &d.Probability,
		&priority, &due, &d.Favorite, &tags, &fields, &createdAt, &updatedAt,
	); err != nil {
		return nil, 0, fmt.Errorf("failed to scan deal: %w", err)
	}
	d.Stage = models.StageID(stage)
	d.Priority = models.Priority(priority)

	var err error
	if d.DueDate, err = parseNullTime(due); err != nil {
		return nil, 0, err
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, 0, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, 0, err
	}
	if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
		return nil, 0, fmt.Errorf("deal %s: invalid tags: %w", d.ID, err)
	}
	if len(d.Tags) == 0 {
		d.Tags = nil
	}
	if err := json.Unmarshal([]byte(fields), &d.CustomFields); err != nil {
		return nil, 0, fmt.Errorf("deal %s: invalid custom fields: %w", d.ID, err)
	}
	if len(d.CustomFields) == 0 {
		d.CustomFields = nil
	}
	return &d, position, nil
}

// Save replaces the stored snapshot if the stored version equals expectedVersion
func (r *SnapshotRepo) Save(ctx context.Context, snap *models.Snapshot, expectedVersion int64) error {
	positions := make(map[string]int, len(snap.Deals))
	for _, col := range snap.Columns {
		for i, id := range col.DealIDs {
			positions[id] = i
		}
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Conditional update first so concurrent writers serialize on the meta row
		res, err := tx.ExecContext(ctx,
			`UPDATE board_meta SET version = ? WHERE id = 1 AND version = ?`,
			snap.Version, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update snapshot version: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("expected version %d: %w", expectedVersion, models.ErrVersionConflict)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deals`); err != nil {
			return fmt.Errorf("failed to clear deals: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO deals (id, seq, title, company, contact_name, value, stage, position,
			                    probability, priority, due_date, favorite, tags, custom_fields,
			                    created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for seq, d := range snap.Deals {
			pos, ok := positions[d.ID]
			if !ok {
				return fmt.Errorf("%w: deal %s is not in any column", models.ErrInvariantViolation, d.ID)
			}
			tags, err := encodeJSON(nonNilTags(d.Tags))
			if err != nil {
				return err
			}
			fields, err := encodeJSON(nonNilFields(d.CustomFields))
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				d.ID, seq, d.Title, d.Company, d.ContactName, d.Value, string(d.Stage), pos,
				d.Probability, string(d.Priority), formatNullTime(d.DueDate), d.Favorite, tags, fields,
				formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
			); err != nil {
				return fmt.Errorf("failed to insert deal %s: %w", d.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("snapshot saved", "version", snap.Version, "deals", len(snap.Deals))
	return nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilFields(fields map[string]string) map[string]string {
	if fields == nil {
		return map[string]string{}
	}
	return fields
}
