// Package repo is the sqlite store behind the persistence gateway.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"goalboard/internal/events"
	"goalboard/internal/gateway"
)

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

var ErrNotFound = errors.New("not found")

var _ gateway.Sink = Repo{}

func (r Repo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r Repo) events() events.Writer {
	return events.Writer{Now: r.Now}
}

// InsertReviewMetadata stores one review_form_metadata row with its event.
func (r Repo) InsertReviewMetadata(ctx context.Context, rec gateway.ReviewRecord) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO review_form_metadata(initiative_id,iscm_level,functional_level,department_level,created_at) VALUES (?,?,?,?,?)`,
			rec.InitiativeID, nullable(rec.ISCMLevel), nullable(rec.FunctionalLevel), nullable(rec.DepartmentLevel), r.now().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert review metadata: %w", err)
		}
		return r.events().Append(ctx, tx, events.TypeReviewMetadataInserted, gateway.TableReviewMetadata, rec.InitiativeID, events.EventPayload{
			"iscm_level":       rec.ISCMLevel,
			"functional_level": rec.FunctionalLevel,
			"department_level": rec.DepartmentLevel,
		})
	})
}

// InsertGoal stores one goals row with its event.
func (r Repo) InsertGoal(ctx context.Context, g gateway.GoalRecord) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO goals(initiative_id,goal_year,status_update,driver,department,created_at) VALUES (?,?,?,?,?,?)`,
			g.InitiativeID, nullable(g.GoalYear), nullable(g.StatusUpdate), nullable(g.Driver), nullable(g.Department), r.now().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return r.events().Append(ctx, tx, events.TypeGoalInserted, gateway.TableGoals, g.InitiativeID, events.EventPayload{
			"goal_year":     g.GoalYear,
			"status_update": g.StatusUpdate,
			"driver":        g.Driver,
			"department":    g.Department,
		})
	})
}

func (r Repo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ListGoals returns goal rows, all of them when initiativeID is empty.
func (r Repo) ListGoals(ctx context.Context, initiativeID string) ([]gateway.GoalRecord, error) {
	query := `SELECT initiative_id,COALESCE(goal_year,''),COALESCE(status_update,''),COALESCE(driver,''),COALESCE(department,'') FROM goals`
	var args []any
	if initiativeID != "" {
		query += ` WHERE initiative_id=?`
		args = append(args, initiativeID)
	}
	rows, err := r.DB.QueryContext(ctx, query+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []gateway.GoalRecord
	for rows.Next() {
		var g gateway.GoalRecord
		if err := rows.Scan(&g.InitiativeID, &g.GoalYear, &g.StatusUpdate, &g.Driver, &g.Department); err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

// GetReviewMetadata returns the first review row stored for id.
func (r Repo) GetReviewMetadata(ctx context.Context, id string) (gateway.ReviewRecord, error) {
	var rec gateway.ReviewRecord
	err := r.DB.QueryRowContext(ctx, `SELECT initiative_id,COALESCE(iscm_level,''),COALESCE(functional_level,''),COALESCE(department_level,'') FROM review_form_metadata WHERE initiative_id=? ORDER BY id ASC LIMIT 1`, id).
		Scan(&rec.InitiativeID, &rec.ISCMLevel, &rec.FunctionalLevel, &rec.DepartmentLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	return rec, err
}

// LatestEvents returns the newest events first. Empty filters match everything.
func (r Repo) LatestEvents(ctx context.Context, limit int, evtType, entityID string) ([]events.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	clauses := []string{"1=1"}
	var args []any
	if evtType != "" {
		clauses = append(clauses, "type=?")
		args = append(args, evtType)
	}
	if entityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, entityID)
	}
	where := "WHERE " + strings.Join(clauses, " AND ")
	query := fmt.Sprintf(`SELECT id,ts,type,entity_kind,COALESCE(entity_id,''),payload_json FROM events %s ORDER BY id DESC LIMIT ?`, where)
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []events.Event
	for rows.Next() {
		var e events.Event
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			e.Payload = payload.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
