package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cnc_sender/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const sqliteTimeFormat = "2006-01-02 15:04:05"

const insertEventSQL = `
		INSERT INTO machine_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.MachineEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	// marshal metadata if present
	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format(sqliteTimeFormat),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)

	return err
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.MachineEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeFormat))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeFormat))
	}
	if typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, strings.ToUpper(strings.TrimSpace(typ)))
	}

	query := `SELECT id, occurred_at, type, message, meta FROM machine_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MachineEvent
	for rows.Next() {
		var (
			e       models.MachineEvent
			rawTime string
			meta    sql.NullString
		)
		if err := rows.Scan(&e.EventID, &rawTime, &e.Type, &e.Description, &meta); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(sqliteTimeFormat, rawTime); perr == nil {
			e.OccurredAt = ts.UTC()
		}
		if meta.Valid && meta.String != "" {
			var decoded any
			if jerr := json.Unmarshal([]byte(meta.String), &decoded); jerr == nil {
				e.Metadata = decoded
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
