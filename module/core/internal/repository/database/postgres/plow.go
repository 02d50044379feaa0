package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/nandanugg/plowtrack/module/core/domain"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/database"
)

var _ database.PlowRepository = (*PlowRepo)(nil)

const (
	selectPlowsSQL = `SELECT id, last_timestamp, last_coords, last_events FROM plows`

	// rn counts back from the newest point; $2 = 0 means no limit.
	selectHistorySQL = `SELECT plow_id, timestamp, coords, events FROM (
		SELECT plow_id, timestamp, coords, events, id,
			ROW_NUMBER() OVER (PARTITION BY plow_id ORDER BY timestamp DESC, id DESC) AS rn
		FROM plow_points WHERE plow_id = ANY($1)
	) p WHERE $2 = 0 OR rn <= $2 ORDER BY plow_id, timestamp ASC, id ASC`

	upsertPlowSQL = `INSERT INTO plows (id, last_timestamp, last_coords, last_events) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			last_timestamp = EXCLUDED.last_timestamp,
			last_coords = EXCLUDED.last_coords,
			last_events = EXCLUDED.last_events
		WHERE plows.last_timestamp <= EXCLUDED.last_timestamp`

	// NULL bounds disable the cutoff and the cap.
	listPlowsSQL = selectPlowsSQL + ` WHERE ($1::timestamptz IS NULL OR last_timestamp >= $1)
		ORDER BY last_timestamp DESC, id ASC LIMIT $2`

	insertPointSQL = `INSERT INTO plow_points (plow_id, timestamp, coords, events) VALUES ($1, $2, $3, $4)`
)

type PlowRepo struct {
	db *sql.DB
}

func NewPlowRepo(db *sql.DB) *PlowRepo {
	return &PlowRepo{db: db}
}

func (r *PlowRepo) GetPlow(ctx context.Context, id string, scope domain.HistoryScope) (*domain.Plow, error) {
	row := r.db.QueryRowContext(ctx, selectPlowsSQL+` WHERE id = $1`, id)

	p, err := scanPlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, unavailable("get plow", err)
	}

	if scope.Omit {
		return &p, nil
	}
	history, err := r.history(ctx, []string{id}, scope.Last)
	if err != nil {
		return nil, err
	}
	p.History = history[id]
	return &p, nil
}

func (r *PlowRepo) ListPlowsByRecency(ctx context.Context, fleet domain.FleetScope, scope domain.HistoryScope) ([]domain.Plow, error) {
	var since, limit any
	if fleet.HasSince {
		since = fleet.Since
	} else if fleet.Limit > 0 {
		limit = fleet.Limit
	}

	rows, err := r.db.QueryContext(ctx, listPlowsSQL, since, limit)
	if err != nil {
		return nil, unavailable("list plows", err)
	}
	defer func() { _ = rows.Close() }()

	results := []domain.Plow{}
	for rows.Next() {
		p, err := scanPlow(rows)
		if err != nil {
			return nil, unavailable("scan plow", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list plows", err)
	}

	if scope.Omit || len(results) == 0 {
		return results, nil
	}

	ids := make([]string, len(results))
	for i, p := range results {
		ids[i] = p.ID
	}
	history, err := r.history(ctx, ids, scope.Last)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].History = history[results[i].ID]
	}
	return results, nil
}

// history loads points for the given plows, oldest first, keeping only the
// newest last points per plow when last > 0.
func (r *PlowRepo) history(ctx context.Context, ids []string, last int) (map[string][]domain.Point, error) {
	if last < 0 {
		last = 0
	}
	rows, err := r.db.QueryContext(ctx, selectHistorySQL, pq.Array(ids), last)
	if err != nil {
		return nil, unavailable("load history", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]domain.Point, len(ids))
	for rows.Next() {
		var (
			plowID         string
			p              domain.Point
			coords, events []byte
		)
		if err := rows.Scan(&plowID, &p.Timestamp, &coords, &events); err != nil {
			return nil, unavailable("scan point", err)
		}
		p.Coords = rawJSON(coords)
		p.Events = rawJSON(events)
		out[plowID] = append(out[plowID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("load history", err)
	}
	return out, nil
}

func (r *PlowRepo) AppendPoint(ctx context.Context, plowID string, p domain.Point) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin append", err)
	}
	defer func() { _ = tx.Rollback() }()

	coords, events := jsonArg(p.Coords), jsonArg(p.Events)
	if _, err := tx.ExecContext(ctx, upsertPlowSQL, plowID, p.Timestamp, coords, events); err != nil {
		return unavailable("upsert plow", err)
	}
	if _, err := tx.ExecContext(ctx, insertPointSQL, plowID, p.Timestamp, coords, events); err != nil {
		return unavailable("insert point", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit append", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlow(s scanner) (domain.Plow, error) {
	var (
		p              domain.Plow
		coords, events []byte
	)
	if err := s.Scan(&p.ID, &p.LastPoint.Timestamp, &coords, &events); err != nil {
		return domain.Plow{}, err
	}
	p.LastPoint.Coords = rawJSON(coords)
	p.LastPoint.Events = rawJSON(events)
	return p, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

// jsonArg passes JSON as text; lib/pq would encode []byte as bytea.
func jsonArg(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
