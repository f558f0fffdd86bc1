package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Strongholds/internal/match/entity"
	"Strongholds/internal/match/infra/persistence/model"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	match_id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	map_text TEXT NOT NULL,
	tick_rate INTEGER NOT NULL,
	rules BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS replay_entries (
	match_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	tick INTEGER NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	payload BLOB NOT NULL,
	err TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (match_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_replay_entries_tick ON replay_entries(match_id, tick);
`

type ReplayRepository struct {
	db *sqlx.DB
}

// NewReplayRepository 建表后返回仓库，建表语句可重复执行。
func NewReplayRepository(db *sqlx.DB) (*ReplayRepository, error) {
	if db == nil {
		return nil, errors.New("sqlite db is nil")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &ReplayRepository{db: db}, nil
}

func (r *ReplayRepository) SaveMatch(ctx context.Context, rec *entity.MatchRecord) error {
	if rec == nil {
		return nil
	}
	row, err := model.MatchToRow(rec)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `INSERT OR REPLACE INTO matches
		(match_id, seed, map_text, tick_rate, rules, created_at)
		VALUES (:match_id, :seed, :map_text, :tick_rate, :rules, :created_at)`, row)
	return err
}

func (r *ReplayRepository) AppendEntries(ctx context.Context, batch *entity.ReplayBatch) error {
	if batch == nil || len(batch.Entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT OR IGNORE INTO replay_entries
		(match_id, seq, tick, kind, name, payload, err)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range batch.Entries {
		row := model.EntryToRow(batch.MatchID, e)
		if _, err := stmt.ExecContext(ctx, row.MatchID, row.Seq, row.Tick, row.Kind, row.Name, row.Payload, row.Err); err != nil {
			return fmt.Errorf("insert entry %d: %w", e.Seq, err)
		}
	}
	return tx.Commit()
}

func (r *ReplayRepository) LoadMatch(ctx context.Context, matchID string) (*entity.MatchRecord, error) {
	var row model.MatchRow
	err := r.db.GetContext(ctx, &row, `SELECT match_id, seed, map_text, tick_rate, rules, created_at
		FROM matches WHERE match_id = ?`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrMatchNotFound.WithData("match_id", matchID)
	}
	if err != nil {
		return nil, err
	}
	return model.RowToMatch(row)
}

func (r *ReplayRepository) LoadEntries(ctx context.Context, matchID string) ([]entity.ReplayEntry, error) {
	var rows []model.EntryRow
	err := r.db.SelectContext(ctx, &rows, `SELECT match_id, seq, tick, kind, name, payload, err
		FROM replay_entries WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.ReplayEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.RowToEntry(row))
	}
	return out, nil
}
