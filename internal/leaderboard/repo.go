package leaderboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

// Entry is a single leaderboard row.
type Entry struct {
	Rank       int    `json:"rank"`
	HunterName string `json:"hunterName"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Top returns the highest ranked hunters, ties broken by experience then name.
func (r *Repo) Top(ctx context.Context, limit int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "leaderboardRepo.top")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT hunter_name, level, experience FROM hunter_character
		ORDER BY level DESC, experience DESC, hunter_name ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry := Entry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.HunterName, &entry.Level, &entry.Experience); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
