package gates

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) AddRun(ctx context.Context, run Run) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gatesRepo.addRun")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO gate_run (id, character_id, gate_id, duration_minutes, cleared_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.CharacterID, run.GateID, run.DurationMinutes, run.ClearedAt,
	)
	return err
}

// Runs returns all gate runs of a hunter, newest first.
func (r *Repo) Runs(ctx context.Context, characterID string) (_ []Run, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gatesRepo.runs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, character_id, gate_id, duration_minutes, cleared_at
		FROM gate_run WHERE character_id = $1 ORDER BY cleared_at DESC`,
		characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CharacterID, &run.GateID, &run.DurationMinutes, &run.ClearedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ClearCounts returns, per gate id, how many times the hunter cleared it.
func (r *Repo) ClearCounts(ctx context.Context, characterID string) (_ map[string]int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gatesRepo.clearCounts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT gate_id, count(*) FROM gate_run WHERE character_id = $1 GROUP BY gate_id`,
		characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			gateID string
			count  int
		)
		if err := rows.Scan(&gateID, &count); err != nil {
			return nil, err
		}
		counts[gateID] = count
	}
	return counts, rows.Err()
}
