package plans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Add(ctx context.Context, plan Plan) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plansRepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO workout_plan (id, character_id, goal, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		plan.ID, plan.CharacterID, plan.Goal, plan.Content, plan.CreatedAt,
	)
	return err
}

func (r *Repo) Latest(ctx context.Context, characterID string) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plansRepo.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var plan Plan
	err = r.db.QueryRow(ctx,
		`SELECT id, character_id, goal, content, created_at FROM workout_plan
		WHERE character_id = $1 ORDER BY created_at DESC LIMIT 1`,
		characterID,
	).Scan(&plan.ID, &plan.CharacterID, &plan.Goal, &plan.Content, &plan.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPlan
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
