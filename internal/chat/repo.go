package chat

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

func (r *Repo) Add(ctx context.Context, msg Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chatRepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO chat_message (id, character_id, sender, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.CharacterID, msg.Sender, msg.Text, msg.CreatedAt,
	)
	return err
}

// Last returns the latest messages, oldest first.
func (r *Repo) Last(ctx context.Context, limit int) (_ []Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "chatRepo.last")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, character_id, sender, message, created_at FROM (
			SELECT id, character_id, sender, message, created_at
			FROM chat_message ORDER BY created_at DESC LIMIT $1
		) latest ORDER BY created_at ASC`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.CharacterID, &msg.Sender, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
