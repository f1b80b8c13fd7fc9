package character

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

// changeChannelPrefix + character id is the redis pub/sub channel carrying
// the full character JSON after every write.
const changeChannelPrefix = "hunterhub::character-changed::"

// Fields is a partial update: json field name -> new value. Only fields
// listed in fieldColumns can be written this way.
type Fields map[string]any

var fieldColumns = map[string]string{
	"hunterName":            "hunter_name",
	"level":                 "level",
	"experience":            "experience",
	"experienceToNextLevel": "experience_to_next_level",
	"statPoints":            "stat_points",
	"hitPoints":             "hit_points",
	"maxHitPoints":          "max_hit_points",
	"strength":              "strength",
	"vitality":              "vitality",
	"agility":               "agility",
}

type Repo struct {
	db  *pgxpool.Pool
	rdb *redis.Client
}

func NewRepo(db *pgxpool.Pool, rdb *redis.Client) *Repo {
	return &Repo{
		db:  db,
		rdb: rdb,
	}
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Character, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var (
		c                 Character
		equippedShadowsJn []byte
		questsJson        []byte
	)
	err = r.db.QueryRow(ctx,
		`SELECT
			id, hunter_name, level, experience, experience_to_next_level,
			stat_points, hit_points, max_hit_points,
			strength, vitality, agility,
			equipped_shadows, quests, created_at, updated_at
		FROM hunter_character WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.HunterName, &c.Level, &c.Experience, &c.ExperienceToNextLevel,
		&c.StatPoints, &c.HitPoints, &c.MaxHitPoints,
		&c.Strength, &c.Vitality, &c.Agility,
		&equippedShadowsJn, &questsJson, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(equippedShadowsJn, &c.EquippedShadows); err != nil {
		return nil, fmt.Errorf("unmarshal equipped shadows: %w", err)
	}
	if err = json.Unmarshal(questsJson, &c.Quests); err != nil {
		return nil, fmt.Errorf("unmarshal quests: %w", err)
	}

	return &c, nil
}

func (r *Repo) Create(ctx context.Context, c *Character) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	equippedShadowsJn, err := json.Marshal(c.EquippedShadows)
	if err != nil {
		return err
	}
	questsJson, err := json.Marshal(c.Quests)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO hunter_character (
			id, hunter_name, level, experience, experience_to_next_level,
			stat_points, hit_points, max_hit_points,
			strength, vitality, agility,
			equipped_shadows, quests, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.HunterName, c.Level, c.Experience, c.ExperienceToNextLevel,
		c.StatPoints, c.HitPoints, c.MaxHitPoints,
		c.Strength, c.Vitality, c.Agility,
		equippedShadowsJn, questsJson, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM hunter_character WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// UpdateFields writes only the given fields, leaving the rest of the row
// untouched. Unknown field names are rejected before touching the database.
func (r *Repo) UpdateFields(ctx context.Context, id string, fields Fields) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.updateFields")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)
	for field, value := range fields {
		column, ok := fieldColumns[field]
		if !ok {
			return fmt.Errorf("unknown character field %q", field)
		}
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setClauses = append(setClauses, "updated_at = now()")

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf("UPDATE hunter_character SET %s WHERE id = $1", strings.Join(setClauses, ", ")),
		args...,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	r.publishChange(ctx, id)
	return nil
}

// SetQuest upserts a single quest entry inside the quests jsonb column.
func (r *Repo) SetQuest(ctx context.Context, id, questID string, state QuestState) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.setQuest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stateJson, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE hunter_character
		SET quests = jsonb_set(quests, $2, $3, true), updated_at = now()
		WHERE id = $1`,
		id, []string{questID}, stateJson,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	r.publishChange(ctx, id)
	return nil
}

// CompleteQuest stores the completed quest state and grants its bonus stat
// points in a single statement, so the two never diverge.
func (r *Repo) CompleteQuest(ctx context.Context, id, questID string, state QuestState, bonusStatPoints int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.completeQuest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stateJson, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE hunter_character
		SET quests = jsonb_set(quests, $2, $3, true),
			stat_points = stat_points + $4,
			updated_at = now()
		WHERE id = $1`,
		id, []string{questID}, stateJson, bonusStatPoints,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	r.publishChange(ctx, id)
	return nil
}

func (r *Repo) SetEquippedShadows(ctx context.Context, id string, shadows []string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "characterRepo.setEquippedShadows")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	shadowsJson, err := json.Marshal(shadows)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE hunter_character SET equipped_shadows = $2, updated_at = now() WHERE id = $1`,
		id, shadowsJson,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	r.publishChange(ctx, id)
	return nil
}

// publishChange pushes the fresh character row to the change channel.
// Best effort, a failed publish never fails the write that caused it.
func (r *Repo) publishChange(ctx context.Context, id string) {
	c, err := r.Get(ctx, id)
	if err != nil {
		log.Errorf("publish character change, get %s: %s", id, err)
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		log.Errorf("publish character change, marshal %s: %s", id, err)
		return
	}
	if err := r.rdb.Publish(ctx, changeChannelPrefix+id, payload).Err(); err != nil {
		log.Errorf("publish character change %s: %s", id, err)
	}
}

// Subscribe streams fresh character snapshots published after each write.
// The returned stop func must be called to release the redis subscription.
func (r *Repo) Subscribe(ctx context.Context, id string) (<-chan Character, func(), error) {
	pubsub := r.rdb.Subscribe(ctx, changeChannelPrefix+id)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	updates := make(chan Character)
	go func() {
		defer close(updates)
		for msg := range pubsub.Channel() {
			var c Character
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				log.Errorf("character change stream %s: unmarshal: %s", id, err)
				continue
			}
			select {
			case updates <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		if err := pubsub.Close(); err != nil {
			log.Errorf("character change stream %s: close: %s", id, err)
		}
	}
	return updates, stop, nil
}
