package wearables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/arisefit/hunterhub/internal/progression"
	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

const (
	connectionsKeyPrefix = "hunterhub-wearables||"
	trackingKeyPrefix    = "hunterhub-wearable-track||"

	trackingSessionTTL = 24 * time.Hour

	// experience per tracked workout minute, capped so a forgotten
	// session does not pay out a day of experience
	experiencePerMinute = 2
	maxRewardedMinutes  = 180
)

var (
	ErrUnknownPlatform  = errors.New("unknown wearable platform")
	ErrNotConnected     = errors.New("wearable platform not connected")
	ErrTrackingActive   = errors.New("tracking session already active")
	ErrNoActiveTracking = errors.New("no active tracking session")
)

var knownPlatforms = map[string]bool{
	"fitbit":         true,
	"garmin":         true,
	"apple_health":   true,
	"google_fit":     true,
	"samsung_health": true,
}

// Connection is a linked wearable platform.
type Connection struct {
	Platform    string    `json:"platform"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// TrackingSession is an ongoing wearable-tracked workout.
type TrackingSession struct {
	Platform  string    `json:"platform"`
	StartedAt time.Time `json:"startedAt"`
}

// TrackingOutcome is what finishing a tracked workout produced.
type TrackingOutcome struct {
	Platform          string              `json:"platform"`
	DurationMinutes   int                 `json:"durationMinutes"`
	GainedExperience  int                 `json:"gainedExperience"`
	ProgressionResult *progression.Result `json:"rewards,omitempty"`
}

type expGranter interface {
	GrantExperience(ctx context.Context, id string, amount int) (*progression.Result, error)
}

// Service keeps wearable connections and tracking sessions in redis.
// Finished sessions convert tracked minutes into experience.
type Service struct {
	rdb     *redis.Client
	hunters expGranter
	now     func() time.Time
}

func NewService(rdb *redis.Client, hunters expGranter) *Service {
	return &Service{
		rdb:     rdb,
		hunters: hunters,
		now:     time.Now,
	}
}

func (s *Service) Connect(ctx context.Context, characterID, platform string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wearables.connect")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !knownPlatforms[platform] {
		return ErrUnknownPlatform
	}
	return s.rdb.HSet(ctx,
		connectionsKeyPrefix+characterID,
		platform, s.now().Format(time.RFC3339),
	).Err()
}

func (s *Service) Disconnect(ctx context.Context, characterID, platform string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wearables.disconnect")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !knownPlatforms[platform] {
		return ErrUnknownPlatform
	}
	removed, err := s.rdb.HDel(ctx, connectionsKeyPrefix+characterID, platform).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotConnected
	}
	return nil
}

func (s *Service) Connections(ctx context.Context, characterID string) (_ []Connection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wearables.connections")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entries, err := s.rdb.HGetAll(ctx, connectionsKeyPrefix+characterID).Result()
	if err != nil {
		return nil, err
	}

	connections := make([]Connection, 0, len(entries))
	for platform, connectedAt := range entries {
		connection := Connection{Platform: platform}
		if parsed, err := time.Parse(time.RFC3339, connectedAt); err == nil {
			connection.ConnectedAt = parsed
		}
		connections = append(connections, connection)
	}
	return connections, nil
}

// StartTracking opens a tracking session on a connected platform. One
// session per hunter; a stale one expires on its own after a day.
func (s *Service) StartTracking(ctx context.Context, characterID, platform string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wearables.startTracking")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !knownPlatforms[platform] {
		return ErrUnknownPlatform
	}

	connected, err := s.rdb.HExists(ctx, connectionsKeyPrefix+characterID, platform).Result()
	if err != nil {
		return err
	}
	if !connected {
		return ErrNotConnected
	}

	session, err := json.Marshal(TrackingSession{
		Platform:  platform,
		StartedAt: s.now(),
	})
	if err != nil {
		return err
	}

	set, err := s.rdb.SetNX(ctx, trackingKeyPrefix+characterID, session, trackingSessionTTL).Result()
	if err != nil {
		return err
	}
	if !set {
		return ErrTrackingActive
	}
	return nil
}

// FinishTracking closes the session and converts tracked minutes into
// experience.
func (s *Service) FinishTracking(ctx context.Context, characterID string) (_ *TrackingOutcome, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wearables.finishTracking")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionJson, err := s.rdb.Get(ctx, trackingKeyPrefix+characterID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoActiveTracking
	}
	if err != nil {
		return nil, err
	}

	var session TrackingSession
	if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
		return nil, fmt.Errorf("unmarshal tracking session: %w", err)
	}

	if err := s.rdb.Del(ctx, trackingKeyPrefix+characterID).Err(); err != nil {
		return nil, err
	}

	minutes := int(s.now().Sub(session.StartedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	rewardedMinutes := minutes
	if rewardedMinutes > maxRewardedMinutes {
		rewardedMinutes = maxRewardedMinutes
	}

	outcome := &TrackingOutcome{
		Platform:         session.Platform,
		DurationMinutes:  minutes,
		GainedExperience: rewardedMinutes * experiencePerMinute,
	}
	if outcome.GainedExperience == 0 {
		return outcome, nil
	}

	res, err := s.hunters.GrantExperience(ctx, characterID, outcome.GainedExperience)
	if err != nil {
		return nil, err
	}
	outcome.ProgressionResult = res
	return outcome, nil
}
