package progression

// State is the progression slice of a hunter character, as needed to
// resolve an experience gain. The engine never mutates it.
type State struct {
	Level                 int
	Experience            int
	ExperienceToNextLevel int
	StatPoints            int
	MaxHitPoints          int
}

// Result describes the outcome of a single experience gain. Only its
// effects are persisted, never the result itself.
type Result struct {
	NewLevel               int      `json:"newLevel"`
	RemainingExperience    int      `json:"remainingExperience"`
	NewExperienceThreshold int      `json:"newExperienceThreshold"`
	GainedStatPoints       int      `json:"gainedStatPoints"`
	GainedMaxHitPoints     int      `json:"gainedMaxHitPoints"`
	UnlockMessages         []string `json:"unlockMessages,omitempty"`
	DidLevelUp             bool     `json:"didLevelUp"`
}

const (
	baseStatPointsPerLevel = 2
	baseMaxHPPerLevel      = 10

	// fallbackThreshold replaces a corrupt (non-positive) experience
	// threshold so the loop below always terminates.
	fallbackThreshold = 100

	// maxLevelUpsPerGain caps a single gain; anything above it is clamped,
	// partial progress is kept.
	maxLevelUpsPerGain = 20
)

// ResolveExperienceGain adds gainedExperience to the current state and
// resolves all resulting level ups. Leftover experience carries over into
// the new level instead of resetting to zero. The threshold for each next
// level is floor(threshold * 1.2) + 50.
//
// Pure function: no I/O, no randomness, same inputs always give the same
// result. The caller validates that gainedExperience is positive and is
// responsible for any level-up notification based on DidLevelUp.
func ResolveExperienceGain(current State, gainedExperience int) Result {
	threshold := current.ExperienceToNextLevel
	if threshold <= 0 {
		threshold = fallbackThreshold
	}

	res := Result{
		NewLevel:               current.Level,
		RemainingExperience:    current.Experience + gainedExperience,
		NewExperienceThreshold: threshold,
	}

	levelUps := 0
	for res.RemainingExperience >= res.NewExperienceThreshold && levelUps < maxLevelUpsPerGain {
		res.DidLevelUp = true
		res.RemainingExperience -= res.NewExperienceThreshold
		res.NewLevel++
		levelUps++

		res.GainedStatPoints += baseStatPointsPerLevel
		res.GainedMaxHitPoints += baseMaxHPPerLevel

		if bonus, ok := milestoneBonuses[res.NewLevel]; ok {
			res.GainedStatPoints += bonus.StatPoints
			res.GainedMaxHitPoints += bonus.MaxHitPoints
			res.UnlockMessages = append(res.UnlockMessages, bonus.Unlocks...)
		}

		// exact integer form of floor(threshold * 1.2) + 50
		res.NewExperienceThreshold = res.NewExperienceThreshold*12/10 + 50
	}

	return res
}
