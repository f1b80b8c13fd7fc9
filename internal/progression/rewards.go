package progression

// MilestoneBonus is granted on top of the base per-level reward when a
// hunter reaches the milestone level.
type MilestoneBonus struct {
	StatPoints   int
	MaxHitPoints int
	Unlocks      []string
}

// milestoneBonuses is keyed by the level just reached. Data-driven so new
// milestones can be added without touching the resolve loop.
var milestoneBonuses = map[int]MilestoneBonus{
	5:  {Unlocks: []string{"New Skill: Endurance Training"}},
	10: {StatPoints: 1, Unlocks: []string{"Rank D Unlocked", "New Gates Available"}},
	15: {Unlocks: []string{"New Shadow: Alchemist's Touch"}},
	20: {StatPoints: 3, Unlocks: []string{"Rank B Unlocked", "Special Weekly Quests"}},
	30: {StatPoints: 8, Unlocks: []string{"Rank S Unlocked", "New Shadow: Igris's Speed"}},
	40: {Unlocks: []string{"National Level Rank"}},
	50: {Unlocks: []string{"Special Authority Rank"}},
}

// MilestoneAt returns the bonus for the given level, if it is a milestone.
func MilestoneAt(level int) (MilestoneBonus, bool) {
	bonus, ok := milestoneBonuses[level]
	return bonus, ok
}
