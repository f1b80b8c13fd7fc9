package character

// Shadow is a static cosmetic unlockable. The equipped set on a character
// is always a subset of these ids.
type Shadow struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Icon              string `json:"icon"`
	Effect            string `json:"effect"`
	UnlockRequirement string `json:"unlockRequirement"`
}

var knownShadows = map[string]Shadow{
	"sh1": {ID: "sh1", Name: "Iron Muscle", Icon: "💪", Effect: "+5% Strength", UnlockRequirement: "Reach Level 5"},
	"sh2": {ID: "sh2", Name: "Swift Steps", Icon: "🏃", Effect: "+5% Agility", UnlockRequirement: "Complete 5 running workouts"},
	"sh3": {ID: "sh3", Name: "Tank's Resilience", Icon: "🛡️", Effect: "+5% Vitality", UnlockRequirement: "Reach Vitality 15"},
	"sh4": {ID: "sh4", Name: "Heart of the Pack", Icon: "❤️", Effect: "+10% Max HP", UnlockRequirement: "Complete 20 cardio workouts"},
	"sh5": {ID: "sh5", Name: "Alchemist's Touch", Icon: "🧪", Effect: "+15% effect from consumables", UnlockRequirement: "Reach Level 15"},
	"sh6": {ID: "sh6", Name: "Tusk's Might", Icon: "🐘", Effect: "+5% lifting capacity", UnlockRequirement: "Deadlift bodyweight"},
	"sh7": {ID: "sh7", Name: "Igris's Speed", Icon: "⚔️", Effect: "+3% all stats during workouts", UnlockRequirement: "Reach S Rank (Level 30)"},
	"sh8": {ID: "sh8", Name: "Beru's Regeneration", Icon: "🦇", Effect: "Recover 2% HP after workout", UnlockRequirement: "Complete 50 workouts"},
}

func KnownShadow(id string) (Shadow, bool) {
	shadow, ok := knownShadows[id]
	return shadow, ok
}

func KnownShadows() []Shadow {
	all := make([]Shadow, 0, len(knownShadows))
	for _, shadow := range knownShadows {
		all = append(all, shadow)
	}
	return all
}
