package quests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefinitionsJson = `[
	{"id": "q1", "title": "Push Yourself to the Limit", "type": "daily", "rewardExp": 100},
	{"id": "q2", "title": "Endurance Training", "type": "weekly", "rewardExp": 200, "rewardPoints": 1},
	{"id": "q3", "title": "Weight Room Master", "type": "main", "rewardExp": 300, "rewardPoints": 2, "rewardItem": "Special Protein Shake"}
]`

func TestNewCatalog(t *testing.T) {
	catalog, err := NewCatalog(strings.NewReader(testDefinitionsJson))
	require.NoError(t, err)
	require.Equal(t, 3, catalog.Size())

	def, ok := catalog.Get("q2")
	require.True(t, ok)
	assert.Equal(t, "Endurance Training", def.Title)
	assert.Equal(t, 200, def.RewardExperience)
	assert.Equal(t, 1, def.RewardStatPoints)

	_, ok = catalog.Get("unknown")
	assert.False(t, ok)

	all := catalog.All()
	require.Len(t, all, 3)
	assert.Equal(t, "q1", all[0].ID)
}

func TestNewCatalog_invalid(t *testing.T) {
	_, err := NewCatalog(strings.NewReader(`[]`))
	assert.Error(t, err)

	_, err = NewCatalog(strings.NewReader(`[{"title": "no id"}]`))
	assert.Error(t, err)

	_, err = NewCatalog(strings.NewReader(`[{"id": "q1"}, {"id": "q1"}]`))
	assert.Error(t, err)

	_, err = NewCatalog(strings.NewReader(`not json`))
	assert.Error(t, err)
}
