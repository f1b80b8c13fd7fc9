package quests

import (
	"encoding/json"
	"fmt"
	"io"
)

// Definition is a static quest blueprint. Loaded once at startup,
// immutable at runtime; per-hunter quest state lives on the character.
type Definition struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Type             string `json:"type"` // daily | weekly | main | special
	RewardExperience int    `json:"rewardExp"`
	RewardStatPoints int    `json:"rewardPoints"`
	RewardItem       string `json:"rewardItem,omitempty"`
	TimeLimitHours   int    `json:"timeLimit,omitempty"`
}

type Catalog struct {
	definitions map[string]Definition
	ordered     []Definition
}

func NewCatalog(source io.Reader) (*Catalog, error) {
	var defs []Definition
	if err := json.NewDecoder(source).Decode(&defs); err != nil {
		return nil, fmt.Errorf("decode quest definitions: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no quest definitions loaded")
	}

	catalog := &Catalog{
		definitions: make(map[string]Definition, len(defs)),
		ordered:     defs,
	}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("quest definition without id: %q", def.Title)
		}
		if _, ok := catalog.definitions[def.ID]; ok {
			return nil, fmt.Errorf("duplicate quest definition: %s", def.ID)
		}
		catalog.definitions[def.ID] = def
	}

	return catalog, nil
}

func (c *Catalog) Get(id string) (Definition, bool) {
	def, ok := c.definitions[id]
	return def, ok
}

// All returns the definitions in their source order.
func (c *Catalog) All() []Definition {
	all := make([]Definition, len(c.ordered))
	copy(all, c.ordered)
	return all
}

func (c *Catalog) Size() int {
	return len(c.definitions)
}
