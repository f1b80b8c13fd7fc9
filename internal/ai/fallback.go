package ai

import (
	"context"
	"math/rand"
)

// FallbackGenerator answers with canned hunter-flavored lines when the
// upstream model is unreachable. Never fails.
type FallbackGenerator struct {
	responses []string
}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{
		responses: []string{
			"The System is recalibrating. Keep training, hunter.",
			"Arise. Your next gate awaits.",
			"Consistency levels up hunters faster than any buff.",
			"Even S Rank hunters rest. Recover, then push again.",
			"Your daily quest log is the shortest path to the next level.",
		},
	}
}

func (g *FallbackGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.responses[rand.Intn(len(g.responses))], nil
}
