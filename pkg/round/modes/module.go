// Package modes holds the round types shipped with the server: Brawl
// (physics-driven combat), Flash (pure UI mini-challenges), and Gambit
// (turn-based strategy). Each configures its own subset of the standard
// subsystems and supplies the rules the lifecycle driver calls into.
package modes

import (
	"fmt"

	"github.com/rumpusparty/rumpus/pkg/round"
)

// Definition pairs a round type's metadata with its constructor, for
// registration with the registry.
type Definition struct {
	Blueprint round.Blueprint
	New       func() round.Mode
}

// Definitions lists every built-in round type.
func Definitions() []Definition {
	return []Definition{
		{Blueprint: BrawlBlueprint(), New: func() round.Mode { return NewBrawl() }},
		{Blueprint: FlashBlueprint(), New: func() round.Mode { return NewFlash() }},
		{Blueprint: GambitBlueprint(), New: func() round.Mode { return NewGambit() }},
	}
}

// New instantiates a built-in round type by ID.
func New(id string) (round.Mode, error) {
	for _, def := range Definitions() {
		if def.Blueprint.ID == id {
			return def.New(), nil
		}
	}
	return nil, fmt.Errorf("unknown round type %q", id)
}
