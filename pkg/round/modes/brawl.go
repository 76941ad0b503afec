package modes

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rumpusparty/rumpus/pkg/round"
)

func BrawlBlueprint() round.Blueprint {
	return round.Blueprint{
		ID:          "brawl",
		Name:        "Brawl",
		Description: "Knock everyone else out of the arena.",
		Tag:         "brawl",
		MinPlayers:  2,
		MaxPlayers:  8,
		Duration:    3 * time.Minute,
		Tags:        []string{"combat", "physics"},
		Enabled:     true,
	}
}

// Brawl is the physics-driven round: everyone spawns into the arena,
// damage goes straight to health, and the last one standing wins.
type Brawl struct {
	host round.Host
	ctx  *round.Context

	spawner     *round.Spawner
	consumables *round.ConsumableSpawner
	wincond     *round.WinCondition
	gate        *round.RespawnGate

	// Arena layout, set before the round starts.
	SpawnPoints []round.Vector
	Placements  []round.Placement

	// Rules shown before the round begins. Nil skips the tutorial.
	TutorialData *round.Tutorial
}

var (
	_ round.Mode        = &Brawl{}
	_ round.Pausable    = &Brawl{}
	_ round.HasTutorial = &Brawl{}
)

func NewBrawl() *Brawl {
	return &Brawl{}
}

func (b *Brawl) Blueprint() round.Blueprint {
	return BrawlBlueprint()
}

func (b *Brawl) Tutorial() *round.Tutorial {
	return b.TutorialData
}

func (b *Brawl) Setup(host round.Host, ctx *round.Context) error {
	b.host = host
	b.ctx = ctx

	b.spawner, _ = ctx.Standard(round.KindSpawner).(*round.Spawner)
	b.consumables, _ = ctx.Standard(round.KindConsumables).(*round.ConsumableSpawner)
	b.wincond, _ = ctx.Standard(round.KindWinCondition).(*round.WinCondition)
	b.gate, _ = ctx.Standard(round.KindRespawnGate).(*round.RespawnGate)

	if b.wincond != nil {
		b.wincond.Track(round.VictoryElimination, 0, b.resolve)
	} else {
		log.Warn().Msg("brawl has no win condition, rounds will not end on their own")
	}
	return nil
}

func (b *Brawl) Start() {
	if b.spawner != nil {
		b.spawner.SetPoints(b.SpawnPoints)
		b.spawner.SpawnAll()
	}
	if b.consumables != nil {
		b.consumables.Configure(b.Placements)
		b.consumables.SpawnInitial()
	}
}

// HandleDamage applies the report straight to the victim's health. A
// death consumes a life and respawns the victim while the gate allows
// it; out of lives or gated, the victim is eliminated.
func (b *Brawl) HandleDamage(victim *round.Participant, report round.Report) {
	if b.spawner != nil {
		actor := b.spawner.Actor(victim.ID)
		if actor != nil && actor.Eliminated {
			return
		}
	}

	victim.ApplyDamage(report.Amount)
	if victim.Alive {
		return
	}

	canRespawn := b.gate == nil || b.gate.CanRespawn(victim.ID)
	if canRespawn && victim.TakeLife() {
		victim.Revive()
		if b.spawner != nil {
			b.spawner.Respawn(victim.ID)
		}
		return
	}

	if b.spawner != nil {
		b.spawner.Eliminate(victim.ID)
	}
	if b.wincond != nil {
		b.wincond.ReportElimination(victim.ID)
	}
}

func (b *Brawl) resolve(winners []int, draw bool) {
	outcome := round.OutcomeVictory
	if draw {
		outcome = round.OutcomeDraw
	}
	res := round.NewResult(outcome, b.ctx.ParticipantIDs(), winners)
	if b.spawner != nil {
		res.Stats["eliminated"] = b.spawner.EliminatedCount()
	}
	for _, id := range winners {
		res.Rewards = append(res.Rewards, round.Reward{
			Kind:          round.RewardScore,
			ParticipantID: id,
			Amount:        1,
		})
	}
	b.host.End(res)
}

func (b *Brawl) Pause() {
	if b.consumables != nil {
		b.consumables.Pause()
	}
}

func (b *Brawl) Resume() {
	if b.consumables != nil {
		b.consumables.Resume()
	}
}

func (b *Brawl) End(res *round.Result) {
	log.Info().Msgf("brawl ended: %s", res.Outcome)
}
