package round

// Subsystem is one of the optional services a mode can request from its
// context. Every subsystem can be torn down when the round ends.
type Subsystem interface {
	CleanUp()
}

// Kind enumerates the standard subsystems the context knows how to build.
type Kind uint8

const (
	KindSpawner Kind = iota
	KindConsumables
	KindWinCondition
	KindRespawnGate
	KindCrown

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindSpawner:
		return "spawner"
	case KindConsumables:
		return "consumables"
	case KindWinCondition:
		return "wincondition"
	case KindRespawnGate:
		return "respawngate"
	case KindCrown:
		return "crown"
	}
	return "unknown"
}
