package config

type RoundType struct {
	// One of the round type IDs exposed by the modes package.
	ID         string
	Enabled    bool
	MinPlayers uint
	MaxPlayers uint
	// Estimated round length in seconds. Zero keeps the blueprint's
	// default.
	Seconds uint
	Tags    []string
}

type WebIngress struct {
	Port int
}

type ServerIngress struct {
	Web WebIngress
}

type RedisSettings struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type HistorySettings struct {
	// Directory for the filesystem archive. Empty disables it.
	Directory string
	// Number of recent rounds kept in memory.
	Recent uint
	Redis  RedisSettings
}

type WorldSettings struct {
	// Path of the sqlite database holding the committed change log.
	// Empty keeps the world in memory only.
	DBPath string
}

type ServerSettings struct {
	Description string
	Ingress     ServerIngress
	World       WorldSettings
	History     HistorySettings
	Rounds      []RoundType
}

type Config struct {
	Server ServerSettings
}
