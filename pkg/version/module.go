package version

// These are set at build time using -ldflags.
var (
	Version   = "development"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
