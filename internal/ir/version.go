package ir

// Version constants for the data model and resolution engine.
const (
	// IRVersion is the manifest and snapshot schema version.
	IRVersion = "1"

	// EngineVersion is the convene engine version.
	EngineVersion = "0.1.0"
)
