package demoserver

type Config struct {
	// Addr is the listen address, host optional.
	Addr string

	// InitialVersion is the version every page starts at. 1 serves the
	// inaccessible fixtures.
	InitialVersion int

	// VertexURL is the base URL of the Vertex API the control panel scans
	// through. Its server must allow the demo origin.
	VertexURL string
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":9999",
		InitialVersion: versionBroken,
		VertexURL:      "http://localhost:8080",
	}
}
