package server

import "github.com/raysh454/vertex/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the scan
	// command uses the orchestrator in-process and does not need it).
	ListenAddr string

	// AllowedOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	AllowedOrigin string

	Logger logging.Logger
}
