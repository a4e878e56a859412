// Package config handles configuration loading for cafofo-gateway and the
// cafofo CLI.
//
// # Gateway
//
// The gateway reads YAML with ${VAR} environment expansion. A .env file in
// the working directory is loaded first by LoadDotEnv, so secrets can live
// there during development.
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	  allowed_origins: ["https://cafofo.example"]
//	  shutdown_timeout: "5s"
//
//	database:
//	  path: "/var/lib/cafofo/cafofo.db"
//	  driver: "sqlite"            # sqlite (pure Go) or sqlite3 (cgo)
//
//	auth:
//	  jwt_secret: "${CAFOFO_JWT_SECRET}"   # empty disables auth
//	  token_ttl: "720h"
//
//	users:
//	  - id: "ana"
//	    name: "Ana"
//	    pronoun: "a"
//
//	notifications:
//	  dedupe_ttl: "5m"
//	  dedupe_max_size: 10000
//	  history_limit: 50
//	  heartbeat_interval: "30s"
//
//	tailscale:
//	  enabled: false
//	  hostname: "cafofo"
//	  auth_key: "${TS_AUTHKEY}"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Durations use time.ParseDuration syntax. Load applies defaults for every
// omitted value and then validates.
//
// # CLI
//
// The CLI reads TOML from $CAFOFO_CLIENT_CONFIG or
// $XDG_CONFIG_HOME/cafofo/client.toml:
//
//	[gateway]
//	url = "http://127.0.0.1:8080"
//	token = "${CAFOFO_TOKEN}"
//
//	[session]
//	user_id = "ana"
//
//	[drafts]
//	path = "/home/ana/.local/share/cafofo/drafts"
package config
