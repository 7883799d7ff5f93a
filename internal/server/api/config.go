package api

import "time"

// ServerConfig represents the API part of the server subcommand configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:"localhost:3243" env:"VINJECT_API_ADDR"`
	Password          string        `help:"API password; empty reads or generates the key file" env:"VINJECT_API_PASSWORD"`
	RequireAuth       bool          `help:"Reject unauthenticated API connections" default:"true" env:"VINJECT_API_REQUIRE_AUTH" negatable:""`
	MaxRequest        int           `help:"Maximum request size in bytes" default:"1048576" env:"VINJECT_API_MAX_REQUEST"`
	ConnectionTimeout time.Duration `kong:"-"`
}
