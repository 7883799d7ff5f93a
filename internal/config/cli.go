// Package config declares the vinject command line.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/vinject/internal/cmd"
	"github.com/Alia5/vinject/internal/log"
)

// CLI is the root kong grammar. Flags can also come from environment
// variables and from JSON, YAML or TOML config files.
type CLI struct {
	ConfigFile string           `name:"config" help:"Path to a config file (json, yaml or toml)" env:"VINJECT_CONFIG" type:"path"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        log.Config       `embed:"" prefix:"log."`
	cmd.Remote `embed:""`

	Server  cmd.Server        `cmd:"" help:"Run the API server that injects input on this machine"`
	Type    cmd.Type          `cmd:"" help:"Type text"`
	Press   cmd.Press         `cmd:"" help:"Press and hold keys"`
	Release cmd.Release       `cmd:"" help:"Release keys"`
	Tap     cmd.Tap           `cmd:"" help:"Press and release keys in order"`
	Mouse   cmd.Mouse         `cmd:"" help:"Query and drive the mouse pointer"`
	Listen  cmd.Listen        `cmd:"" help:"Print observed keyboard and mouse events as JSON lines"`
	Config  cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
