// Package configpaths locates vinject's configuration and key files.
package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "vinject"

// Format is a config file syntax understood by the kong resolvers.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Formats lists every supported Format in resolver priority order.
var Formats = []Format{JSON, YAML, TOML}

// ParseFormat maps a format name or file extension such as ".yml" to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, true
	case "yaml", "yml":
		return YAML, true
	case "toml":
		return TOML, true
	}
	return "", false
}

// Ext is the extension written for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

func (f Format) extensions() []string {
	if f == YAML {
		return []string{".yaml", ".yml"}
	}
	return []string{f.Ext()}
}

// configBases are the file names searched in every location. "server" and
// "client" match the files written by "vinject config init".
var configBases = []string{"config", "server", "client"}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// KeyFile returns the path of the generated API password file.
func KeyFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".key.txt"), nil
}

// Candidates holds the config files to try per format, highest priority first.
type Candidates map[Format][]string

type location struct {
	dir   string
	bases []string
}

func locations() []location {
	var locs []location
	if wd, err := os.Getwd(); err == nil {
		locs = append(locs, location{dir: wd, bases: append([]string{appName}, configBases...)})
	}
	if dir, err := Dir(); err == nil {
		locs = append(locs, location{dir: dir, bases: configBases})
	}
	if runtime.GOOS != "windows" {
		locs = append(locs, location{dir: filepath.Join("/etc", appName), bases: configBases})
	}
	return locs
}

// Search returns the config candidates: userPath first (routed by its
// extension, JSON when unknown), then the working directory, the user
// config dir and /etc/vinject on unix.
func Search(userPath string) Candidates {
	c := Candidates{}
	if userPath != "" {
		f, ok := ParseFormat(filepath.Ext(userPath))
		if !ok {
			f = JSON
		}
		c[f] = append(c[f], userPath)
	}
	for _, loc := range locations() {
		for _, base := range loc.bases {
			for _, f := range Formats {
				for _, ext := range f.extensions() {
					c[f] = append(c[f], filepath.Join(loc.dir, base+ext))
				}
			}
		}
	}
	return c
}
