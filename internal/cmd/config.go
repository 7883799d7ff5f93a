package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Alia5/vinject/internal/configpaths"
	"github.com/Alia5/vinject/internal/log"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"server,client"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run generates a configuration template dynamically via reflection of the command structs and tags.
func (c *ConfigInit) Run() error {
	format, ok := configpaths.ParseFormat(c.Format)
	if !ok {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var root map[string]any
	switch c.Command {
	case "server":
		root = templateOf(reflect.TypeOf(Server{}))
	case "client":
		root = templateOf(reflect.TypeOf(Remote{}))
	default:
		return errors.New("unknown command; expected 'server' or 'client'")
	}
	root["log"] = templateOf(reflect.TypeOf(log.Config{}))

	dest := c.Output
	if dest == "" {
		dest = c.Command + format.Ext()
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	data, err := encodeConfig(format, root)
	if err != nil {
		return fmt.Errorf("encode %s config: %w", format, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func encodeConfig(format configpaths.Format, root map[string]any) ([]byte, error) {
	switch format {
	case configpaths.YAML:
		return yaml.Marshal(root)
	case configpaths.TOML:
		return toml.Marshal(root)
	default:
		return json.MarshalIndent(root, "", "  ")
	}
}

// configKey returns the key the kong resolvers look up for a field: its
// kong name, or the field name in snake_case.
func configKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return strings.ReplaceAll(name, "-", "_")
	}
	var b strings.Builder
	r := []rune(f.Name)
	for i, c := range r {
		if unicode.IsUpper(c) {
			if i > 0 && (unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1])) {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}

// templateOf builds the config template for t: every flag with its default,
// embedded structs nested under their prefix.
func templateOf(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for f := range fields(t) {
		if _, embedded := f.Tag.Lookup("embed"); embedded {
			sub := templateOf(f.Type)
			if section := strings.TrimSuffix(f.Tag.Get("prefix"), "."); section != "" {
				out[section] = sub
			} else {
				maps.Copy(out, sub)
			}
			continue
		}
		if v := templateValue(f.Type, f.Tag.Get("default")); v != nil {
			out[configKey(f)] = v
		}
	}
	return out
}

// fields yields the exported fields of t that kong treats as flags.
func fields(t reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("kong") == "-" {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

// templateValue turns a default tag into a typed template value, or nil for
// kinds the template does not cover.
func templateValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeFor[time.Duration]() {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	case reflect.Struct:
		return templateOf(t)
	}
	return nil
}
