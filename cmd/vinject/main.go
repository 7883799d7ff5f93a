package main

import (
	"io"
	"os"
	"strings"

	"github.com/Alia5/vinject/internal/config"
	"github.com/Alia5/vinject/internal/configpaths"
	"github.com/Alia5/vinject/internal/log"
	"github.com/Alia5/vinject/internal/version"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {

	userCfg := findUserConfig(os.Args[1:])
	candidates := configpaths.Search(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("vinject"),
		kong.Description("Keyboard and mouse injection with a remote control API"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Get()},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, candidates[configpaths.JSON]...),
		kong.Configuration(kongyaml.Loader, candidates[configpaths.YAML]...),
		kong.Configuration(kongtoml.Loader, candidates[configpaths.TOML]...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}

	rawLogger, rawFile, err := log.SetupRaw(cli.Log)
	if err != nil {
		logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
		rawLogger = log.NewRaw(nil)
	} else if rawFile != nil {
		closeFiles = append(closeFiles, rawFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))
	ctx.Bind(&cli.Remote)

	err = ctx.Run()
	closeAll(closeFiles)
	ctx.FatalIfErrorf(err)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("VINJECT_CONFIG"); v != "" {
		return v
	}
	return ""
}
