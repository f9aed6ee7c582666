package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	focusengine "github.com/e7canasta/orion-focus-engine"
)

const (
	appConfigKey = "app-config"

	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	configPathEnvVar = "FOCUS_SIM_CONFIG"
	logLevelEnvVar   = "FOCUS_SIM_LOG"
)

var (
	version = "v0.1.0-default"
	commit  = ""
	date    = ""

	outputFormat = formatText

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: fmt.Sprintf("Path to a YAML engine config (optional, also read from %s)", configPathEnvVar),
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Report output format [text, json, yaml]",
		Value: formatText,
	}

	configCmd = &cli.Command{
		Name:   "config",
		Usage:  "Print the effective engine configuration as YAML (a valid config file)",
		Action: cmdConfig,
	}
)

type appConfig struct {
	Engine focusengine.Config
	Debug  bool
}

func getConfig(c *cli.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "focus-sim",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Synthetic driver and replay harness for the focus scoring engine",
		Flags: []cli.Flag{
			debugFlag,
			configFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			simulateCmd,
			replayCmd,
			configCmd,
		},
		Before: func(c *cli.Context) error {
			if c.Bool(debugFlag.Name) {
				initLogging(true)
			}

			if f := strings.ToLower(c.String(formatFlag.Name)); f != "" {
				outputFormat = f
			}

			path := c.String(configFlag.Name)
			if path == "" {
				path = os.Getenv(configPathEnvVar)
			}

			cfg := focusengine.DefaultConfig()
			if path != "" {
				var err error
				cfg, err = focusengine.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("loading engine config: %w", err)
				}
				slog.Debug("engine config loaded", "path", path)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Engine: cfg,
				Debug:  c.Bool(debugFlag.Name),
			}
			return nil
		},
	}
}

func cmdConfig(c *cli.Context) error {
	return yaml.NewEncoder(os.Stdout).Encode(getConfig(c).Engine)
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug || strings.EqualFold(os.Getenv(logLevelEnvVar), "debug") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
