package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/glyph/internal/config"
	"github.com/aretw0/glyph/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glyph",
	Short: "glyph turns handwritten gestures into text",
	Long: `glyph captures pointer strokes on a drawing canvas, groups them into
characters with a debounce timer, crops the ink and sends it to a
handwriting prediction service. Recognised characters are appended to an
output buffer exposed over HTTP, MCP or a replay transcript.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a glyph.yaml configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json, auto); overrides the config")
}

// setup loads the configuration and builds the logger for cmd.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
