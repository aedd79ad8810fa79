package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/loannaflip/dynamd/internal/config"
	"github.com/loannaflip/dynamd/internal/wm"
)

var version = "0.3.0"

func main() {
	var (
		cfgPath  string
		logLevel string
	)
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})

	root := &cobra.Command{
		Use:          "dynamd",
		Short:        "dynamd is a dynamic tiling window manager for X11",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			w, err := wm.New(cfg, logger)
			if err != nil {
				return err
			}
			return w.Run()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "rc file to read on top of the defaults")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
