package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the agent's resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		resolved := struct {
			Port      int                      `toml:"port"`
			LogLevel  string                   `toml:"log_level"`
			DataDir   string                   `toml:"data_dir"`
			Headless  bool                     `toml:"headless"`
			Selection config.SelectionDefaults `toml:"selection"`
		}{
			Port:      cfg.Port(),
			LogLevel:  cfg.LogLevel(),
			DataDir:   cfg.DataDir(),
			Headless:  cfg.Headless(),
			Selection: cfg.Selection(),
		}

		out, err := toml.Marshal(resolved)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		if cfg.Path() == "" {
			fmt.Println("(no config file loaded, using defaults)")
			return nil
		}
		fmt.Println(cfg.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
