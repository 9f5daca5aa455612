package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/prototypeforge/aicxo/internal/config"
	"github.com/prototypeforge/aicxo/internal/types"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the boardroom configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes the default configuration to the config path so it can be
edited. API keys are referenced as ${OPENAI_API_KEY} style environment
variables rather than stored in the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return types.NewError(types.CONFIG_LOAD_FAILED,
				fmt.Sprintf("%s already exists; use --force to overwrite", configPath))
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create config directory", err)
		}

		data, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to render config", err)
		}

		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to write config file", err)
		}

		cmd.Printf("Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewConfigLoader(config.NewValidator())
		cfg, err := loader.LoadWithDefaults(configPath)
		if err != nil {
			return err
		}

		// Secrets stay out of terminal output
		for name, pc := range cfg.Providers {
			if pc.APIKey != "" {
				pc.APIKey = "********"
				cfg.Providers[name] = pc
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to render config", err)
		}
		cmd.Print(string(data))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
