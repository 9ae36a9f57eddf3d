package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"probecov/internal/config"
	"probecov/internal/paths"
)

var (
	configShowDiff bool
	configForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage probecov configuration",
	Long:  "View and manage probecov configuration stored in .probecov/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, .probecov/config.json and
PROBECOV_* environment overrides are applied.

Examples:
  probecov config show              # All settings
  probecov config show --diff       # Only non-default values
  probecov config show --format json`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigSetting is one flattened configuration value
type ConfigSetting struct {
	Key      string      `json:"key"`
	Value    interface{} `json:"value"`
	Default  interface{} `json:"default,omitempty"`
	Modified bool        `json:"modified,omitempty"`
}

// ConfigResponseCLI is the output of the config commands
type ConfigResponseCLI struct {
	ConfigPath string          `json:"configPath"`
	Written    bool            `json:"written,omitempty"`
	Settings   []ConfigSetting `json:"settings"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := configSettings(env.cfg, configShowDiff)
	if err != nil {
		return err
	}
	resp.ConfigPath = paths.ConfigPath(env.root)
	return env.print(cmd, resp)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	path := paths.ConfigPath(env.root)
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.DefaultConfig().Save(env.root); err != nil {
		return err
	}

	resp, err := configSettings(config.DefaultConfig(), false)
	if err != nil {
		return err
	}
	resp.ConfigPath = path
	resp.Written = true
	return env.print(cmd, resp)
}

// configSettings flattens cfg to dotted keys and marks values that differ
// from the defaults
func configSettings(cfg *config.Config, diffOnly bool) (*ConfigResponseCLI, error) {
	current, err := flattenConfig(cfg)
	if err != nil {
		return nil, err
	}
	defaults, err := flattenConfig(config.DefaultConfig())
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resp := &ConfigResponseCLI{Settings: make([]ConfigSetting, 0, len(keys))}
	for _, k := range keys {
		s := ConfigSetting{Key: k, Value: current[k]}
		if def, ok := defaults[k]; !ok || !isEqual(def, current[k]) {
			s.Modified = true
			s.Default = def
		}
		if diffOnly && !s.Modified {
			continue
		}
		resp.Settings = append(resp.Settings, s)
	}
	return resp, nil
}

func flattenConfig(cfg *config.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	flat := make(map[string]interface{})
	flattenInto(flat, "", tree)
	return flat, nil
}

func flattenInto(dst map[string]interface{}, prefix string, m map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(dst, key, nested)
			continue
		}
		dst[key] = v
	}
}

func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func formatConfigHuman(resp *ConfigResponseCLI) string {
	var b strings.Builder

	if resp.Written {
		b.WriteString(fmt.Sprintf("Wrote %s\n\n", resp.ConfigPath))
	} else {
		b.WriteString(fmt.Sprintf("Configuration (%s)\n", resp.ConfigPath))
		b.WriteString(strings.Repeat("─", 50) + "\n")
	}
	if len(resp.Settings) == 0 {
		b.WriteString("All settings use their defaults\n")
		return b.String()
	}
	for _, s := range resp.Settings {
		line := fmt.Sprintf("%s: %v", s.Key, s.Value)
		if s.Modified && s.Default != nil {
			line += fmt.Sprintf(" (default: %v)", s.Default)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
