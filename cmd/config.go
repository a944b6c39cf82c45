package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dashloom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("workspace:             %s\n", cfg.Workspace)
		fmt.Printf("default_chart_height:  %d\n", cfg.DefaultChartHeight)
		fmt.Printf("default_color_scheme:  %s\n", cfg.DefaultColorScheme)
		fmt.Printf("default_font_size:     %d\n", cfg.DefaultFontSize)
		fmt.Printf("max_render_rows:       %d\n", cfg.MaxRenderRows)
		fmt.Printf("max_preview_rows:      %d\n", cfg.MaxPreviewRows)
		fmt.Printf("sample_seed:           %d\n", cfg.SampleSeed)
		fmt.Printf("cache_ttl_minutes:     %d\n", cfg.CacheTTLMinutes)
		fmt.Printf("history_limit:         %d\n", cfg.HistoryLimit)
		fmt.Printf("cleanup_max_age_hours: %d\n", cfg.CleanupMaxAgeHours)
		fmt.Printf("auto_refresh_interval: %d\n", cfg.AutoRefreshInterval)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		switch key {
		case "workspace":
			cfg.Workspace = val
		case "default_color_scheme":
			cfg.DefaultColorScheme = val
		case "default_chart_height", "default_font_size", "max_render_rows",
			"max_preview_rows", "sample_seed", "cache_ttl_minutes",
			"history_limit", "cleanup_max_age_hours", "auto_refresh_interval":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("value for %s must be an integer: %w", key, err)
			}
			switch key {
			case "default_chart_height":
				cfg.DefaultChartHeight = n
			case "default_font_size":
				cfg.DefaultFontSize = n
			case "max_render_rows":
				cfg.MaxRenderRows = n
			case "max_preview_rows":
				cfg.MaxPreviewRows = n
			case "sample_seed":
				cfg.SampleSeed = n
			case "cache_ttl_minutes":
				cfg.CacheTTLMinutes = n
			case "history_limit":
				cfg.HistoryLimit = n
			case "cleanup_max_age_hours":
				cfg.CleanupMaxAgeHours = n
			case "auto_refresh_interval":
				cfg.AutoRefreshInterval = n
			}
		default:
			return fmt.Errorf("unknown configuration key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("%s Set %s = %s\n", okMark, key, val)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
