package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dashloom/internal/config"
)

var (
	// Global flags
	cfgFile   string
	workspace string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	failMark = color.New(color.FgRed).Sprint("✗")
)

var rootCmd = &cobra.Command{
	Use:   "dashloom",
	Short: "DashLoom CLI: build data dashboards from tabular files",
	Long: `DashLoom manages named data sources, cleans and profiles them, and arranges
chart specifications into dashboards. The render command produces the exact
aggregated tables a chart renderer plots.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Error: %v\n", failMark, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dashloom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory holding session state (overrides config)")
}

func loadConfig() {
	// A .env beside the invocation is a convenience for DASHLOOM_* vars.
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "%s Warning: failed to load config: %v\n", warnMark, err)
		cfg = &cfgpkg.Global{}
		return
	}
	cfg = c
	if workspace != "" {
		cfg.Workspace = workspace
	}
}
