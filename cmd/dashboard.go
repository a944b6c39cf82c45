package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/utils"
)

var (
	dashDescription string
	dashMaxAgeHours int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Manage dashboards",
}

var dashboardCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		d, err := s.dashboards.Create(args[0], dashDescription)
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Created dashboard %q (%s)\n", okMark, d.Name, d.ID)
		return nil
	},
}

var dashboardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dashboards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		names := s.dashboards.Names()
		if len(names) == 0 {
			fmt.Println("No dashboards.")
			return nil
		}
		for _, name := range names {
			d, err := s.dashboards.Get(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-24s %3d charts  modified %s\n", name, len(d.Charts), d.Modified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var dashboardDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.dashboards.Delete(args[0]); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Deleted dashboard %q\n", okMark, args[0])
		return nil
	},
}

var dashboardDuplicateCmd = &cobra.Command{
	Use:   "duplicate <source> <new-name>",
	Short: "Deep-copy a dashboard under a new name with fresh ids",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		d, err := s.dashboards.Duplicate(args[0], args[1])
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Duplicated %q as %q (%d charts)\n", okMark, args[0], d.Name, len(d.Charts))
		return nil
	},
}

var dashboardCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old empty dashboards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		maxAge := time.Duration(dashMaxAgeHours) * time.Hour
		if dashMaxAgeHours <= 0 {
			maxAge = time.Duration(cfg.CleanupMaxAgeHours) * time.Hour
		}
		n := s.dashboards.Cleanup(maxAge)
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Removed %d empty dashboards older than %s\n", okMark, n, maxAge)
		return nil
	},
}

var dashboardHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent dashboard actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		entries := s.dashboards.History()
		if len(entries) == 0 {
			fmt.Println("No history.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-14s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Dashboard)
		}
		return nil
	},
}

var dashboardStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard and storage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		ds := s.dashboards.Stats()
		ss := s.sources.Stats()
		fmt.Printf("Dashboards: %d  Charts: %d  Sources in use: %d\n", ds.Dashboards, ds.Charts, ds.SourcesUsed)
		fmt.Printf("Sources: %d  Rows: %d  Memory: %d bytes  Cache entries: %d\n", ss.Sources, ss.Rows, ss.MemoryBytes, ss.CacheEntries)
		return nil
	},
}

var dashboardExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export dashboard state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		b, err := s.dashboards.Export()
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(args[0], b); err != nil {
			return err
		}
		fmt.Printf("%s Exported dashboard state to %s\n", okMark, args[0])
		return nil
	},
}

var dashboardImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import dashboard state from JSON (merges into the workspace)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		n, err := s.dashboards.Import(b)
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Imported %d dashboards\n", okMark, n)
		return nil
	},
}

func init() {
	dashboardCreateCmd.Flags().StringVar(&dashDescription, "description", "", "dashboard description")
	dashboardCleanupCmd.Flags().IntVar(&dashMaxAgeHours, "max-age-hours", 0, "age threshold in hours (default from config)")

	dashboardCmd.AddCommand(dashboardCreateCmd, dashboardListCmd, dashboardDeleteCmd,
		dashboardDuplicateCmd, dashboardCleanupCmd, dashboardHistoryCmd, dashboardStatsCmd,
		dashboardExportCmd, dashboardImportCmd)
	rootCmd.AddCommand(dashboardCmd)
}
