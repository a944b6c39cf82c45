package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/loader"
	"github.com/KaramelBytes/dashloom/internal/table"
	"github.com/KaramelBytes/dashloom/internal/utils"
)

var (
	srcSheet      string
	srcTable      string
	srcMaxRows    int
	srcReplaceMet bool
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage named data sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Load a file (csv, tsv, xlsx, sqlite, json) as a data source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		t, err := loadTable(args[1])
		if err != nil {
			return err
		}
		m := s.sources.Add(args[0], t, nil)
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Added source %q: %d rows × %d columns (hash %.8s)\n", okMark, args[0], m.Rows, m.Columns, m.Hash)
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List data sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		names := s.sources.Names()
		if len(names) == 0 {
			fmt.Println("No data sources.")
			return nil
		}
		for _, name := range names {
			m, err := s.sources.Metadata(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-24s %6d rows  %3d cols  %8d bytes  modified %s\n",
				name, m.Rows, m.Columns, m.SizeBytes, m.Modified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sourceInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show metadata, dependencies, and profile for a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		info, err := s.sources.Info(args[0])
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(info)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a data source (blocked while dashboards use it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.sources.Remove(args[0]); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Removed source %q\n", okMark, args[0])
		return nil
	},
}

var sourceUpdateCmd = &cobra.Command{
	Use:   "update <name> <file>",
	Short: "Replace a source's table from a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		t, err := loadTable(args[1])
		if err != nil {
			return err
		}
		if err := s.sources.Update(args[0], t, !srcReplaceMet); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Updated source %q\n", okMark, args[0])
		return nil
	},
}

var sourceCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Verify a source's content hash against its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		ok, err := s.sources.CheckIntegrity(args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("%s Integrity OK for %q\n", okMark, args[0])
		} else {
			fmt.Printf("%s Hash mismatch for %q: table was modified outside of update\n", warnMark, args[0])
		}
		return nil
	},
}

var sourceExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all data sources as a JSON package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		b, err := s.sources.Export()
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(args[0], b); err != nil {
			return err
		}
		fmt.Printf("%s Exported %d sources to %s\n", okMark, len(s.sources.Names()), args[0])
		return nil
	},
}

var sourceImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data sources from a JSON package",
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
		n, err := s.sources.Import(b)
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Imported %d sources\n", okMark, n)
		return nil
	},
}

// loadTable picks a loader by file extension.
func loadTable(path string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return loader.FromCSV(path, loader.CSVOptions{MaxRows: srcMaxRows})
	case ".xlsx":
		return loader.FromXLSX(path, srcSheet)
	case ".db", ".sqlite", ".sqlite3":
		if srcTable == "" {
			tables, err := loader.SQLiteTables(path)
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("--table is required for sqlite files (available: %s)", strings.Join(tables, ", "))
		}
		return loader.FromSQLite(path, srcTable)
	case ".json":
		return loader.FromJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func init() {
	sourceAddCmd.Flags().StringVar(&srcSheet, "sheet", "", "worksheet name for xlsx files (default first sheet)")
	sourceAddCmd.Flags().StringVar(&srcTable, "table", "", "table name for sqlite files")
	sourceAddCmd.Flags().IntVar(&srcMaxRows, "max-rows", 0, "limit rows read from csv (0 = unlimited)")
	sourceUpdateCmd.Flags().StringVar(&srcSheet, "sheet", "", "worksheet name for xlsx files")
	sourceUpdateCmd.Flags().StringVar(&srcTable, "table", "", "table name for sqlite files")
	sourceUpdateCmd.Flags().BoolVar(&srcReplaceMet, "replace-metadata", false, "replace metadata instead of merging")

	sourceCmd.AddCommand(sourceAddCmd, sourceListCmd, sourceInfoCmd, sourceRemoveCmd,
		sourceUpdateCmd, sourceCheckCmd, sourceExportCmd, sourceImportCmd)
	rootCmd.AddCommand(sourceCmd)
}
