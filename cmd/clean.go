package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/clean"
)

var (
	cleanOut              string
	cleanEmptyRows        bool
	cleanFillMissing      bool
	cleanNumericStrategy  string
	cleanTextStrategy     string
	cleanDedup            bool
	cleanRename           bool
	cleanDates            []string
	cleanOptimize         bool
	cleanOutliers         bool
	cleanOutlierCols      []string
	cleanOutlierMethod    string
	cleanOutlierThreshold float64
)

var cleanCmd = &cobra.Command{
	Use:   "clean <source>",
	Short: "Apply cleaning operations to a source; the result re-enters the store",
	Long: `Cleaning operations run in a fixed order: empty-row removal, missing-value
fill, duplicate removal, column renaming, date parsing, type optimization.
Outlier removal, when requested, runs last. Column-level failures are
reported and skipped; the remaining columns are still cleaned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		t, ok := s.sources.Resolve(args[0])
		if !ok {
			return fmt.Errorf("data source %q not found", args[0])
		}
		opts := clean.Options{
			RemoveEmptyRows: cleanEmptyRows,
			FillMissing:     cleanFillMissing,
			Fill: clean.FillOptions{
				NumericStrategy: cleanNumericStrategy,
				TextStrategy:    cleanTextStrategy,
			},
			RemoveDuplicates: cleanDedup,
			RenameColumns:    cleanRename,
			ParseDateColumns: cleanDates,
			OptimizeTypes:    cleanOptimize,
		}
		out, rep, err := clean.Apply(t, opts)
		if err != nil {
			return err
		}
		if cleanOutliers {
			trimmed, removed, err := clean.RemoveOutliers(out, cleanOutlierCols, cleanOutlierMethod, cleanOutlierThreshold)
			if err != nil {
				return err
			}
			out = trimmed
			fmt.Printf("%s Removed %d outlier rows (%s)\n", okMark, removed, cleanOutlierMethod)
		}
		for _, d := range rep.Diagnostics {
			fmt.Printf("%s [%s] %s: %s\n", warnMark, d.Step, d.Column, d.Detail)
		}

		target := cleanOut
		if target == "" {
			target = args[0]
		}
		if target == args[0] {
			if err := s.sources.Update(target, out, true); err != nil {
				return err
			}
		} else {
			s.sources.Add(target, out, nil)
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Cleaned %q → %q: %d rows removed, steps: %v\n",
			okMark, args[0], target, rep.RowsRemoved, rep.StepsApplied)
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "store result under this source name (default: overwrite input)")
	cleanCmd.Flags().BoolVar(&cleanEmptyRows, "remove-empty-rows", false, "drop rows that are entirely null")
	cleanCmd.Flags().BoolVar(&cleanFillMissing, "fill-missing", false, "impute missing values")
	cleanCmd.Flags().StringVar(&cleanNumericStrategy, "numeric-strategy", clean.NumericMedian, "numeric fill strategy (median, mean, zero, drop_rows)")
	cleanCmd.Flags().StringVar(&cleanTextStrategy, "text-strategy", clean.TextMostFrequent, "text fill strategy (most_frequent, unknown, drop_rows)")
	cleanCmd.Flags().BoolVar(&cleanDedup, "remove-duplicates", false, "drop exact duplicate rows")
	cleanCmd.Flags().BoolVar(&cleanRename, "rename-columns", false, "sanitize column names")
	cleanCmd.Flags().StringSliceVar(&cleanDates, "parse-dates", nil, "columns to force-parse as datetime (pre-rename names)")
	cleanCmd.Flags().BoolVar(&cleanOptimize, "optimize-types", false, "coerce numeric text columns and detect categoricals")
	cleanCmd.Flags().BoolVar(&cleanOutliers, "remove-outliers", false, "drop outlier rows in numeric columns")
	cleanCmd.Flags().StringSliceVar(&cleanOutlierCols, "outlier-columns", nil, "columns for outlier detection (default all numeric)")
	cleanCmd.Flags().StringVar(&cleanOutlierMethod, "outlier-method", clean.OutlierIQR, "outlier method (iqr, zscore)")
	cleanCmd.Flags().Float64Var(&cleanOutlierThreshold, "outlier-threshold", 0, "outlier threshold (default 1.5 iqr, 3 zscore)")
	rootCmd.AddCommand(cleanCmd)
}
