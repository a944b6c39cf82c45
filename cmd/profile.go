package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/profile"
	"github.com/KaramelBytes/dashloom/internal/table"
)

var profileCmd = &cobra.Command{
	Use:   "profile <source>",
	Short: "Profile a data source: column stats, missing values, retype hints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		t, ok := s.sources.Resolve(args[0])
		if !ok {
			return fmt.Errorf("data source %q not found", args[0])
		}
		p := profile.Build(t)
		fmt.Printf("%s: %d rows × %d columns, %d bytes, %d duplicate rows\n\n",
			args[0], p.Rows, p.Cols, p.MemoryBytes, p.DuplicateRows)
		for _, c := range p.Columns {
			fmt.Printf("%-20s %-12s non-null %d  null %d (%.1f%%)\n", c.Name, c.Kind, c.NonNull, c.NullCount, c.NullPercent)
			switch c.Kind {
			case table.Numeric:
				fmt.Printf("%20s min %g  max %g  mean %.4g  median %.4g  std %.4g  zeros %d\n",
					"", c.Min, c.Max, c.Mean, c.Median, c.Std, c.Zeros)
			case table.Text, table.Categorical:
				fmt.Printf("%20s unique %d  top %q (%d)\n", "", c.Unique, c.MostFrequent, c.ModeCount)
			case table.Datetime:
				fmt.Printf("%20s from %s to %s (%d days)\n", "", c.MinTime, c.MaxTime, c.SpanDays)
			}
		}
		if suggestions := profile.SuggestTypes(t); len(suggestions) > 0 {
			fmt.Println()
			for col, kind := range suggestions {
				fmt.Printf("%s Column %q looks %s; consider clean --optimize-types or --parse-dates\n", warnMark, col, kind)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
