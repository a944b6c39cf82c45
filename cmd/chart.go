package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/dashboard"
)

var (
	chartKind     string
	chartSource   string
	chartX        string
	chartY        string
	chartColor    string
	chartTitle    string
	chartHeight   int
	chartNoLegend bool
	chartFontSize int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Manage charts within a dashboard",
}

func chartSpecFromFlags() dashboard.ChartSpec {
	spec := dashboard.ChartSpec{
		Kind:        dashboard.ChartKind(chartKind),
		DataSource:  chartSource,
		XColumn:     chartX,
		YColumn:     chartY,
		ColorColumn: chartColor,
		Title:       chartTitle,
		Height:      chartHeight,
		ShowLegend:  !chartNoLegend,
		FontSize:    chartFontSize,
	}
	if spec.Height == 0 {
		spec.Height = cfg.DefaultChartHeight
	}
	if spec.FontSize == 0 {
		spec.FontSize = cfg.DefaultFontSize
	}
	if spec.Title == "" {
		spec.Title = fmt.Sprintf("%s: %s", spec.Kind, spec.XColumn)
	}
	return spec
}

var chartAddCmd = &cobra.Command{
	Use:   "add <dashboard>",
	Short: "Add a chart to a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		id, err := s.dashboards.AddChart(args[0], chartSpecFromFlags())
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Added chart %s to %q\n", okMark, id, args[0])
		return nil
	},
}

var chartRemoveCmd = &cobra.Command{
	Use:   "remove <dashboard> <chart-id>",
	Short: "Remove a chart from a dashboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.dashboards.RemoveChart(args[0], args[1]); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Removed chart %s from %q\n", okMark, args[1], args[0])
		return nil
	},
}

var chartUpdateCmd = &cobra.Command{
	Use:   "update <dashboard> <chart-id>",
	Short: "Replace a chart's configuration, keeping its id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.dashboards.UpdateChart(args[0], args[1], chartSpecFromFlags()); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Printf("%s Updated chart %s in %q\n", okMark, args[1], args[0])
		return nil
	},
}

var chartListCmd = &cobra.Command{
	Use:   "list <dashboard>",
	Short: "List charts in a dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		d, err := s.dashboards.Get(args[0])
		if err != nil {
			return err
		}
		if len(d.Charts) == 0 {
			fmt.Println("No charts.")
			return nil
		}
		ids := make([]string, 0, len(d.Charts))
		for id := range d.Charts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			spec := d.Charts[id]
			fmt.Printf("%s  %-9s  %s  x=%s y=%s", id, spec.Kind, spec.DataSource, spec.XColumn, spec.YColumn)
			if spec.ColorColumn != "" {
				fmt.Printf(" color=%s", spec.ColorColumn)
			}
			fmt.Println()
		}
		return nil
	},
}

func addChartSpecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&chartKind, "kind", "bar", "chart kind (line, bar, scatter, pie, area, histogram, box)")
	cmd.Flags().StringVar(&chartSource, "data-source", "", "data source name (required)")
	cmd.Flags().StringVar(&chartX, "x", "", "x-axis column (required)")
	cmd.Flags().StringVar(&chartY, "y", "", "y-axis column (required except for histogram)")
	cmd.Flags().StringVar(&chartColor, "color", "", "grouping/color column")
	cmd.Flags().StringVar(&chartTitle, "title", "", "display title")
	cmd.Flags().IntVar(&chartHeight, "height", 0, "chart height in pixels (default from config)")
	cmd.Flags().BoolVar(&chartNoLegend, "no-legend", false, "hide the legend")
	cmd.Flags().IntVar(&chartFontSize, "font-size", 0, "font size (default from config)")
	_ = cmd.MarkFlagRequired("data-source")
	_ = cmd.MarkFlagRequired("x")
}

func init() {
	addChartSpecFlags(chartAddCmd)
	addChartSpecFlags(chartUpdateCmd)
	chartCmd.AddCommand(chartAddCmd, chartRemoveCmd, chartUpdateCmd, chartListCmd)
	rootCmd.AddCommand(chartCmd)
}
