package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashloom/internal/transform"
	"github.com/KaramelBytes/dashloom/internal/utils"
)

var (
	renderOutDir  string
	renderPreview bool
	renderSeed    int64
)

var renderCmd = &cobra.Command{
	Use:   "render <dashboard>",
	Short: "Produce render-ready tables for every chart in a dashboard",
	Long: `For each chart the transformer aggregates or samples the source table and
writes the result as record JSON next to the chart spec. A chart whose
columns no longer exist in its source is reported and skipped; the other
charts still render.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		d, err := s.dashboards.Get(args[0])
		if err != nil {
			return err
		}
		outDir := renderOutDir
		if outDir == "" {
			outDir = filepath.Join(s.dir, "render", d.Name)
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}

		opts := transform.Options{MaxRows: cfg.MaxRenderRows, Seed: renderSeed}
		if renderPreview {
			opts.MaxRows = cfg.MaxPreviewRows
		}
		if opts.Seed == 0 {
			opts.Seed = int64(cfg.SampleSeed)
		}
		ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute

		ids := make([]string, 0, len(d.Charts))
		for id := range d.Charts {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		rendered, failed := 0, 0
		for _, id := range ids {
			spec := d.Charts[id]
			t, ok := s.sources.Resolve(spec.DataSource)
			if !ok {
				fmt.Printf("%s Chart %s: data source %q not found\n", failMark, id, spec.DataSource)
				failed++
				continue
			}
			m, err := s.sources.Metadata(spec.DataSource)
			if err != nil {
				return err
			}
			key := transform.CacheKey(spec.DataSource, m.Hash, spec, opts)
			out, hit := s.sources.CacheGet(key)
			if !hit {
				out, err = transform.ChartData(t, spec, opts)
				if err != nil {
					// One bad chart must not abort the dashboard render.
					fmt.Printf("%s Chart %s (%s): %v\n", failMark, id, spec.Title, err)
					failed++
					continue
				}
				s.sources.CachePut(key, out, ttl)
			}
			payload := struct {
				Spec any `json:"spec"`
				Data any `json:"data"`
			}{Spec: spec, Data: out.ToRecords()}
			b, err := utils.PrettyJSON(payload)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, id+".json")
			if err := utils.SafeWriteFile(path, b); err != nil {
				return err
			}
			rendered++
		}
		fmt.Printf("%s Rendered %d charts to %s", okMark, rendered, outDir)
		if failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOutDir, "out", "", "output directory (default <workspace>/render/<dashboard>)")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "use the tighter inline-preview row cap")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "sampling seed for reproducible subsets")
	rootCmd.AddCommand(renderCmd)
}
