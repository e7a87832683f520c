package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/bazi/internal/analysis"
	"github.com/pbaille/bazi/internal/api"
	"github.com/pbaille/bazi/internal/config"
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
	"github.com/pbaille/bazi/internal/logger"
	"github.com/pbaille/bazi/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bazi",
		Short:         "Four Pillars chart analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	cfg = config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}

	l, err := logger.New(cfg.Log.Mode, logLevel)
	if err != nil {
		return err
	}
	log = l.With("command", cmd.Name())
	return nil
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

func getAnalyzer() *analysis.Analyzer {
	return analysis.New(ganzhi.Standard(), cfg.Weights, cfg.Strength, log)
}

func parseBasis(s string) (analysis.Basis, error) {
	switch b := analysis.Basis(strings.ToLower(s)); b {
	case analysis.BasisSeasonal, analysis.BasisAdjusted:
		return b, nil
	}
	return "", fmt.Errorf("unknown basis %q (want seasonal or adjusted)", s)
}

func analyzeCmd() *cobra.Command {
	var (
		spec      domain.ChartSpec
		natalOnly bool
		basis     string
		asJSON    bool
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a chart",
		Example: `  bazi analyze --year Jia-Zi --month Bing-Yin --day Wu-Chen --hour Geng-Shen
  bazi analyze --year 甲子 --month 丙寅 --day 戊辰 --hour 庚申 --luck 丁卯 --annual 丙午`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseBasis(basis)
			if err != nil {
				return err
			}

			result, err := getAnalyzer().AnalyzeSpec(spec, analysis.Options{NatalOnly: natalOnly, Basis: b})
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				printAnalysis(spec.Label, result)
			}

			if !save {
				return nil
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.SaveAnalysis(spec, result)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Printf("\nSaved analysis: %s\n", rec.ID[:8])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Year, "year", "", "year pillar, e.g. Jia-Zi")
	cmd.Flags().StringVar(&spec.Month, "month", "", "month pillar")
	cmd.Flags().StringVar(&spec.Day, "day", "", "day pillar")
	cmd.Flags().StringVar(&spec.Hour, "hour", "", "hour pillar")
	cmd.Flags().StringVar(&spec.Luck, "luck", "", "luck pillar")
	cmd.Flags().StringVar(&spec.Annual, "annual", "", "annual pillar")
	cmd.Flags().StringVar(&spec.Monthly, "monthly", "", "monthly pillar")
	cmd.Flags().StringVar(&spec.Daily, "daily", "", "daily pillar")
	cmd.Flags().StringVar(&spec.Hourly, "hourly", "", "hourly pillar")
	cmd.Flags().StringVarP(&spec.Label, "label", "l", "", "label stored with the analysis")
	cmd.Flags().BoolVar(&natalOnly, "natal-only", false, "skip interaction adjustment of weights")
	cmd.Flags().StringVar(&basis, "basis", string(analysis.BasisSeasonal), "balance search basis: seasonal or adjusted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the analysis in the history database")
	for _, f := range []string{"year", "month", "day", "hour"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

// batchFile is the YAML layout read by the batch command
type batchFile struct {
	Charts []domain.ChartSpec `yaml:"charts"`
}

func batchCmd() *cobra.Command {
	var (
		concurrency int
		natalOnly   bool
		basis       string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "batch [file.yaml]",
		Short: "Analyze every chart in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseBasis(basis)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read batch file: %w", err)
			}
			var bf batchFile
			if err := yaml.Unmarshal(data, &bf); err != nil {
				return fmt.Errorf("parse batch file: %w", err)
			}
			if len(bf.Charts) == 0 {
				fmt.Println("No charts in file.")
				return nil
			}

			results, err := getAnalyzer().AnalyzeBatch(cmd.Context(), bf.Charts, analysis.Options{NatalOnly: natalOnly, Basis: b}, concurrency)
			if err != nil {
				return err
			}

			var s *store.Store
			if save {
				if s, err = getStore(); err != nil {
					return err
				}
				defer s.Close()
			}

			for i, res := range results {
				spec := bf.Charts[i]
				a := res.Assessment
				line := fmt.Sprintf("%-20s %s  %5.1f%%  %-16s useful=%s",
					truncate(labelOf(spec, i), 20), a.DayMaster, a.Percent, a.Verdict, a.UsefulGod)
				if s != nil {
					rec, err := s.SaveAnalysis(spec, res)
					if err != nil {
						return err
					}
					line = rec.ID[:8] + "  " + line
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "charts analyzed at once")
	cmd.Flags().BoolVar(&natalOnly, "natal-only", false, "skip interaction adjustment of weights")
	cmd.Flags().StringVar(&basis, "basis", string(analysis.BasisSeasonal), "balance search basis: seasonal or adjusted")
	cmd.Flags().BoolVar(&save, "save", false, "store each analysis in the history database")
	return cmd
}

func labelOf(spec domain.ChartSpec, i int) string {
	if spec.Label != "" {
		return spec.Label
	}
	return fmt.Sprintf("chart %d", i+1)
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.ListAnalyses(limit, 0)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No analyses yet. Use 'bazi analyze --save' to store one.")
				return nil
			}

			printRecords(records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of analyses to show")
	return cmd
}

func showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.FindByPrefix(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(rec)
			}

			fmt.Printf("ID:      %s\n", rec.ID)
			fmt.Printf("Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Println()
			printAnalysis(rec.Label, rec.Analysis)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search analyses by label, day master, verdict or useful god",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.SearchAnalyses(args[0])
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No matching analyses found.")
				return nil
			}

			printRecords(records)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			if addr == "" {
				addr = cfg.Server.Addr
			}
			server := api.New(s, getAnalyzer(), log, addr)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func printRecords(records []domain.Record) {
	for _, r := range records {
		a := r.Analysis.Assessment
		fmt.Printf("%s  %-20s %s  %-16s useful=%s\n",
			r.ID[:8], truncate(r.Label, 20), a.DayMaster, a.Verdict, a.UsefulGod)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printAnalysis(label string, res *domain.Analysis) {
	if label != "" {
		fmt.Printf("Chart: %s\n", label)
	}
	fmt.Printf("Pillars:\n")
	for _, p := range res.Pillars {
		fmt.Printf("  %-12s %s %s\n", p.Position, p.Stem, p.Branch)
	}

	if len(res.Interactions) > 0 {
		fmt.Printf("\nInteractions:\n")
		for _, in := range res.Interactions {
			flag := ""
			if in.Activated {
				flag = " [overlay]"
			}
			fmt.Printf("  %-18s %-8s %s%s\n", in.Type, in.Severity, in.Description, flag)
		}
	}

	fmt.Printf("\nWeights (raw / adjusted / seasonal):\n")
	for _, e := range domain.Elements {
		fmt.Printf("  %-6s %6.2f %6.2f %6.2f  %5.1f%%\n",
			e, res.Raw.Of(e), res.Adjusted.Of(e), res.Seasonal.Of(e), res.Assessment.Breakdown.Of(e))
	}

	a := res.Assessment
	fmt.Printf("\nDay master: %s (%s) %.1f%%, effective %.1f%%\n", a.DayMaster, a.DayMasterElement, a.Percent, a.Effective)
	fmt.Printf("Verdict:    %s\n", a.Verdict)
	if a.Following {
		fmt.Printf("Following:  %s\n", a.FollowingType)
	}
	if a.UsefulGod != "" {
		fmt.Printf("Useful god: %s\n", a.UsefulGod)
	}
	fmt.Printf("Favorable:   %s\n", joinElements(a.Favorable))
	fmt.Printf("Unfavorable: %s\n", joinElements(a.Unfavorable))
	if len(a.BestPairs) > 0 {
		fmt.Printf("Best pairs:\n")
		for _, p := range a.BestPairs {
			fmt.Printf("  %s+%s  %+.2f\n", p.First, p.Second, p.Improvement)
		}
	}
}

func joinElements(els []domain.Element) string {
	if len(els) == 0 {
		return "-"
	}
	parts := make([]string, len(els))
	for i, e := range els {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
