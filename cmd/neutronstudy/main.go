package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/ctxlog"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/plot"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/results"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/runner"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/storage"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/usrbin"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/watch"
)

var (
	configFile string
	verbose    bool
	dataDir    string
	// run flags
	flukaOnly   bool
	geant4Only  bool
	models      []string
	useFLUGG    bool
	parallel    bool
	workers     int
	timeout     time.Duration
	dryRun      bool
	watchTUI    bool
	flukaImage  string
	fluggImage  string
	geant4Image string
	// decks flags
	decksDir string
	// analyze flags
	analysisFile string
	resultsDir   string
	plotsDir     string
	reference    string
	formats      []string
	// edep flags
	heatmapOut string
	// presets flags
	presetOut string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "neutronstudy",
		Short: "FLUKA vs Geant4 shielding comparison campaigns",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "simulation config YAML or preset name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".neutronstudy", "campaign history directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "execute the configured comparison runs",
		RunE:  runCampaign,
	}
	runCmd.Flags().BoolVar(&flukaOnly, "fluka-only", false, "run only FLUKA")
	runCmd.Flags().BoolVar(&geant4Only, "geant4-only", false, "run only Geant4")
	runCmd.Flags().StringSliceVar(&models, "models", nil, "restrict to these models")
	runCmd.Flags().BoolVar(&useFLUGG, "flugg", false, "import GDML geometry into FLUKA via FLUGG")
	runCmd.Flags().BoolVar(&parallel, "parallel", true, "run engines concurrently")
	runCmd.Flags().IntVar(&workers, "workers", 2, "concurrent runs when --parallel")
	runCmd.Flags().DurationVar(&timeout, "timeout", time.Hour, "per-run timeout")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate inputs without executing")
	runCmd.Flags().BoolVar(&watchTUI, "watch", false, "live status view")
	runCmd.Flags().StringVar(&flukaImage, "fluka-image", "", "override FLUKA docker image")
	runCmd.Flags().StringVar(&fluggImage, "flugg-image", "", "override FLUGG docker image")
	runCmd.Flags().StringVar(&geant4Image, "geant4-image", "", "override Geant4 docker image")

	decksCmd := &cobra.Command{
		Use:   "decks",
		Short: "generate FLUKA decks and Geant4 macros without running",
		RunE:  generateDecks,
	}
	decksCmd.Flags().StringVar(&decksDir, "output", "", "directory for generated inputs (default: config output dir)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "build comparison plots from completed runs",
		RunE:  analyzeResults,
	}
	analyzeCmd.Flags().StringVar(&analysisFile, "analysis", "", "analysis config YAML")
	analyzeCmd.Flags().StringVar(&resultsDir, "results", "", "results tree (default: config output dir)")
	analyzeCmd.Flags().StringVar(&plotsDir, "output", "output/analysis", "plot output directory")
	analyzeCmd.Flags().StringVar(&reference, "reference", "", "reference run label, e.g. fluka/JEFF")
	analyzeCmd.Flags().StringSliceVar(&formats, "formats", []string{"png"}, "chart formats (png, svg)")

	edepCmd := &cobra.Command{
		Use:   "edep <usrbin-dump>",
		Short: "decode a USRBIN ASCII dump and summarize the deposition grid",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectEdep,
	}
	edepCmd.Flags().StringVar(&heatmapOut, "heatmap", "", "write an XZ heatmap PNG here")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check a simulation config for problems",
		RunE:  validateConfig,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list built-in campaign presets or write one out",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVar(&presetOut, "output", "", "write the named preset to this file")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list past campaigns",
		RunE:  listCampaigns,
	}

	rootCmd.AddCommand(runCmd, decksCmd, analyzeCmd, edepCmd, validateCmd, presetsCmd, runsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Simulation, error) {
	if configFile == "" {
		return config.DefaultSimulation(), nil
	}
	if cfg := config.GetPreset(configFile); cfg != nil {
		return cfg, nil
	}
	return config.LoadSimulation(configFile)
}

// selectSpecs applies the engine and model restrictions from run flags.
func selectSpecs(cfg *config.Simulation) []config.RunSpec {
	var specs []config.RunSpec
	for _, spec := range cfg.RunSpecs() {
		if flukaOnly && spec.Engine != "fluka" {
			continue
		}
		if geant4Only && spec.Engine != "geant4" {
			continue
		}
		if len(models) > 0 && !contains(models, spec.Model) {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func runCampaign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	issues := config.Validate(cfg)
	for _, issue := range issues {
		slog.Warn("config issue", "problem", issue.Message, "fatal", issue.Fatal)
	}
	if config.HasFatal(issues) {
		return fmt.Errorf("configuration has fatal problems")
	}

	specs := selectSpecs(cfg)
	if len(specs) == 0 {
		return fmt.Errorf("no runs selected")
	}

	opts := runner.DefaultOptions()
	opts.Timeout = timeout
	opts.UseFLUGG = useFLUGG
	if flukaImage != "" {
		opts.FlukaImage = flukaImage
	}
	if fluggImage != "" {
		opts.FluggImage = fluggImage
	}
	if geant4Image != "" {
		opts.Geant4Image = geant4Image
	}

	orch := runner.New(cfg, opts, nil)
	tasks, err := orch.Prepare(specs)
	if err != nil {
		return err
	}
	if dryRun {
		for _, task := range tasks {
			fmt.Printf("%-28s %s\n", task.Spec.Label(), task.InputFile)
		}
		slog.Info("dry run, nothing executed", "tasks", len(tasks))
		return nil
	}

	if !parallel {
		workers = 1
	}

	ctx := ctxlog.WithLogger(context.Background(), slog.Default())
	var res []runner.Result
	if watchTUI {
		events := make(chan runner.Event, len(tasks)*2)
		labels := make([]string, len(specs))
		for i, spec := range specs {
			labels[i] = spec.Label()
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			res = orch.Run(ctx, tasks, workers, func(ev runner.Event) { events <- ev })
			close(events)
		}()
		if err := watch.Run(labels, events); err != nil {
			return err
		}
		<-done
	} else {
		res = orch.Run(ctx, tasks, workers, nil)
	}

	summaryPath := filepath.Join(cfg.OutputDir, "summary.csv")
	if err := runner.WriteSummary(summaryPath, res); err != nil {
		return err
	}
	st := storage.New(dataDir)
	if id, err := st.Save(cfg, res); err != nil {
		slog.Warn("could not record campaign history", "error", err)
	} else {
		slog.Debug("campaign recorded", "id", id)
	}
	slog.Info("campaign finished", "runs", len(res), "failed", runner.Failed(res), "summary", summaryPath)
	if runner.Failed(res) > 0 {
		return fmt.Errorf("%d of %d runs failed", runner.Failed(res), len(res))
	}
	return nil
}

func generateDecks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if decksDir != "" {
		cfg.OutputDir = decksDir
	}
	orch := runner.New(cfg, runner.DefaultOptions(), nil)
	tasks, err := orch.Prepare(cfg.RunSpecs())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tINPUT")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\n", task.Spec.Label(), task.InputFile)
	}
	return w.Flush()
}

func analyzeResults(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	an := config.DefaultAnalysis()
	if analysisFile != "" {
		if an, err = config.LoadAnalysis(analysisFile); err != nil {
			return err
		}
	} else {
		an.ResultsDir = cfg.OutputDir
	}
	// Flags override the analysis config.
	if cmd.Flags().Changed("results") {
		an.ResultsDir = resultsDir
	}
	if cmd.Flags().Changed("output") {
		an.OutputDir = plotsDir
	}
	if cmd.Flags().Changed("formats") {
		an.Formats = formats
	}
	if cmd.Flags().Changed("reference") {
		code, model, ok := strings.Cut(reference, "/")
		if !ok {
			return fmt.Errorf("reference %q: want engine/model", reference)
		}
		an.ReferenceCode, an.ReferenceModel = code, model
	}

	runs, err := results.Discover(an.ResultsDir)
	if err != nil {
		return err
	}
	if specs := an.Models(); len(specs) > 0 {
		keep := make(map[string]bool, len(specs))
		for _, spec := range specs {
			keep[spec.Label()] = true
		}
		kept := runs[:0]
		for _, run := range runs {
			if keep[run.Label()] {
				kept = append(kept, run)
			}
		}
		runs = kept
	}
	if len(runs) == 0 {
		return fmt.Errorf("no run directories under %s", an.ResultsDir)
	}

	ctx := ctxlog.WithLogger(context.Background(), slog.Default())
	profiles := results.LoadProfiles(ctx, runs)
	spectra := results.LoadSpectra(ctx, runs)
	styles := plot.FromStyle(an.Style)

	// FLUKA runs usually carry only the merged USRBIN dump; decode it
	// for the profile and total when no two-column file exists.
	var totals []plot.Total
	totaled := make(map[string]bool)
	for _, run := range runs {
		dump := filepath.Join(run.Path, "edep_xz.dat")
		grid, err := usrbin.Decode(ctx, dump)
		if err != nil {
			continue
		}
		if _, ok := profiles[run.Label()]; !ok {
			profiles[run.Label()] = results.Curve{
				X: grid.Header.ZCenters(),
				Y: grid.ProfileZ(),
			}
		}
		est := grid.Total(cfg.Fluka.Cycles)
		totals = append(totals, plot.Total{Label: run.Label(), Value: est.Total, RelError: est.RelError})
		totaled[run.Label()] = true
	}
	// Geant4 runs ship only the two-column profile; integrate it so the
	// totals bar still carries every model.
	for _, run := range runs {
		if totaled[run.Label()] {
			continue
		}
		if curve, ok := profiles[run.Label()]; ok {
			totals = append(totals, plot.Total{Label: run.Label(), Value: curve.Integral()})
		}
	}

	ref := an.Reference()
	if _, ok := profiles[ref]; !ok && len(runs) > 0 {
		ref = runs[0].Label()
	}

	rendered := 0
	for _, format := range an.Formats {
		f := plot.Format(strings.ToLower(format))
		ext := "." + string(f)
		if p := plotSettings(an, "edep_profile"); p.Enabled && len(profiles) > 0 {
			opts := plot.LineOptions{Title: "Longitudinal energy deposition", Format: f, Linear: !p.LogScale, Styles: styles}
			if err := render(filepath.Join(an.OutputDir, p.Output+ext), func(w io.Writer) error {
				return plot.Profiles(w, profiles, opts)
			}); err != nil {
				return err
			}
			rendered++
			if _, ok := profiles[ref]; ok && p.ShowRatio && len(profiles) > 1 {
				ratioOpts := plot.LineOptions{Title: "Profile ratio", Format: f, Styles: styles}
				if err := render(filepath.Join(an.OutputDir, p.Output+"_ratio"+ext), func(w io.Writer) error {
					return plot.Ratios(w, profiles, ref, ratioOpts)
				}); err != nil {
					return err
				}
				rendered++
				if err := render(filepath.Join(an.OutputDir, p.Output+"_spread"+ext), func(w io.Writer) error {
					return plot.Spread(w, profiles, "Model spread", f)
				}); err != nil {
					return err
				}
				rendered++
			}
		}
		if p := plotSettings(an, "neutron_spectrum"); p.Enabled && len(spectra) > 0 {
			opts := plot.LineOptions{Title: "Neutron exit spectrum", Format: f, Linear: !p.LogScale, Styles: styles}
			if err := render(filepath.Join(an.OutputDir, p.Output+ext), func(w io.Writer) error {
				return plot.Spectra(w, spectra, opts)
			}); err != nil {
				return err
			}
			rendered++
		}
		if p := plotSettings(an, "total_edep"); p.Enabled && len(totals) > 0 {
			if err := render(filepath.Join(an.OutputDir, p.Output+ext), func(w io.Writer) error {
				return plot.Totals(w, totals, "Total energy deposition", f)
			}); err != nil {
				return err
			}
			rendered++
		}
	}
	if rendered == 0 {
		return fmt.Errorf("no plottable data found under %s", an.ResultsDir)
	}
	if len(profiles) > 0 {
		fmt.Print(plot.ASCIIProfile(profiles, "energy deposition"))
	}
	slog.Info("analysis complete", "plots", rendered, "output", an.OutputDir)
	return nil
}

// plotSettings returns the configured settings for a named plot, or the
// render-everything defaults when the config has no entry for it.
func plotSettings(an *config.Analysis, name string) config.Plot {
	if p, ok := an.Plots[name]; ok {
		return p
	}
	return config.Plot{Enabled: true, LogScale: true, ShowRatio: true, Output: name}
}

func render(path string, fn func(io.Writer) error) error {
	if err := plot.WriteFile(path, fn); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	slog.Debug("wrote plot", "path", path)
	return nil
}

func inspectEdep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := ctxlog.WithLogger(context.Background(), slog.Default())
	grid, err := usrbin.Decode(ctx, args[0])
	if err != nil {
		return err
	}
	h := grid.Header
	est := grid.Total(cfg.Fluka.Cycles)
	fmt.Printf("grid:    %d x %d x %d bins\n", h.NX, h.NY, h.NZ)
	fmt.Printf("x:       [%g, %g] cm\n", h.XMin, h.XMax)
	fmt.Printf("y:       [%g, %g] cm\n", h.YMin, h.YMax)
	fmt.Printf("z:       [%g, %g] cm\n", h.ZMin, h.ZMax)
	fmt.Printf("total:   %.6g GeV/primary\n", est.Total)
	fmt.Printf("relerr:  %.2f%%\n", est.RelError*100)

	if heatmapOut != "" {
		if err := plot.WriteFile(heatmapOut, func(w io.Writer) error {
			return plot.Heatmap(w, grid.ProjectXZ())
		}); err != nil {
			return err
		}
		fmt.Printf("heatmap: %s\n", heatmapOut)
	}

	preview := map[string]results.Curve{
		filepath.Base(args[0]): {X: h.ZCenters(), Y: grid.ProfileZ()},
	}
	fmt.Print(plot.ASCIIProfile(preview, "deposition along z"))
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	issues := config.Validate(cfg)
	if len(issues) == 0 {
		fmt.Println("configuration ok")
		return nil
	}
	for _, issue := range issues {
		tag := "warning"
		if issue.Fatal {
			tag = "error"
		}
		fmt.Printf("%s: %s\n", tag, issue.Message)
	}
	if config.HasFatal(issues) {
		return fmt.Errorf("configuration has fatal problems")
	}
	return nil
}

func listCampaigns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	campaigns, err := st.List()
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		fmt.Println("no campaigns found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPARTICLE\tENERGY\tEVENTS\tRUNS\tFAILED")
	for _, c := range campaigns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g GeV\t%d\t%d\t%d\n",
			c.ID,
			c.Timestamp.Format("2006-01-02 15:04:05"),
			c.Particle,
			c.EnergyGeV,
			c.Events,
			len(c.Runs),
			c.Failed(),
		)
	}
	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRESET\tPARTICLE\tENERGY\tEVENTS")
		for _, name := range config.ListPresets() {
			p := config.Presets[name]
			fmt.Fprintf(w, "%s\t%s\t%g %s\t%d\n",
				name, p.Particle.Type, p.Particle.Energy, p.Particle.EnergyUnit, p.Events)
		}
		return w.Flush()
	}
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset %q (try: %s)", args[0], strings.Join(config.ListPresets(), ", "))
	}
	if presetOut == "" {
		return fmt.Errorf("use --output to write preset %q to a file", args[0])
	}
	if err := config.SaveSimulation(presetOut, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", presetOut)
	return nil
}
