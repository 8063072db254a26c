package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/krotov/internal/config"
	"github.com/san-kum/krotov/internal/models"
	"github.com/san-kum/krotov/internal/optimize"
	"github.com/san-kum/krotov/internal/pulse"
	"github.com/san-kum/krotov/internal/result"
	"github.com/san-kum/krotov/internal/store"
	"github.com/san-kum/krotov/internal/viz"
)

var (
	dataDir    string
	tStop      float64
	nt         int
	lambdaA    float64
	iterations int
	stopJT     float64
	amplitude  float64
	tRise      float64
	storeAll   bool
	configFile string
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "krotov",
		Short: "quantum optimal control with the Krotov method",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".krotov", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run an optimization",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimization,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&storeAll, "store-pulses", false, "record pulses of every iteration")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-iteration logs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot controls and convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export control fields to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run an optimization with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range models.List() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportJSONCmd, exportCSVCmd, liveCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tStop, "t-stop", config.DefaultTStop, "final time")
	cmd.Flags().IntVar(&nt, "nt", config.DefaultNT, "time grid points")
	cmd.Flags().Float64Var(&lambdaA, "lambda-a", config.DefaultLambdaA, "krotov step width parameter")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "optimization iterations")
	cmd.Flags().Float64Var(&stopJT, "stop-jt", 0, "stop once J_T drops below this (0: disabled)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "guess pulse amplitude")
	cmd.Flags().Float64Var(&tRise, "t-rise", config.DefaultTRise, "guess pulse ramp time")
}

// buildConfig merges the config file, if any, with CLI flags; flags the
// user changed win.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Model = model
	if cmd.Flags().Changed("t-stop") || configFile == "" {
		cfg.TStop = tStop
	}
	if cmd.Flags().Changed("nt") || configFile == "" {
		cfg.NT = nt
	}
	if cmd.Flags().Changed("lambda-a") || configFile == "" {
		cfg.LambdaA = lambdaA
	}
	if cmd.Flags().Changed("iterations") || configFile == "" {
		cfg.Iterations = iterations
	}
	if cmd.Flags().Changed("stop-jt") {
		cfg.StopJT = stopJT
	}
	if cmd.Flags().Changed("amplitude") || configFile == "" {
		cfg.Pulse.Amplitude = amplitude
	}
	if cmd.Flags().Changed("t-rise") || configFile == "" {
		cfg.Pulse.TRise = tRise
	}
	if storeAll {
		cfg.StoreAllPulses = true
	}
	return cfg, nil
}

func optionsFromConfig(cfg *config.Config) optimize.Options {
	return optimize.Options{
		LambdaA:        cfg.LambdaA,
		Iterations:     cfg.Iterations,
		StopJT:         cfg.StopJT,
		StoreAllPulses: cfg.StoreAllPulses,
	}
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if quiet {
		logrus.SetLevel(logrus.WarnLevel)
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	tlist := cfg.Tlist()
	objs, err := models.Get(cfg.Model, tlist, models.PulseParams{
		Amplitude: cfg.Pulse.Amplitude,
		TRise:     cfg.Pulse.TRise,
	})
	if err != nil {
		return err
	}

	fmt.Printf("optimizing %s (%d objectives, %d iterations)...\n", cfg.Model, len(objs), cfg.Iterations)
	start := time.Now()

	res, err := optimize.Run(context.Background(), objs, tlist, optionsFromConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Println(res)

	runID, err := st.Save(cfg.Model, cfg.LambdaA, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tOBJ\tITERS\tLAMBDA_A\tJ_T")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\t%.3e\n",
			run.ID,
			run.Model,
			run.Timestamp.Format(result.TimeFormat),
			run.Objectives,
			run.Iterations,
			run.LambdaA,
			run.FinalJT,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", meta.ID)
	fmt.Fprintf(w, "model\t%s\n", meta.Model)
	fmt.Fprintf(w, "objectives\t%d\n", meta.Objectives)
	fmt.Fprintf(w, "iterations\t%d\n", meta.Iterations)
	fmt.Fprintf(w, "lambda_a\t%.3f\n", meta.LambdaA)
	fmt.Fprintf(w, "final J_T\t%.4e\n", meta.FinalJT)
	fmt.Fprintf(w, "started\t%s\n", meta.Started)
	fmt.Fprintf(w, "ended\t%s\n", meta.Ended)
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, guess, opt, err := st.LoadControls(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\nmodel: %s\n\n", meta.ID, meta.Model)

	for k := range opt {
		if len(guess) > k && len(guess[k]) >= 2 {
			graph := asciigraph.Plot(guess[k],
				asciigraph.Height(8),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("guess control %d", k)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
		if len(opt[k]) >= 2 {
			graph := asciigraph.Plot(opt[k],
				asciigraph.Height(8),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("optimized control %d", k)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}

	if len(meta.JT) >= 2 {
		graph := asciigraph.Plot(meta.JT,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("J_T per iteration"),
		)
		fmt.Println(graph)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return store.ExportJSON(os.Stdout, *meta, res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	times, guess, opt, err := st.LoadControls(args[0])
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for k := range guess {
		header = append(header, fmt.Sprintf("guess%d", k))
	}
	for k := range opt {
		header = append(header, fmt.Sprintf("opt%d", k))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for k := range guess {
			row = append(row, strconv.FormatFloat(guess[k][i], 'f', 6, 64))
		}
		for k := range opt {
			row = append(row, strconv.FormatFloat(opt[k][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	// Per-iteration logs would tear up the TUI.
	logrus.SetOutput(io.Discard)

	tlist := cfg.Tlist()
	objs, err := models.Get(cfg.Model, tlist, models.PulseParams{
		Amplitude: cfg.Pulse.Amplitude,
		TRise:     cfg.Pulse.TRise,
	})
	if err != nil {
		return err
	}

	ch := make(chan tea.Msg, 16)
	opts := optionsFromConfig(cfg)
	opts.OnIteration = func(iter int, jt float64, tau []complex128, pulses []pulse.Control) {
		msg := viz.IterMsg{Iter: iter, JT: jt, Tau: tau, Pulses: make([][]float64, len(pulses))}
		for k, p := range pulses {
			msg.Pulses[k] = p
		}
		ch <- msg
	}

	go func() {
		_, err := optimize.Run(context.Background(), objs, tlist, opts)
		ch <- viz.DoneMsg{Err: err}
	}()

	p := tea.NewProgram(viz.NewModel(cfg.Model, ch))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
